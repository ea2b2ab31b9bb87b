package session

import "errors"

var (
	// ErrInProgress is returned when a command arrives while another
	// command on the same session is still executing. The caller may
	// retry once the running command returns.
	ErrInProgress = errors.New("a command is already in progress for this session")

	// ErrEnded is returned for commands against a session that was cut
	// short with EndEarly.
	ErrEnded = errors.New("session was ended early")

	// ErrCompleted is returned for commands against a session that ran
	// to completion.
	ErrCompleted = errors.New("session already completed")

	// ErrNotStarted is returned when an answer or skip arrives before
	// Start.
	ErrNotStarted = errors.New("session not started")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("session already started")
)
