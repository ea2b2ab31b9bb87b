package agent

import (
	"context"
	"errors"
	"fmt"
)

// TransientError marks a capability failure that is worth retrying:
// timeouts, connection resets, rate limits, or malformed model output.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("agent %s failed (transient): %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// FatalError marks a capability failure that retrying will not fix, such as
// a rejected API key or an invalid request.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("agent %s failed: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }

// IsTransient reports whether err is retryable. Context cancellation is not
// transient: the caller gave up, so retrying is pointless.
func IsTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var te *TransientError
	return errors.As(err, &te)
}

// IsFatal reports whether err is a permanent capability failure.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
