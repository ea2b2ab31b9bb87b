package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/interview-simulator/internal/agent"
	"github.com/jonathan/interview-simulator/internal/registry"
	"github.com/jonathan/interview-simulator/internal/round"
	"github.com/jonathan/interview-simulator/internal/session"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var ve *ErrValidation
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, registry.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, session.ErrEnded),
		errors.Is(err, session.ErrCompleted),
		errors.Is(err, session.ErrAlreadyStarted),
		errors.Is(err, round.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotStarted):
		return http.StatusBadRequest
	case agent.IsFatal(err), agent.IsTransient(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
