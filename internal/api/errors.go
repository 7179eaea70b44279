package api

import (
	"errors"
	"net/http"

	"github.com/lingora/practice-api/internal/domain"
	"github.com/lingora/practice-api/internal/domain/eval"
	"github.com/lingora/practice-api/internal/domain/session"
	"github.com/lingora/practice-api/internal/service/auth"
	"github.com/lingora/practice-api/internal/service/practice"
	"github.com/lingora/practice-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status
// codes based on the error type. This prevents leaking internal error
// types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized

	// Not found errors (covers item, record, and session variants)
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// State conflicts: the command is well-formed but the session is
	// not in a state (or place) that can accept it
	case errors.Is(err, session.ErrInvalidTransition),
		errors.Is(err, session.ErrEmptyTaskList),
		errors.Is(err, store.ErrConflict),
		errors.Is(err, practice.ErrSessionNotResident):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, eval.ErrInvalidSubmissionShape),
		errors.Is(err, domain.ErrInvalidTargetCount),
		errors.Is(err, domain.ErrItemVariantInvalid),
		errors.Is(err, domain.ErrItemPayloadInvalid),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid):
		return "Invalid token"

	case errors.Is(err, store.ErrSessionNotFound):
		return "Session not found"

	case errors.Is(err, store.ErrItemNotFound):
		return "Content item not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, session.ErrInvalidTransition):
		return "Command not valid in the session's current state"

	case errors.Is(err, session.ErrEmptyTaskList):
		return "Session has no tasks to practice"

	case errors.Is(err, practice.ErrSessionNotResident):
		return "Session is not active on this instance"

	case errors.Is(err, store.ErrConflict):
		return "Session was modified concurrently, reload and retry"

	case errors.Is(err, eval.ErrInvalidSubmissionShape):
		return "Answer does not match the task format"

	case errors.Is(err, domain.ErrInvalidTargetCount):
		return "Target count must be a positive integer"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
