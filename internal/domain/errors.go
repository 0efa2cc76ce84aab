package domain

import "errors"

// Domain errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbiddenRequest = errors.New("invalid security token")
	ErrNoItems          = errors.New("no items received")
	ErrIOFailure        = errors.New("artifact storage failure")
	ErrInvalidToken     = errors.New("invalid token")
	ErrUnknownAction    = errors.New("unknown action")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}
