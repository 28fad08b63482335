package apperr

import (
	"errors"
	"fmt"
)

// Error kinds. Everything that is not one of these is treated as unexpected.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

// ConflictError reports a unique-field collision or a delete refused
// because other rows still depend on the target.
type ConflictError struct {
	Message string
	Count   int
}

func (e *ConflictError) Error() string {
	return e.Message
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Validation builds an ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound builds an ErrNotFound naming the missing resource.
func NotFound(resource string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, resource)
}

// Conflict builds a *ConflictError.
func Conflict(count int, format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...), Count: count}
}
