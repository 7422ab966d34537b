package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation error")
	ErrRateLimited = errors.New("rate limited")
)

type AppError struct {
	Err     error  // kind, one of the sentinels above
	Message string // human-readable, safe to show the user
	Field   string // optional: the request field at fault
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Invalid wraps a lower-level error as a validation failure on field,
// using the error's text as the message.
func Invalid(field string, err error) *AppError {
	return ValidationFailed(field, fmt.Sprintf("%s: %v", field, err))
}

// RateLimited tells the caller to slow down. HTTP handlers map this to 429.
func RateLimited(message string) *AppError {
	return &AppError{
		Err:     ErrRateLimited,
		Message: message,
	}
}
