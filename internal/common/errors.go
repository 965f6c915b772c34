package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	// ErrMalformedInput marks a raw document that is not a flat mapping of
	// string keys to scalar values. Missing individual fields are not an
	// error; only structural corruption is.
	ErrMalformedInput = errors.New("malformed input document")

	// ErrStoreUnavailable marks a connection-level store failure. Fatal for
	// the load stage; the runner retries the whole stage.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrConstraintViolation marks a per-record store rejection (e.g. a
	// non-numeric value for a numeric column). The record is skipped and the
	// rest of the batch proceeds.
	ErrConstraintViolation = errors.New("constraint violation")

	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
