package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoteNotFound  = errors.New("note not found")
	ErrUserNotFound  = errors.New("user not found")
	ErrUnauthorized  = errors.New("token is invalid or expired")
	ErrEmailTaken    = errors.New("email already exists")
	ErrUsernameTaken = errors.New("username already exists")
)

// ValidationError is a user-correctable input error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransientError wraps a storage or network failure that may succeed on retry
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Retryable always reports true; the caller may retry the operation manually
func (e *TransientError) Retryable() bool {
	return true
}

// NewTransientError wraps err as a TransientError
func NewTransientError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound reports whether err means the record does not exist for the caller
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoteNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsTransient reports whether err is a TransientError
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
