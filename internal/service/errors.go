package service

import (
	"errors"
	"fmt"
)

// Common service errors. The API layer maps them to HTTP status codes.
var (
	// ErrItemNotFound indicates that no card or rule has the requested ID.
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidInput indicates that submitted content or an imported
	// collection failed validation. The wrapped error names the rule broken.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptySession is returned when a review session has no results.
	ErrEmptySession = errors.New("review session has no results")
)

// ServiceError wraps unexpected errors with the operation that failed.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

func invalidInput(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func itemNotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrItemNotFound, id)
}
