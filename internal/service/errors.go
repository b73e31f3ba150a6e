// Package service provides the application-level progress engine services.
package service

import (
	"errors"
	"fmt"
)

// Common service errors - sentinel errors used across service implementations.
// Callers check them with errors.Is; the API layer maps them to status codes.
var (
	// ErrPlanLimitReached indicates the learner's plan does not allow more use
	// of a feature today. API layer should map this to HTTP 429.
	ErrPlanLimitReached = errors.New("plan limit reached")

	// ErrLessonLocked indicates the learner cannot access the lesson yet.
	// API layer should map this to HTTP 403 Forbidden.
	ErrLessonLocked = errors.New("lesson is locked")
)

// ServiceError wraps a failure with the service operation that produced it.
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
