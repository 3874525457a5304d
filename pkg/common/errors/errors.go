package errors

import (
	"errors"
	"fmt"
)

// Common error types used across the chrono library

var (
	// ErrClosed indicates that an operation was attempted on a closed resource
	ErrClosed = errors.New("resource is closed")

	// ErrCapacityExceeded indicates that a capacity limit was exceeded
	ErrCapacityExceeded = errors.New("capacity exceeded")

	// ErrInvalidConfiguration indicates invalid configuration parameters
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotFound indicates that a lookup by identifier found nothing
	ErrNotFound = errors.New("not found")

	// ErrAlreadyRunning indicates that a run loop is already active
	ErrAlreadyRunning = errors.New("already running")
)

// ValidationError describes an invalid argument or configuration value.
type ValidationError struct {
	Module string
	Field  string
	Value  interface{}
	Reason string
	Hint   string
}

// NewValidationError creates a ValidationError without a hint.
func NewValidationError(module, field string, value interface{}, reason string) *ValidationError {
	return &ValidationError{
		Module: module,
		Field:  field,
		Value:  value,
		Reason: reason,
	}
}

// WithHint sets a remediation hint and returns the same error for chaining.
func (e *ValidationError) WithHint(hint string) *ValidationError {
	e.Hint = hint
	return e
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: invalid %s=%v (%s)", e.Module, e.Field, e.Value, e.Reason)
	if e.Hint != "" {
		msg += " - " + e.Hint
	}
	return msg
}

// Unwrap makes every ValidationError match ErrInvalidConfiguration.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfiguration
}

// OperationError wraps a failure of a named operation.
type OperationError struct {
	Module    string
	Operation string
	Cause     error
	Context   string
}

// NewOperationError creates an OperationError without additional context.
func NewOperationError(module, operation string, cause error) *OperationError {
	return &OperationError{
		Module:    module,
		Operation: operation,
		Cause:     cause,
	}
}

// WithContext attaches a description and returns the same error for chaining.
func (e *OperationError) WithContext(context string) *OperationError {
	e.Context = context
	return e
}

func (e *OperationError) Error() string {
	msg := fmt.Sprintf("%s.%s failed: %v", e.Module, e.Operation, e.Cause)
	if e.Context != "" {
		msg += " (" + e.Context + ")"
	}
	return msg
}

func (e *OperationError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err is or wraps a ValidationError.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// IsNotFound reports whether err indicates a failed lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsTemporary returns true if the error indicates a temporary condition
func IsTemporary(err error) bool {
	return errors.Is(err, ErrCapacityExceeded)
}
