package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	// ErrStorage marks failures reported by the object store or the relay.
	ErrStorage = errors.New("storage error")
)

type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		ResourceType string
		ID           string
	}

	// ValidationError indicates invalid input. Field is empty for form-level errors.
	ValidationError struct {
		Field   string
		Message string
	}
)

// NewValidationError returns a form-level validation error.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.ResourceType + " not found"
	}
	return e.ResourceType + " " + e.ID + " not found"
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *NotFoundError) StatusCode() int   { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

func (e *NotFoundError) Is(target error) bool   { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError represents a resource conflict with details about the existing resource
type ConflictError struct {
	Message      string // Human-readable error message
	ResourceType string // Type of resource (folder, content)
	ResourceID   string // ID of the existing/conflicting resource
}

func (e *ConflictError) Error() string {
	return e.Message
}

func (e *ConflictError) StatusCode() int {
	return http.StatusConflict
}

// Is allows errors.Is() to match against ErrConflict
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// StorageError wraps a failure from the object store so the message reaches the user.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) StatusCode() int { return http.StatusBadGateway }

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
