package errors

import "fmt"

// ErrorCode represents a Tether error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrConflict       ErrorCode = "CONFLICT"        // 409
	ErrInternal       ErrorCode = "INTERNAL"        // 500
	ErrUnavailable    ErrorCode = "UNAVAILABLE"     // 503
	ErrBusy           ErrorCode = "BUSY"            // 503, retryable
)

// TetherError represents a structured error with code, status, and details.
type TetherError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *TetherError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *TetherError {
	return &TetherError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing artifact, version, comment, or file.
func NewNotFound(kind, identifier string) *TetherError {
	return &TetherError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("%s not found: %s", kind, identifier),
		Details: map[string]any{"kind": kind, "identifier": identifier},
	}
}

// NewConflict creates a 409 error for version races and path collisions.
func NewConflict(msg string) *TetherError {
	return &TetherError{
		Code:    ErrConflict,
		Status:  409,
		Message: msg,
	}
}

// NewUnavailable creates a 503 error for failures in the file collaborator.
func NewUnavailable(msg string, err error) *TetherError {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	return &TetherError{
		Code:    ErrUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewBusy creates a retryable 503 error for lock acquisition timeouts
// and exhausted version-conflict retries.
func NewBusy(msg string) *TetherError {
	return &TetherError{
		Code:    ErrBusy,
		Status:  503,
		Message: msg,
		Details: map[string]any{"retryable": true},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *TetherError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &TetherError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a TetherError with the given code.
func Is(err error, code ErrorCode) bool {
	if tErr, ok := err.(*TetherError); ok {
		return tErr.Code == code
	}
	return false
}
