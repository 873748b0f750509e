package errors

import "fmt"

// ErrorCode represents a Skein error code.
type ErrorCode string

const (
	ErrInvalidRequest          ErrorCode = "INVALID_REQUEST"           // 400
	ErrInvalidTriggerCondition ErrorCode = "INVALID_TRIGGER_CONDITION" // 422
	ErrInvalidTransition       ErrorCode = "INVALID_TRANSITION"        // 409
	ErrNotFound                ErrorCode = "NOT_FOUND"                 // 404
	ErrNameAlreadyExists       ErrorCode = "NAME_ALREADY_EXISTS"       // 409
	ErrInternal                ErrorCode = "INTERNAL"                  // 500
)

// SkeinError represents a structured error with code, status, and details.
type SkeinError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SkeinError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SkeinError {
	return &SkeinError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewInvalidTriggerCondition creates a 422 error for a malformed or
// semantically invalid marker trigger condition. Raised at construction
// and update time, never deferred to evaluation.
func NewInvalidTriggerCondition(msg string) *SkeinError {
	return &SkeinError{
		Code:    ErrInvalidTriggerCondition,
		Status:  422,
		Message: msg,
	}
}

// NewInvalidTransition creates a 409 error for a rejected lifecycle
// transition (e.g. completing an already-completed marker).
func NewInvalidTransition(msg string) *SkeinError {
	return &SkeinError{
		Code:    ErrInvalidTransition,
		Status:  409,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing project, counter, or marker.
func NewNotFound(identifier string) *SkeinError {
	return &SkeinError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewNameAlreadyExists creates a 409 error for project name collisions.
func NewNameAlreadyExists(name string) *SkeinError {
	return &SkeinError{
		Code:    ErrNameAlreadyExists,
		Status:  409,
		Message: fmt.Sprintf("project with name %q already exists", name),
		Details: map[string]any{"name": name},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SkeinError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SkeinError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a SkeinError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*SkeinError); ok {
		return sErr.Code == code
	}
	return false
}
