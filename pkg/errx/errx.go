package errx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Type categorizes an error for handling and HTTP mapping.
type Type string

const (
	// TypeInternal represents unexpected internal failures
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents invalid input or malformed data
	TypeValidation Type = "VALIDATION"

	// TypeAuthorization represents authentication/authorization failures
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents missing resources
	TypeNotFound Type = "NOT_FOUND"

	// TypeConflict represents resource conflicts
	TypeConflict Type = "CONFLICT"

	// TypeExternal represents failures of a remote service
	TypeExternal Type = "EXTERNAL"

	// TypeCanceled represents aborted operations (user abort or watchdog)
	TypeCanceled Type = "CANCELED"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// Error is a rich error carrying a stable code, category and details.
type Error struct {
	// Code is the unique error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Type categorizes the error
	Type Type `json:"type"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"http_status"`

	// Details contains additional context about the error
	Details map[string]any `json:"details,omitempty"`

	// Err is the underlying error (not exported in JSON)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error and returns it for chaining
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// MarshalJSON implements json.Marshaler
func (e *Error) MarshalJSON() ([]byte, error) {
	type alias Error
	return json.Marshal(&struct {
		*alias
		Error string `json:"error,omitempty"`
	}{
		alias: (*alias)(e),
		Error: e.Error(),
	})
}

func typeToHTTPStatus(t Type) int {
	switch t {
	case TypeValidation:
		return http.StatusBadRequest
	case TypeAuthorization:
		return http.StatusUnauthorized
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeExternal:
		return http.StatusBadGateway
	case TypeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new Error of the given type
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
	}
}

// Wrap wraps an existing error with additional context. A wrapped *Error
// keeps its original code and details.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:       existing.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: existing.HTTPStatus,
			Details:    existing.Details,
			Err:        err,
		}
	}

	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Err:        err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, errType Type, format string, args ...any) *Error {
	return Wrap(err, fmt.Sprintf(format, args...), errType)
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t Type) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// Internal creates an internal error
func Internal(message string) *Error {
	return New(message, TypeInternal)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(message, TypeValidation)
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(message, TypeNotFound)
}

// Unauthorized creates an authorization error
func Unauthorized(message string) *Error {
	return New(message, TypeAuthorization)
}

// External creates an external service error
func External(message string) *Error {
	return New(message, TypeExternal)
}

// Canceled creates a cancellation error
func Canceled(message string) *Error {
	return New(message, TypeCanceled)
}
