package errx

import (
	"fmt"
	"sync"
)

// Code is an error code registered by a module.
type Code struct {
	Code       string
	Type       Type
	HTTPStatus int
	Message    string
}

// Registry manages the error codes of one module. Each package creates its
// own registry with a distinct prefix.
type Registry struct {
	prefix string
	mu     sync.RWMutex
	codes  map[string]*Code
}

// NewRegistry creates an error registry with the given prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		codes:  make(map[string]*Code),
	}
}

// Register registers a new error code
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) *Code {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := &Code{
		Code:       fmt.Sprintf("%s_%s", r.prefix, code),
		Type:       errType,
		HTTPStatus: httpStatus,
		Message:    message,
	}
	r.codes[code] = c
	return c
}

// New creates an error from a registered code
func (r *Registry) New(code *Code) *Error {
	return &Error{
		Code:       code.Code,
		Message:    code.Message,
		Type:       code.Type,
		HTTPStatus: code.HTTPStatus,
	}
}

// NewWithMessage creates an error from a registered code with a custom message
func (r *Registry) NewWithMessage(code *Code, message string) *Error {
	e := r.New(code)
	e.Message = message
	return e
}

// WrapWith wraps err with a registered code
func (r *Registry) WrapWith(code *Code, err error) *Error {
	e := r.New(code)
	e.Err = err
	return e
}
