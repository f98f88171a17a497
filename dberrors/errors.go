// Package dberrors defines the structured errors returned by the
// LuminarDB client.
package dberrors

import (
	"errors"
	"fmt"
)

// StatusCode is the status code carried in LuminarDB server responses.
type StatusCode uint32

const (
	StatusOK              StatusCode = 200
	StatusInvalidArgument StatusCode = 400
	StatusNotFound        StatusCode = 404
	StatusTooManyRequests StatusCode = 429
	StatusInternalError   StatusCode = 500
)

// Kind classifies where an error originated.
type Kind int

const (
	// KindClient marks requests rejected before any network call.
	KindClient Kind = iota
	// KindTransport marks connections that could not be established or broke.
	KindTransport
	// KindServer marks well-formed remote failures carrying a status code.
	KindServer
)

// Error is the structured error used across the client.
type Error struct {
	Kind    Kind
	Code    StatusCode
	Message string
	Details map[string]interface{}
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	e.Details[key] = value
	return e
}

// New creates a structured error.
func New(kind Kind, code StatusCode, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// Client creates a client-local error detected before any network call.
func Client(message string) *Error {
	return New(KindClient, StatusInvalidArgument, message, nil)
}

// Clientf creates a client-local error with a formatted message.
func Clientf(format string, args ...interface{}) *Error {
	return Client(fmt.Sprintf(format, args...))
}

// Transport creates an error for a connection that could not be
// established or maintained.
func Transport(message string, cause error) *Error {
	return New(KindTransport, StatusInternalError, message, cause)
}

// Server creates an error for a well-formed remote failure.
func Server(code StatusCode, message string) *Error {
	return New(KindServer, code, message, nil)
}

// IsOK reports whether a server status code means success.
func IsOK(code StatusCode) bool {
	return code == StatusOK
}

// AsServer extracts a server error from an error chain.
func AsServer(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindServer {
		return e, true
	}
	return nil, false
}

// CodeOf extracts the status code from an error, defaulting to
// StatusInternalError for anything unstructured.
func CodeOf(err error) StatusCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return StatusInternalError
}
