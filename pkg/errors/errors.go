package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeUsage       ErrorType = "usage"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an API or I/O error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Err     error
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(t ErrorType, code int, msg string) *Error {
	return &Error{Type: t, Code: code, Message: msg}
}

// Wrap creates a typed error around a cause
func Wrap(t ErrorType, err error, msg string) *Error {
	return &Error{Type: t, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown if err is not a typed error
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsType reports whether err is a typed error of the given type
func IsType(err error, t ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == t
}

// IsAPIError reports whether err came from a non-success HTTP status, as
// opposed to a transport or local failure.
func IsAPIError(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code >= 300
}

// FromStatusCode maps a non-success HTTP status onto a typed error
func FromStatusCode(code int) *Error {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return New(ErrorTypeAuth, code, "access key rejected")
	case code == http.StatusNotFound:
		return New(ErrorTypeNotFound, code, "resource not found")
	case code == http.StatusTooManyRequests:
		return New(ErrorTypeRateLimit, code, "rate limit exceeded")
	case code >= 500:
		return New(ErrorTypeServerError, code, "server error")
	default:
		return New(ErrorTypeUnknown, code, fmt.Sprintf("unexpected status code: %d", code))
	}
}
