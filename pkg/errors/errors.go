// Package errors provides a structured error system for the namespace layer
// with error codes and per-key context.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure of a namespace or storage operation.
type ErrorCode string

const (
	// Storage errors
	ErrCodeObjectNotFound   ErrorCode = "OBJECT_NOT_FOUND"
	ErrCodeAccessDenied     ErrorCode = "ACCESS_DENIED"
	ErrCodeStoreUnavailable ErrorCode = "STORE_UNAVAILABLE"

	// Caller errors
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"
	ErrCodeInvalidAgentType ErrorCode = "INVALID_AGENT_TYPE"

	// Capture errors
	ErrCodeGeolocationUnavailable ErrorCode = "GEOLOCATION_UNAVAILABLE"
	ErrCodeAnnotationTimeout      ErrorCode = "ANNOTATION_TIMEOUT"
)

// Error is a structured error with a code, an optional object key, and an
// optional underlying cause.
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Key     string    `json:"key,omitempty"`
	Cause   error     `json:"-"`

	// Retryable marks failures that a backoff loop may attempt again.
	// Only STORE_UNAVAILABLE qualifies by default; OBJECT_NOT_FOUND is
	// retryable solely inside the annotation poll loop, which handles it
	// explicitly rather than through this flag.
	Retryable bool `json:"retryable"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s (key=%s)", e.Code, e.Message, e.Key)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches errors by code so sentinel-style comparisons work across wrapping.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates an error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Retryable: code == ErrCodeStoreUnavailable,
	}
}

// Newf creates an error with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// WithKey attaches the object key the operation was acting on.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithCause attaches the underlying error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// CodeOf returns the code of err if it carries one, or "" otherwise.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsNotFound reports whether err is an OBJECT_NOT_FOUND error. Call sites use
// this to distinguish the expected "annotation not yet written" and "no project
// document yet" outcomes from real failures.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeObjectNotFound
}

// IsAccessDenied reports whether err is an ACCESS_DENIED error.
func IsAccessDenied(err error) bool {
	return CodeOf(err) == ErrCodeAccessDenied
}

// IsRetryable reports whether err may be retried by a backoff loop.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Retryable
	}
	return false
}
