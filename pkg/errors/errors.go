// Package errors provides structured error types for talklike.
//
// Filters fail in exactly one place: when a definition is assembled into a
// pipeline. Once assembled, transforming text never fails. The codes below
// let the CLI, the HTTP API and the gRPC service tell a broken filter
// definition apart from a missing one or a network failure.
//
// # Error Codes
//
//   - INVALID_*: configuration and input validation failures
//   - *_NOT_FOUND: unknown filters or files
//   - NETWORK_ERROR, TIMEOUT: remote catalog failures
//   - INTERNAL_ERROR, UNSUPPORTED: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidConfiguration, "unknown module %q", name)
//	if errors.Is(err, errors.ErrCodeInvalidConfiguration) {
//	    // report a broken filter definition
//	}
//
//	err := errors.Wrap(errors.ErrCodeInvalidPattern, cause, "compile %q", key)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Filter construction errors
	ErrCodeInvalidConfiguration Code = "INVALID_CONFIGURATION"
	ErrCodeInvalidPattern       Code = "INVALID_PATTERN"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidName   Code = "INVALID_NAME"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Resource not found errors
	ErrCodeNotFound       Code = "NOT_FOUND"
	ErrCodeFilterNotFound Code = "FILTER_NOT_FOUND"
	ErrCodeFileNotFound   Code = "FILE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"
	ErrCodeTimeout Code = "TIMEOUT"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Configuration reports a filter definition that is structurally invalid,
// such as an unknown algorithmic module or a non-positive frequency.
func Configuration(format string, args ...any) *Error {
	return New(ErrCodeInvalidConfiguration, format, args...)
}

// Pattern reports a literal that could not be compiled into a match rule.
func Pattern(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeInvalidPattern, cause, format, args...)
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsDefinitionError reports whether err means the filter definition itself
// is broken, as opposed to missing or unreachable.
func IsDefinitionError(err error) bool {
	switch GetCode(err) {
	case ErrCodeInvalidConfiguration, ErrCodeInvalidPattern, ErrCodeInvalidFormat:
		return true
	}
	return false
}

// IsNotFound reports whether err carries one of the not-found codes.
func IsNotFound(err error) bool {
	switch GetCode(err) {
	case ErrCodeNotFound, ErrCodeFilterNotFound, ErrCodeFileNotFound:
		return true
	}
	return false
}
