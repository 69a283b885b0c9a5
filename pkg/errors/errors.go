// Package errors provides structured error types for burrow.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP service and the library
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (fail fast at construction time)
//   - NO_SOLUTION, BUDGET_EXHAUSTED: Search outcomes that are not answers
//   - TIMEOUT, CANCELED: Caller-imposed limits
//   - INTERNAL: Unexpected internal errors
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidToken, "unknown token symbol %q", r)
//	if errors.Is(err, errors.ErrCodeInvalidToken) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidConfig, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidToken  Code = "INVALID_TOKEN"
	ErrCodeInvalidDepth  Code = "INVALID_DEPTH"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidBoard  Code = "INVALID_BOARD"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeTokenCount    Code = "TOKEN_COUNT"

	// Search outcomes
	ErrCodeNoSolution      Code = "NO_SOLUTION"
	ErrCodeBudgetExhausted Code = "BUDGET_EXHAUSTED"

	// Caller-imposed limits
	ErrCodeTimeout  Code = "TIMEOUT"
	ErrCodeCanceled Code = "CANCELED"

	// Resource not found errors
	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

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

// Is reports whether target is an *Error with the same code. This lets
// package-level sentinels built with New match errors carrying extra context.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
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
