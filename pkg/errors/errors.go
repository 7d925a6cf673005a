// Package errors provides structured error types for mapcustomizer.
//
// Every failure the render engine can produce is classified by a [Code] so
// callers can tell degradable problems from fatal ones:
//   - RESOURCE_MISSING: a font, icon or records file is absent
//   - MALFORMED_INPUT: a records file or request body cannot be decoded
//   - IO_FAILURE: the base image cannot be read, or the result cannot be written
//   - INVALID_*: option and configuration validation failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeMalformedInput, "record %d: missing %q", i, "x")
//	if errors.Is(err, errors.ErrCodeMalformedInput) {
//	    // abort the owning pass only
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIOFailure, origErr, "write %s", path)
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
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Render taxonomy
	ErrCodeResourceMissing Code = "RESOURCE_MISSING"
	ErrCodeMalformedInput  Code = "MALFORMED_INPUT"
	ErrCodeIOFailure       Code = "IO_FAILURE"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
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

// Is reports whether err has the given error code.
// Only the outermost *Error in the chain is consulted.
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

// Recoverable reports whether err leaves the composition usable: a missing
// resource or a malformed records file only costs the owning pass.
func Recoverable(err error) bool {
	switch GetCode(err) {
	case ErrCodeResourceMissing, ErrCodeMalformedInput:
		return true
	}
	return false
}
