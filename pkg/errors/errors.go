// Package errors provides structured error types for infragraph.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so that the command line and the interactive workbench can decide how
// to present it without string matching:
//   - DUPLICATE_ID: an id (node id or edge key) already exists
//   - NOT_FOUND: a referenced node or edge does not exist
//   - PARSE_ERROR: an import document is structurally invalid
//   - SCHEMA_ERROR: a project document violates the project schema
//   - IO_ERROR: a file could not be read or written
//
// Package-level sentinel errors (for example graph.ErrNodeNotFound) are
// attached as the Cause, so both errors.Is(err, sentinel) and Is(err, code)
// hold for the same value.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid node type: %s", t)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeIO, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Graph edit errors
	ErrCodeDuplicateID Code = "DUPLICATE_ID"
	ErrCodeNotFound    Code = "NOT_FOUND"

	// Document errors
	ErrCodeParse  Code = "PARSE_ERROR"
	ErrCodeSchema Code = "SCHEMA_ERROR"
	ErrCodeIO     Code = "IO_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle  Code = "INVALID_STYLE"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Session errors
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeUnsavedChanges  Code = "UNSAVED_CHANGES"

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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// The outermost *Error wins, so a SCHEMA_ERROR wrapping a DUPLICATE_ID
// reports SCHEMA_ERROR only.
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
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}

// Title returns a short heading for the error category, used as the title of
// error dialogs in the workbench.
func Title(code Code) string {
	switch code {
	case ErrCodeDuplicateID:
		return "Duplicate ID"
	case ErrCodeNotFound:
		return "Not found"
	case ErrCodeParse:
		return "Import failed"
	case ErrCodeSchema:
		return "Invalid project file"
	case ErrCodeIO:
		return "File error"
	case ErrCodeUnsavedChanges:
		return "Unsaved changes"
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidStyle, ErrCodeInvalidPath:
		return "Invalid input"
	default:
		return "Error"
	}
}
