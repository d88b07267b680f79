// Package errors provides structured error types for famtools.
//
// This package defines error codes and types that enable:
//   - Consistent error handling between the CLI and the library packages
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Every failure that aborts a sync run carries one of the codes below. The
// reconciliation engine never recovers from them: a run either completes and
// persists the mod list, or fails with a single coded error and leaves the
// mod list on disk untouched.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeRegistry, "version %s of %s not found", v, name)
//	if errors.Is(err, errors.ErrCodeRegistry) {
//	    // Handle registry error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeDownload, origErr, "fetch %s %s", name, v)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Reconciliation errors
	ErrCodeParse           Code = "PARSE_ERROR"
	ErrCodeVersionConflict Code = "VERSION_CONFLICT"
	ErrCodeDocument        Code = "DOCUMENT_ERROR"

	// Collaborator errors
	ErrCodeDownload         Code = "DOWNLOAD_ERROR"
	ErrCodeRegistry         Code = "REGISTRY_ERROR"
	ErrCodeChecksumMismatch Code = "CHECKSUM_MISMATCH"
	ErrCodeCredentials      Code = "CREDENTIALS_ERROR"

	// Input validation errors
	ErrCodeInvalidModName Code = "INVALID_MOD_NAME"
	ErrCodeInvalidVersion Code = "INVALID_VERSION"
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"

	// Resource and transport errors
	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeNetwork  Code = "NETWORK_ERROR"
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

// coded is implemented by detail error types that carry a fixed code.
type coded interface {
	error
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for the outermost *Error or coded
// detail error and compares its code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coded:
			return e.Code()
		}
		err = errors.Unwrap(err)
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

// ParseError reports a log line that looked like a mod mention but did not
// match the expected structure.
type ParseError struct {
	LineNo int    // 1-based line number in the log
	Line   string // raw offending line content
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed mod mention on line %d: %q", ErrCodeParse, e.LineNo, e.Line)
}

// Code returns the error code for this error type.
func (e *ParseError) Code() Code {
	return ErrCodeParse
}

// VersionConflictError reports a mod seen with two distinct versions, or an
// official mod whose version disagrees with the other official mods.
type VersionConflictError struct {
	Mod      string // mod name; for an engine disagreement, the official mod that differs
	Existing string // version recorded first
	Found    string // conflicting version seen later
}

// Error implements the error interface.
func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("%s: multiple versions of mod %s found: %s %s", ErrCodeVersionConflict, e.Mod, e.Existing, e.Found)
}

// Code returns the error code for this error type.
func (e *VersionConflictError) Code() Code {
	return ErrCodeVersionConflict
}
