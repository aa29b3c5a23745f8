// Package errors provides structured error handling for Conformly.
// Errors carry codes for programmatic handling, a cause chain, and context.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Code identifies an error class.
type Code string

const (
	// Input shape errors (1xx): the log is not a supported representation.
	CodeInputShape    Code = "E101"
	CodeEmptyLog      Code = "E102"
	CodeInvalidFormat Code = "E103"

	// Schema errors (2xx): a required column or attribute is missing.
	CodeMissingColumn    Code = "E201"
	CodeMissingAttribute Code = "E202"
	CodeInvalidTimestamp Code = "E203"

	// Model errors (3xx): the model cannot be classified or converted.
	CodeUnsupportedModel Code = "E301"
	CodeModelConversion  Code = "E302"
	CodeInvalidMarking   Code = "E303"

	// Engine errors (4xx): failures propagated from the diagnostic engines.
	CodeReplayFailed    Code = "E401"
	CodeAlignmentFailed Code = "E402"
	CodeContextCanceled Code = "E403"

	// Unknown
	CodeUnknown Code = "E999"
)

// Error is the base error type for all Conformly errors.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %s", e.Code, e.Message)

	if len(e.Context) > 0 {
		sb.WriteString(" (")
		first := true
		for k, v := range e.Context {
			if !first {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%s=%v", k, v)
			first = false
		}
		sb.WriteString(")")
	}

	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Cause }

// Is matches on code so call sites can test error classes with errors.Is.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WithContext adds a key-value pair to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates a new coded error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap wraps an existing error under a code.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Cause: err}
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// --- Convenience constructors ---

// InputShape signals a log that is not a recognized log/table shape.
func InputShape(got any) *Error {
	return New(CodeInputShape, "log is not a supported event log or table").
		WithContext("got", fmt.Sprintf("%T", got))
}

// MissingColumn signals a required table column that does not exist.
func MissingColumn(column string, available []string) *Error {
	return New(CodeMissingColumn, "required column not found").
		WithContext("column", column).
		WithContext("available", available)
}

// UnsupportedModel signals a model that cannot be classified or converted.
func UnsupportedModel(got any) *Error {
	return New(CodeUnsupportedModel, "model cannot be classified or converted").
		WithContext("got", fmt.Sprintf("%T", got))
}

// --- Error checking utilities ---

// IsCode checks whether any error in the chain carries the given code.
func IsCode(err error, code Code) bool {
	return errors.Is(err, &Error{Code: code})
}

// GetCode extracts the code from an error chain.
func GetCode(err error) Code {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Code
	}
	return CodeUnknown
}

// IsInputShape reports whether err is an input shape error.
func IsInputShape(err error) bool { return IsCode(err, CodeInputShape) }

// IsSchema reports whether err is a schema error.
func IsSchema(err error) bool {
	switch GetCode(err) {
	case CodeMissingColumn, CodeMissingAttribute, CodeInvalidTimestamp:
		return true
	}
	return false
}

// IsUnsupportedModel reports whether err is a model classification error.
func IsUnsupportedModel(err error) bool {
	switch GetCode(err) {
	case CodeUnsupportedModel, CodeModelConversion:
		return true
	}
	return false
}
