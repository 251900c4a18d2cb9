package chnative

import (
	"fmt"
	"time"
)

// Error is the structured error type returned by every exported operation
// in this module. Callers that need to branch on failure kind should use
// errors.As to recover an *Error and compare its Code against the package's
// Code* constants, rather than matching on Error() text.
type Error struct {
	Code      Code
	Message   string
	Cause     error
	Context   map[string]string
	Timestamp time.Time
}

func newError(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Timestamp: time.Now()}
}

func newErrorf(code Code, format string, args ...interface{}) *Error {
	return newError(code, fmt.Sprintf(format, args...))
}

func wrapError(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Timestamp: time.Now()}
}

func wrapErrorf(code Code, cause error, format string, args ...interface{}) *Error {
	return wrapError(code, cause, fmt.Sprintf(format, args...))
}

// NewSchemaIncompatible builds a CodeSchemaIncompatible error, exported for
// the schema bridge (component F), which lives in its own package and has
// no other way to produce this module's structured error type.
func NewSchemaIncompatible(format string, args ...interface{}) *Error {
	return newErrorf(CodeSchemaIncompatible, format, args...)
}

func (e *Error) WithContext(key, value string) *Error {
	if e.Context == nil {
		e.Context = make(map[string]string)
	}
	e.Context[key] = value
	return e
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// IsRecoverable reports whether the session this error arose in may
// continue to be used: server exceptions and schema mismatches are
// recoverable; everything else, timeouts and cancellation included, is
// terminal.
func (e *Error) IsRecoverable() bool {
	switch e.Code {
	case CodeServerException, CodeSchemaIncompatible:
		return true
	default:
		return false
	}
}
