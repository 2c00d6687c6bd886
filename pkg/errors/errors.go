// Package errors defines the coded errors pageviz reports.
//
// Every failure a user can act on carries a [Code]. The CLI prints it as
// "Error [MALFORMED_TREE]: ..." and the HTTP API returns it in the JSON body
// next to the status from [Code.HTTPStatus]:
//
//	MALFORMED_TREE          outline has a structural defect       422
//	INVALID_INPUT, ...      request or flag value is unusable     400
//	NOT_FOUND, ...          document or session does not exist    404
//	UNSUPPORTED             feature not available in this build   501
//	UNKNOWN_NODE_REFERENCE  graph invariant broken internally     500
//
// Errors from this package work with the standard errors.Is and errors.As
// through Unwrap; [Is] matches on the code instead of identity.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error category.
type Code string

const (
	ErrCodeMalformedTree Code = "MALFORMED_TREE"

	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT" // not JSON, or an unknown output format
	ErrCodeInvalidPath   Code = "INVALID_PATH"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	ErrCodeNotFound     Code = "NOT_FOUND"
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	ErrCodeUnknownNodeReference Code = "UNKNOWN_NODE_REFERENCE"
	ErrCodeInternal             Code = "INTERNAL_ERROR"
	ErrCodeUnsupported          Code = "UNSUPPORTED"
)

// Codes lists every code, in the order of the table above.
var Codes = []Code{
	ErrCodeMalformedTree,
	ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidConfig,
	ErrCodeNotFound, ErrCodeFileNotFound,
	ErrCodeUnsupported,
	ErrCodeUnknownNodeReference, ErrCodeInternal,
}

// HTTPStatus returns the response status for errors with code c.
func (c Code) HTTPStatus() int {
	switch c {
	case ErrCodeMalformedTree:
		return http.StatusUnprocessableEntity
	case ErrCodeInvalidInput, ErrCodeInvalidFormat, ErrCodeInvalidPath, ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case ErrCodeNotFound, ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string // shown to users without the code
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return string(e.Code) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// MalformedTree reports a structural defect of an input outline: a null
// section, a missing title, a section reachable twice.
func MalformedTree(format string, args ...any) *Error {
	return New(ErrCodeMalformedTree, format, args...)
}

// IsMalformedTree reports whether err carries ErrCodeMalformedTree.
func IsMalformedTree(err error) bool { return Is(err, ErrCodeMalformedTree) }

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage returns the message of the outermost *Error without its code,
// or err.Error() for uncoded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.Message
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
