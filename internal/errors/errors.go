// Package errors provides coded application errors shared by the stores,
// services and transports.
package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrCode classifies an application error.
type ErrCode string

const (
	ErrCodeNotFound        ErrCode = "NOT_FOUND"
	ErrCodeInvalidInput    ErrCode = "INVALID_INPUT"
	ErrCodeUnauthenticated ErrCode = "UNAUTHENTICATED"
	ErrCodeForbidden       ErrCode = "FORBIDDEN"
	ErrCodeConflict        ErrCode = "CONFLICT"
	ErrCodeInternal        ErrCode = "INTERNAL"
)

// Error is an error carrying an ErrCode and, for input errors, the offending field.
type Error struct {
	Code    ErrCode
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error with the given code.
func New(code ErrCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code ErrCode, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *Error {
	return &Error{Code: ErrCodeNotFound, Message: fmt.Sprintf("%s %q not found", resource, id)}
}

// InvalidInput reports a rejected field value.
func InvalidInput(field, message string) *Error {
	return &Error{Code: ErrCodeInvalidInput, Message: message, Field: field}
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrCodeInternal when there is none.
func CodeOf(err error) ErrCode {
	var appErr *Error
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrCode) bool {
	if err == nil {
		return false
	}
	return CodeOf(err) == code
}
