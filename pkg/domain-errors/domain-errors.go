// Package domainerrors carries transport-agnostic failure codes from the
// registry pipeline to the HTTP and Telegram edges.
package domainerrors

import "errors"

// Code classifies a failure in terms of the lookup, not of any transport.
type Code string

const (
	CodeNotFound     Code = "not_found"
	CodeBadRequest   Code = "bad_request"
	CodeInvalidInput Code = "invalid_input"
	CodeValidation   Code = "validation_failed"
	CodeInternal     Code = "internal_error"
	CodeTimeout      Code = "timeout"
	CodeUnavailable  Code = "unavailable"  // registry down or circuit open
	CodeRateLimited  Code = "rate_limited" // registry throttled the call
)

// Error is a coded failure with a message safe to show to callers. Err keeps
// the underlying cause for logs and errors.Is.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so errors.Is(err, New(code, ""))
// tests the code regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

// New returns a coded error without a cause.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to err. A code already present in the
// chain wins over the one passed in.
func Wrap(err error, code Code, msg string) error {
	if existing, ok := as(err); ok {
		code = existing.Code
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether the outermost domain error in the chain has code.
func HasCode(err error, code Code) bool {
	e, ok := as(err)
	return ok && e.Code == code
}

// CodeOf returns the code of the outermost domain error in the chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	if e, ok := as(err); ok {
		return e.Code
	}
	return CodeInternal
}

// MessageOf returns the caller-safe message of the outermost domain error, or
// fallback when the chain carries none.
func MessageOf(err error, fallback string) string {
	if e, ok := as(err); ok && e.Message != "" {
		return e.Message
	}
	return fallback
}

func as(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
