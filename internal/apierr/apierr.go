// Package apierr defines the error taxonomy every failure is translated
// into before it reaches a caller.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure.
type Kind int

const (
	BadRequest Kind = iota + 1
	Unauthorized
	Forbidden
	NotFound
	Conflict
	Internal
)

// HTTPStatus maps a kind to its response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case Forbidden:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure with a human-readable message and, for
// validation failures, per-field details.
type Error struct {
	kind   Kind
	msg    string
	fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.cause }

// Kind returns the classification.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the outward-facing message without the wrapped cause.
func (e *Error) Message() string { return e.msg }

// Fields returns per-field validation details, nil when none.
func (e *Error) Fields() map[string]string { return e.fields }

// New builds a classified error.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf builds a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error. The cause is kept for logs but
// never serialized to the caller.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

// WithFields attaches per-field validation details.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.fields = fields
	return e
}

// KindOf classifies any error; unrecognized errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return Internal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
