// Package serrors defines semantic error kinds and a wrapper that carries a
// kind, an optional cause and a message. Callers branch on the kind with
// errors.Is while the message and cause stay available for logs.
package serrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is implemented only by sentinels created with NewKind.
type Kind interface {
	error
	isKind()
}

type kind struct{ s string }

func (k kind) Error() string { return k.s }
func (k kind) isKind()       {}

// NewKind creates a new semantic kind sentinel.
func NewKind(name string) Kind { return kind{s: name} }

var (
	// ErrBadRequest means the caller supplied an unusable input, e.g. a
	// relative or non-http URL.
	ErrBadRequest = NewKind("BAD_REQUEST")
	// ErrUnauthorized means a missing or invalid bearer token.
	ErrUnauthorized = NewKind("UNAUTHORIZED")
	// ErrNotFound means the requested resource or route does not exist.
	ErrNotFound = NewKind("NOT_FOUND")
	// ErrTimeout means a fetch, lookup or prediction ran out of time.
	ErrTimeout = NewKind("TIMEOUT")
	// ErrUnavailable means a remote party (target site, registry, model
	// service) could not be reached or answered with a failure.
	ErrUnavailable = NewKind("UNAVAILABLE")
	// ErrInternal is anything else.
	ErrInternal = NewKind("INTERNAL")
)

// Kinds lists every kind declared above.
var Kinds = []Kind{ //nolint: gochecknoglobals
	ErrBadRequest, ErrUnauthorized, ErrNotFound, ErrTimeout, ErrUnavailable, ErrInternal,
}

// Error is a semantic error. errors.Is and errors.As match either the kind
// or anything in the wrapped chain.
//
// Error() renders "<msg>: <cause>", "<msg>", "<cause>" or the kind name,
// depending on which parts are set.
type Error struct {
	kind Kind
	err  error
	msg  string
}

// With creates an error of kind k with a formatted message.
func With(k Kind, msgFmt string, args ...any) *Error {
	return &Error{kind: k, msg: fmt.Sprintf(msgFmt, args...)}
}

// Wrap creates an error of kind k wrapping err with a formatted message.
func Wrap(k Kind, err error, msgFmt string, args ...any) *Error {
	return &Error{kind: k, err: err, msg: fmt.Sprintf(msgFmt, args...)}
}

// KindOnly creates an error carrying nothing but k.
func KindOnly(k Kind) *Error { return &Error{kind: k} }

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.msg != "" && e.err != nil:
		return e.msg + ": " + e.err.Error()
	case e.msg != "":
		return e.msg
	case e.err != nil:
		return e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	default:
		return "unknown error"
	}
}

// Unwrap returns the cause.
func (e *Error) Unwrap() error { return e.err }

// Is matches target against the kind first and then the cause chain.
func (e *Error) Is(target error) bool {
	if e == nil || target == nil {
		return e == nil && target == nil
	}
	if e.kind != nil && errors.Is(e.kind, target) {
		return true
	}

	return e.err != nil && errors.Is(e.err, target)
}

// As works like Is for errors.As.
func (e *Error) As(target any) bool {
	if e == nil || target == nil {
		return false
	}
	if e.kind != nil && errors.As(e.kind, target) {
		return true
	}

	return e.err != nil && errors.As(e.err, target)
}

// Kind returns the kind sentinel, or nil.
func (e *Error) Kind() Kind { return e.kind }

// Message returns the message without the cause.
func (e *Error) Message() string { return e.msg }

// Cause returns the wrapped cause, may be nil.
func (e *Error) Cause() error { return e.err }

// KindOf returns the first declared kind err matches, or ErrInternal.
func KindOf(err error) Kind {
	for _, k := range Kinds {
		if errors.Is(err, k) {
			return k
		}
	}

	return ErrInternal
}

// HTTPStatus maps the kind of err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrBadRequest:
		return http.StatusBadRequest
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrNotFound:
		return http.StatusNotFound
	case ErrTimeout:
		return http.StatusGatewayTimeout
	case ErrUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
