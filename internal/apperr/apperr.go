// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int8

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthenticated
	KindForbidden
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not found"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Error is a client-facing failure: Message is the envelope message and
// Detail the list of human readable reasons.
type Error struct {
	Kind    Kind
	Message string
	Detail  []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s %v", e.Kind, e.Message, e.Detail)
}

func Validation(message string, detail ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Detail: detail}
}

func Conflict(message string, detail ...string) *Error {
	return &Error{Kind: KindConflict, Message: message, Detail: detail}
}

func NotFound(detail ...string) *Error {
	return &Error{Kind: KindNotFound, Message: "error", Detail: detail}
}

func Unauthenticated(detail string) *Error {
	return &Error{Kind: KindUnauthenticated, Message: "token authentication", Detail: []string{detail}}
}

func Forbidden(detail ...string) *Error {
	return &Error{Kind: KindForbidden, Message: "error", Detail: detail}
}

// KindOf reports the kind of err, KindUnknown for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}
