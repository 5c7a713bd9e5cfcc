// Package apperr is the error taxonomy shared by services and controllers.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindForbidden    Kind = "forbidden"
	KindUnauthorized Kind = "unauthorized"
	KindLocked       Kind = "locked"
	KindInternal     Kind = "internal"
)

type Error struct {
	Kind    Kind
	Message string
	// Retryable marks conflicts the caller may resolve by simply retrying
	// (e.g. a receipt number taken by a concurrent insert).
	Retryable bool
	// Fields carries per-field validation messages, if any.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func ValidationFields(msg string, fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func Conflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Err: cause}
}

func RetryableConflict(msg string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: msg, Retryable: true, Err: cause}
}

func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }

func Unauthorized(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }

func Locked(msg string) *Error { return &Error{Kind: KindLocked, Message: msg} }

func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: cause}
}

// As extracts *Error from err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// KindOf returns the kind of err, KindInternal for foreign errors.
func KindOf(err error) Kind {
	if ae, ok := As(err); ok {
		return ae.Kind
	}
	return KindInternal
}

func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// IsRetryable reports whether err is a conflict the caller may retry.
func IsRetryable(err error) bool {
	ae, ok := As(err)
	return ok && ae.Kind == KindConflict && ae.Retryable
}
