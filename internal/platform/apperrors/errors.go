// Package apperrors defines the domain error taxonomy shared by all
// services and the echo error handler that maps it to HTTP responses.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindUnknown is an unclassified internal failure.
	KindUnknown Kind = iota
	// KindUnauthenticated means no caller identity could be resolved.
	KindUnauthenticated
	// KindForbidden means the caller is known but lacks the required grant.
	KindForbidden
	// KindNotFound means a referenced entity does not exist.
	KindNotFound
	// KindConflict means the request contradicts current state.
	KindConflict
	// KindValidation means the input is malformed or incomplete.
	KindValidation
	// KindDispatch wraps a failure while persisting a notification.
	KindDispatch
)

// Error is a classified domain error.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match two classified errors by kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

func Unauthenticated(msg string) error { return &Error{Kind: KindUnauthenticated, Msg: msg} }
func Forbidden(msg string) error       { return &Error{Kind: KindForbidden, Msg: msg} }
func NotFound(msg string) error        { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) error        { return &Error{Kind: KindConflict, Msg: msg} }

// Validation reports a per-field validation failure.
func Validation(field, msg string) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf("%s: %s", field, msg)}
}

// Dispatch wraps a persistence failure from the notification dispatcher.
// This is the only place lower-level errors are intentionally re-wrapped
// rather than propagated raw.
func Dispatch(err error) error {
	return &Error{Kind: KindDispatch, Msg: "notification dispatch failed", Err: err}
}

// KindOf returns the Kind of err, or KindUnknown for unclassified errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNotFound(err error) bool        { return KindOf(err) == KindNotFound }
func IsForbidden(err error) bool       { return KindOf(err) == KindForbidden }
func IsUnauthenticated(err error) bool { return KindOf(err) == KindUnauthenticated }
func IsConflict(err error) bool        { return KindOf(err) == KindConflict }
func IsValidation(err error) bool      { return KindOf(err) == KindValidation }
