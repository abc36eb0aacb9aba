// Package apperr defines the typed failures returned across service boundaries.
package apperr

import "errors"

// Kind classifies an error so callers can react without string matching.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindIntegrity    Kind = "integrity"
	KindPersistence  Kind = "persistence"
	KindUnauthorized Kind = "unauthorized"
	KindLocked       Kind = "locked"
	KindNotFound     Kind = "not_found"
)

// Error carries a kind, a human-readable message and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// Sentinels for errors.Is checks by kind.
var (
	ErrValidation   = &Error{Kind: KindValidation}
	ErrIntegrity    = &Error{Kind: KindIntegrity}
	ErrPersistence  = &Error{Kind: KindPersistence}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrLocked       = &Error{Kind: KindLocked}
	ErrNotFound     = &Error{Kind: KindNotFound}
)

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Integrity(message string) *Error {
	return &Error{Kind: KindIntegrity, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func Locked(message string) *Error {
	return &Error{Kind: KindLocked, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Persistence wraps a storage failure.
func Persistence(message string, cause error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Cause: cause}
}

// KindOf reports the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Message returns the user-facing message of err, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
