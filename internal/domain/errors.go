package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures so callers can pick a recovery path.
type Kind string

const (
	KindValidation     Kind = "VALIDATION_ERROR"
	KindSessionExpired Kind = "SESSION_EXPIRED"
	KindNotFound       Kind = "NOT_FOUND"
	KindConflict       Kind = "ALREADY_EXISTS"
	KindTransport      Kind = "TRANSPORT_ERROR"
	KindInternal       Kind = "INTERNAL_ERROR"
)

// Error is the typed error shared by storage, engine and flows.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	// ErrNotFound matches any not-found error via errors.Is.
	ErrNotFound = &Error{Kind: KindNotFound}
	// ErrConflict matches unique-constraint violations.
	ErrConflict = &Error{Kind: KindConflict}
	// ErrValidation matches input validation failures.
	ErrValidation = &Error{Kind: KindValidation}
	// ErrSessionExpired matches missing scratch data between dependent steps.
	ErrSessionExpired = &Error{Kind: KindSessionExpired}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the wrapped cause.
func (e *Error) Unwrap() error { return e.Err }

// Code returns the machine-readable kind for log fields.
func (e *Error) Code() string { return string(e.Kind) }

// Is matches sentinel errors by kind. Sentinels carry no message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Kind == e.Kind
}

// NotFound builds a not-found error for an entity.
func NotFound(entity string, id any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

// Conflict wraps a unique-constraint violation.
func Conflict(entity string, err error) error {
	return &Error{Kind: KindConflict, Message: entity + " already exists", Err: err}
}

// Validation builds an input validation error.
func Validation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// SessionExpired reports scratch data that vanished between steps.
func SessionExpired(msg string) error {
	return &Error{Kind: KindSessionExpired, Message: msg}
}

// Wrap attaches a kind to an arbitrary error.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
