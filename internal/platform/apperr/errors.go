// Package apperr defines the error types shared by the routeplanner layers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInvalidState Kind = "invalid_state"
)

// Error is an application error carrying a kind and a display message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// NewValidationError reports input that failed validation.
func NewValidationError(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewNotFoundError reports a missing entity.
func NewNotFoundError(entity, id string) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s not found: %s", entity, id)}
}

// NewConflictError reports an operation that clashes with concurrent work.
func NewConflictError(message string) error {
	return &Error{Kind: KindConflict, Message: message}
}

// NewInvalidStateError reports a forbidden state transition.
func NewInvalidStateError(from, to string) error {
	return &Error{
		Kind:    KindInvalidState,
		Message: fmt.Sprintf("invalid state transition from %s to %s", from, to),
	}
}

// KindOf returns the kind of err, if err wraps an *Error.
func KindOf(err error) (Kind, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// IsKind reports whether err wraps an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
