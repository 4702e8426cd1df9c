// Package apperror defines the error kinds surfaced at the service boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error.
type Kind int

const (
	Unexpected Kind = iota
	Validation
	Unauthorized
	NotFound
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Validation:
		return "validation"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case Conflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// UnauthorizedMessage is returned to callers without a valid session.
const UnauthorizedMessage = "Unauthorized"

// Error is a classified failure with a message safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the error kind to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case Validation:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusUnauthorized
	case NotFound:
		return http.StatusNotFound
	case Conflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func New(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NewValidation(message string) *Error {
	return New(Validation, message, nil)
}

func NewUnauthorized() *Error {
	return New(Unauthorized, UnauthorizedMessage, nil)
}

func NewNotFound(message string) *Error {
	return New(NotFound, message, nil)
}

func NewConflict(message string) *Error {
	return New(Conflict, message, nil)
}

func NewUnexpected(message string, err error) *Error {
	return New(Unexpected, message, err)
}

// From returns err as an *Error. Anything outside the taxonomy becomes
// Unexpected carrying the fallback message.
func From(err error, fallback string) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewUnexpected(fallback, err)
}

// KindOf reports the kind of err, or Unexpected when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return Unexpected
}

func IsValidation(err error) bool   { return err != nil && KindOf(err) == Validation }
func IsUnauthorized(err error) bool { return err != nil && KindOf(err) == Unauthorized }
func IsNotFound(err error) bool     { return err != nil && KindOf(err) == NotFound }
func IsConflict(err error) bool     { return err != nil && KindOf(err) == Conflict }
