package services

import (
	"errors"
	"fmt"
)

// Error kinds. Handlers map them to HTTP statuses with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrBadRequest         = errors.New("bad request")
	ErrNotFound           = errors.New("not found")
	ErrOutOfStock         = errors.New("out of stock")
	ErrConflict           = errors.New("conflict")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrForbidden          = errors.New("forbidden")
	ErrStore              = errors.New("store failure")
)

// Error is a domain error carrying the message shown to the client.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// storeError reports a failed store call as ErrStore, keeping the cause in
// the detail.
func storeError(err error) *Error {
	return newError(ErrStore, "Database error: %v", err)
}

// asDomainError returns err unchanged if it already is an *Error and wraps
// it as a store failure otherwise.
func asDomainError(err error) error {
	var derr *Error
	if errors.As(err, &derr) {
		return err
	}
	return storeError(err)
}
