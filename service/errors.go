package service

import (
	"errors"

	"notes-api/auth"
)

// Failure kinds. Every error returned by Service matches exactly one of these
// with errors.Is, or is an internal fault.
var (
	ErrBadRequest         = errors.New("bad request")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrDuplicateName      = errors.New("username already exists")
	ErrInvalidCredentials = auth.ErrInvalidCredentials
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
)

// Error pairs a failure kind with the message shown to the client.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func fail(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}
