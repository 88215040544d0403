package service

import "errors"

// Sentinel errors surfaced to the transport layer. Handlers map them onto
// HTTP status codes.
var (
	// ErrNotFound means the record does not exist or the caller is not
	// allowed to know that it exists.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller is known but lacks the role or
	// ownership required for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrConflict means a concurrent update won and the caller should
	// reload and retry.
	ErrConflict = errors.New("conflict")

	// ErrInvalidCredentials means the login attempt did not match an
	// active account.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
