package auth

import "errors"

// Sentinel errors for credential construction.
var (
	// ErrMissingCredentials means a blank token, user, or password was
	// supplied.
	ErrMissingCredentials = errors.New("auth: missing credentials")
)
