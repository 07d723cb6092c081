package auth

import "errors"

// Sentinel errors for authentication.
var (
	ErrMissingCredentials = errors.New("auth: missing credentials")
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrTokenExpired       = errors.New("auth: token expired")
	ErrTokenMalformed     = errors.New("auth: token malformed")

	// ErrNoAuthenticators is returned by New when the config enables no method.
	ErrNoAuthenticators = errors.New("auth: no authentication method configured")

	// ErrInvalidConfig is returned for incomplete method settings.
	ErrInvalidConfig = errors.New("auth: invalid config")
)
