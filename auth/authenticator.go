package auth

import (
	"context"
	"net/http"
)

// Authenticator validates credentials and returns an identity.
//
// Contract:
//   - Concurrency: implementations must be safe for concurrent use.
//   - Context: methods should honor cancellation/deadlines.
//   - Errors: Authenticate returns (nil, error) for internal errors;
//     returns (AuthResult, nil) for auth failures (check result.Authenticated).
type Authenticator interface {
	// Name returns a unique identifier for this authenticator.
	Name() string

	// Supports returns true if this authenticator can handle the request.
	Supports(ctx context.Context, req *AuthRequest) bool

	// Authenticate validates credentials and returns a result.
	Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// AuthRequest contains the information needed for authentication.
type AuthRequest struct {
	// Headers contains the request headers (Authorization, X-API-Key, ...).
	Headers http.Header

	// Resource is the requested path.
	Resource string
}

// NewAuthRequest builds an AuthRequest from an HTTP request.
func NewAuthRequest(r *http.Request) *AuthRequest {
	return &AuthRequest{Headers: r.Header, Resource: r.URL.Path}
}

// GetHeader returns the first value for a header, or empty string.
func (r *AuthRequest) GetHeader(key string) string {
	if r.Headers == nil {
		return ""
	}
	return r.Headers.Get(key)
}

// AuthResult is the result of an authentication attempt.
type AuthResult struct {
	// Authenticated is true if authentication succeeded.
	Authenticated bool

	// Identity is the authenticated identity (only if Authenticated=true).
	Identity *Identity

	// Error is the authentication error (only if Authenticated=false).
	Error error

	// Method indicates which authenticator method was used.
	Method string
}

// AuthSuccess creates a successful authentication result.
func AuthSuccess(identity *Identity) *AuthResult {
	return &AuthResult{
		Authenticated: true,
		Identity:      identity,
		Method:        string(identity.Method),
	}
}

// AuthFailure creates a failed authentication result.
func AuthFailure(err error, method string) *AuthResult {
	return &AuthResult{
		Authenticated: false,
		Error:         err,
		Method:        method,
	}
}

// AuthenticatorFunc adapts a function to the Authenticator interface.
// It supports every request.
type AuthenticatorFunc struct {
	name string
	fn   func(ctx context.Context, req *AuthRequest) (*AuthResult, error)
}

// NewAuthenticatorFunc creates an AuthenticatorFunc.
func NewAuthenticatorFunc(name string, fn func(ctx context.Context, req *AuthRequest) (*AuthResult, error)) *AuthenticatorFunc {
	return &AuthenticatorFunc{name: name, fn: fn}
}

// Name returns the authenticator name.
func (f *AuthenticatorFunc) Name() string {
	return f.name
}

// Supports always returns true.
func (f *AuthenticatorFunc) Supports(context.Context, *AuthRequest) bool {
	return true
}

// Authenticate calls the wrapped function.
func (f *AuthenticatorFunc) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	return f.fn(ctx, req)
}
