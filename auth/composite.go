package auth

import "context"

// CompositeAuthenticator tries multiple authenticators in order and returns
// the first success.
type CompositeAuthenticator struct {
	// Authenticators is the ordered list of authenticators to try.
	Authenticators []Authenticator
}

// NewCompositeAuthenticator creates a composite authenticator.
func NewCompositeAuthenticator(auths ...Authenticator) *CompositeAuthenticator {
	return &CompositeAuthenticator{Authenticators: auths}
}

// Name returns "composite".
func (c *CompositeAuthenticator) Name() string {
	return "composite"
}

// Supports returns true if any authenticator supports the request.
func (c *CompositeAuthenticator) Supports(ctx context.Context, req *AuthRequest) bool {
	for _, a := range c.Authenticators {
		if a.Supports(ctx, req) {
			return true
		}
	}
	return false
}

// Authenticate tries each supporting authenticator in sequence. Without a
// success, the last failure is returned; with no supporting authenticator,
// the result fails with ErrMissingCredentials.
func (c *CompositeAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	var last *AuthResult
	for _, a := range c.Authenticators {
		if !a.Supports(ctx, req) {
			continue
		}

		result, err := a.Authenticate(ctx, req)
		if err != nil {
			return nil, err
		}
		if result.Authenticated {
			return result, nil
		}
		last = result
	}

	if last != nil {
		return last, nil
	}
	return AuthFailure(ErrMissingCredentials, c.Name()), nil
}

var _ Authenticator = (*CompositeAuthenticator)(nil)
