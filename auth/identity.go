package auth

import (
	"slices"
	"time"
)

// AuthMethod indicates how authentication was performed.
type AuthMethod string

const (
	AuthMethodNone   AuthMethod = "none"
	AuthMethodJWT    AuthMethod = "jwt"
	AuthMethodAPIKey AuthMethod = "api_key"
)

// Identity represents an authenticated caller of the status endpoint.
type Identity struct {
	// Principal identifies the caller (token subject or key owner).
	Principal string

	// Roles are the roles carried by the credential.
	Roles []string

	// Method indicates how authentication was performed.
	Method AuthMethod

	// Claims contains the raw token claims, or key metadata.
	Claims map[string]any

	// ExpiresAt is when the credential expires (zero = never).
	ExpiresAt time.Time

	// IssuedAt is when the credential was issued, if known.
	IssuedAt time.Time
}

// HasRole reports whether the identity carries role.
func (id *Identity) HasRole(role string) bool {
	return slices.Contains(id.Roles, role)
}

// IsExpired reports whether the credential has expired.
func (id *Identity) IsExpired() bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return time.Now().After(id.ExpiresAt)
}
