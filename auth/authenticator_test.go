package auth

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewAuthRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/status?x=1", nil)
	r.Header.Set("x-api-key", "k")

	req := NewAuthRequest(r)
	if req.Resource != "/status" {
		t.Errorf("Resource = %q, want /status", req.Resource)
	}
	if got := req.GetHeader("X-API-Key"); got != "k" {
		t.Errorf("GetHeader() = %q, want k", got)
	}
	if got := (&AuthRequest{}).GetHeader("X-API-Key"); got != "" {
		t.Errorf("GetHeader() on empty request = %q", got)
	}
}

func TestAuthResults(t *testing.T) {
	ok := AuthSuccess(&Identity{Principal: "p", Method: AuthMethodJWT})
	if !ok.Authenticated || ok.Method != "jwt" || ok.Error != nil {
		t.Errorf("AuthSuccess() = %+v", ok)
	}

	bad := AuthFailure(ErrInvalidCredentials, "api_key")
	if bad.Authenticated || bad.Identity != nil || bad.Error != ErrInvalidCredentials {
		t.Errorf("AuthFailure() = %+v", bad)
	}
}

func TestAuthenticatorFunc(t *testing.T) {
	f := NewAuthenticatorFunc("static", func(context.Context, *AuthRequest) (*AuthResult, error) {
		return AuthSuccess(&Identity{Principal: "fixed"}), nil
	})

	if f.Name() != "static" {
		t.Errorf("Name() = %q", f.Name())
	}
	if !f.Supports(context.Background(), &AuthRequest{}) {
		t.Error("Supports() = false")
	}
	result, err := f.Authenticate(context.Background(), &AuthRequest{})
	if err != nil || result.Identity.Principal != "fixed" {
		t.Errorf("Authenticate() = %+v, %v", result, err)
	}
}

func TestIdentity(t *testing.T) {
	id := &Identity{Roles: []string{"viewer"}}
	if !id.HasRole("viewer") || id.HasRole("admin") {
		t.Errorf("HasRole() wrong for %v", id.Roles)
	}
	if id.IsExpired() {
		t.Error("zero ExpiresAt reported expired")
	}

	id.ExpiresAt = time.Now().Add(-time.Second)
	if !id.IsExpired() {
		t.Error("past ExpiresAt not expired")
	}
	id.ExpiresAt = time.Now().Add(time.Hour)
	if id.IsExpired() {
		t.Error("future ExpiresAt expired")
	}
}

func TestIdentityContext(t *testing.T) {
	ctx := context.Background()
	if IdentityFromContext(ctx) != nil || PrincipalFromContext(ctx) != "" {
		t.Fatal("empty context carries an identity")
	}

	id := &Identity{Principal: "dashboard"}
	ctx = WithIdentity(ctx, id)
	if IdentityFromContext(ctx) != id {
		t.Error("IdentityFromContext() did not return the stored identity")
	}
	if PrincipalFromContext(ctx) != "dashboard" {
		t.Errorf("PrincipalFromContext() = %q", PrincipalFromContext(ctx))
	}
}
