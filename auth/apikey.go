package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"strings"
	"sync"
	"time"
)

// DefaultAPIKeyHeader carries API keys unless configured otherwise.
const DefaultAPIKeyHeader = "X-API-Key"

// APIKeyConfig configures the API key authenticator.
type APIKeyConfig struct {
	// HeaderName is the header containing the API key.
	// Default: "X-API-Key"
	HeaderName string
}

// APIKeyInfo describes a registered API key.
type APIKeyInfo struct {
	// ID is a unique identifier for this key. It never contains the key.
	ID string

	// KeyHash is the SHA-256 hex digest of the key.
	KeyHash string

	// Principal is the identity associated with this key.
	Principal string

	// Roles are the roles granted to this key.
	Roles []string

	// ExpiresAt is when this key expires (zero = never).
	ExpiresAt time.Time

	// Metadata is copied into the identity claims.
	Metadata map[string]any
}

// APIKeyStore provides storage for API keys.
type APIKeyStore interface {
	// Lookup retrieves an API key by its hash.
	// Returns nil if not found.
	Lookup(ctx context.Context, keyHash string) (*APIKeyInfo, error)
}

// APIKeyAuthenticator validates API keys against a store of hashes.
type APIKeyAuthenticator struct {
	config APIKeyConfig
	store  APIKeyStore
}

// NewAPIKeyAuthenticator creates a new API key authenticator.
func NewAPIKeyAuthenticator(config APIKeyConfig, store APIKeyStore) *APIKeyAuthenticator {
	if config.HeaderName == "" {
		config.HeaderName = DefaultAPIKeyHeader
	}
	return &APIKeyAuthenticator{config: config, store: store}
}

// Name returns "api_key".
func (a *APIKeyAuthenticator) Name() string {
	return string(AuthMethodAPIKey)
}

// Supports returns true if the request carries the API key header.
func (a *APIKeyAuthenticator) Supports(_ context.Context, req *AuthRequest) bool {
	return req.GetHeader(a.config.HeaderName) != ""
}

// Authenticate validates the API key.
func (a *APIKeyAuthenticator) Authenticate(ctx context.Context, req *AuthRequest) (*AuthResult, error) {
	apiKey := strings.TrimSpace(req.GetHeader(a.config.HeaderName))
	if apiKey == "" {
		return AuthFailure(ErrMissingCredentials, a.Name()), nil
	}

	info, err := a.store.Lookup(ctx, HashAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return AuthFailure(ErrInvalidCredentials, a.Name()), nil
	}
	if !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		return AuthFailure(ErrTokenExpired, a.Name()), nil
	}

	identity := &Identity{
		Principal: info.Principal,
		Roles:     info.Roles,
		Method:    AuthMethodAPIKey,
		ExpiresAt: info.ExpiresAt,
		Claims:    make(map[string]any, len(info.Metadata)+1),
	}
	maps.Copy(identity.Claims, info.Metadata)
	identity.Claims["key_id"] = info.ID

	return AuthSuccess(identity), nil
}

// HashAPIKey hashes an API key using SHA-256 for storage.
func HashAPIKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// MemoryAPIKeyStore is an in-memory API key store.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]*APIKeyInfo // keyed by hash
}

// NewMemoryAPIKeyStore creates a new in-memory API key store.
func NewMemoryAPIKeyStore() *MemoryAPIKeyStore {
	return &MemoryAPIKeyStore{keys: make(map[string]*APIKeyInfo)}
}

// Lookup retrieves an API key by its hash.
func (s *MemoryAPIKeyStore) Lookup(_ context.Context, keyHash string) (*APIKeyInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[keyHash], nil
}

// Add adds an API key to the store.
func (s *MemoryAPIKeyStore) Add(info *APIKeyInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[info.KeyHash] = info
}

// Remove removes an API key from the store.
func (s *MemoryAPIKeyStore) Remove(keyHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, keyHash)
}

// Len returns the number of stored keys.
func (s *MemoryAPIKeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}

var (
	_ Authenticator = (*APIKeyAuthenticator)(nil)
	_ APIKeyStore   = (*MemoryAPIKeyStore)(nil)
)
