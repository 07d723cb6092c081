package auth

import (
	"fmt"
	"time"
)

// Config selects and configures the authentication methods that guard the
// status endpoint. Every configured method is accepted.
type Config struct {
	JWT     *JWTSettings    `yaml:"jwt"`
	APIKeys *APIKeySettings `yaml:"api_keys"`
}

// JWTSettings configures bearer-token authentication.
type JWTSettings struct {
	Secret     string   `yaml:"secret"`
	Issuer     string   `yaml:"issuer"`
	Audience   string   `yaml:"audience"`
	RolesClaim string   `yaml:"roles_claim"`
	Methods    []string `yaml:"methods"`
}

// APIKeySettings configures static API keys.
type APIKeySettings struct {
	Header string      `yaml:"header"`
	Keys   []KeyConfig `yaml:"keys"`
}

// KeyConfig is one API key. Exactly one of Key and Hash is set; Key is hashed
// at construction and never retained.
type KeyConfig struct {
	ID        string    `yaml:"id"`
	Key       string    `yaml:"key"`
	Hash      string    `yaml:"hash"`
	Principal string    `yaml:"principal"`
	Roles     []string  `yaml:"roles"`
	ExpiresAt time.Time `yaml:"expires_at"`
}

// Enabled reports whether any method is configured.
func (c Config) Enabled() bool {
	return c.JWT != nil || c.APIKeys != nil
}

// Validate checks that every configured method is complete.
func (c Config) Validate() error {
	if c.JWT != nil && c.JWT.Secret == "" {
		return fmt.Errorf("%w: jwt secret is required", ErrInvalidConfig)
	}
	if c.APIKeys != nil {
		if len(c.APIKeys.Keys) == 0 {
			return fmt.Errorf("%w: api_keys needs at least one key", ErrInvalidConfig)
		}
		for i, k := range c.APIKeys.Keys {
			if (k.Key == "") == (k.Hash == "") {
				return fmt.Errorf("%w: api key %d: exactly one of key and hash is required", ErrInvalidConfig, i)
			}
		}
	}
	return nil
}

// New builds the authenticator described by cfg. Multiple methods are
// combined with a CompositeAuthenticator.
func New(cfg Config) (Authenticator, error) {
	if !cfg.Enabled() {
		return nil, ErrNoAuthenticators
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var auths []Authenticator
	if s := cfg.JWT; s != nil {
		auths = append(auths, NewJWTAuthenticator(JWTConfig{
			Issuer:     s.Issuer,
			Audience:   s.Audience,
			RolesClaim: s.RolesClaim,
			Methods:    s.Methods,
		}, NewStaticKeyProvider([]byte(s.Secret))))
	}
	if s := cfg.APIKeys; s != nil {
		store := NewMemoryAPIKeyStore()
		for i, k := range s.Keys {
			hash := k.Hash
			if hash == "" {
				hash = HashAPIKey(k.Key)
			}
			id := k.ID
			if id == "" {
				id = fmt.Sprintf("key-%d", i)
			}
			store.Add(&APIKeyInfo{
				ID:        id,
				KeyHash:   hash,
				Principal: k.Principal,
				Roles:     k.Roles,
				ExpiresAt: k.ExpiresAt,
			})
		}
		auths = append(auths, NewAPIKeyAuthenticator(APIKeyConfig{HeaderName: s.Header}, store))
	}

	if len(auths) == 1 {
		return auths[0], nil
	}
	return NewCompositeAuthenticator(auths...), nil
}
