package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct {
	lookup func(string) (string, bool)
}

// NewEnvProvider returns a provider backed by the process environment.
func NewEnvProvider() *EnvProvider {
	return &EnvProvider{lookup: os.LookupEnv}
}

// Name returns "env".
func (p *EnvProvider) Name() string { return "env" }

// Resolve returns the value of the variable named ref.
func (p *EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	v, ok := p.lookup(ref)
	if !ok {
		return "", &MissingEnvError{Names: []string{ref}}
	}
	return v, nil
}

// Close is a no-op.
func (p *EnvProvider) Close() error { return nil }

// DefaultSecretsDir is where FileProvider looks for relative references.
const DefaultSecretsDir = "/run/secrets"

// FileProvider reads secrets from files, one secret per file. Trailing
// newlines are trimmed.
type FileProvider struct {
	dir string
}

// NewFileProvider returns a provider rooted at dir. Empty means
// DefaultSecretsDir.
func NewFileProvider(dir string) *FileProvider {
	if dir == "" {
		dir = DefaultSecretsDir
	}
	return &FileProvider{dir: dir}
}

// Name returns "file".
func (p *FileProvider) Name() string { return "file" }

// Resolve reads the file named ref. Relative references are joined to the
// provider directory and may not escape it.
func (p *FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(ref) {
		if !filepath.IsLocal(ref) {
			return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidRef, ref, p.dir)
		}
		path = filepath.Join(p.dir, ref)
	}

	b, err := os.ReadFile(path) // #nosec G304 -- operator-configured secret path.
	if err != nil {
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// Close is a no-op.
func (p *FileProvider) Close() error { return nil }

var (
	_ Provider = (*EnvProvider)(nil)
	_ Provider = (*FileProvider)(nil)
)
