package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthops/secret"
)

// DefaultEnvFiles are loaded by Load when present.
var DefaultEnvFiles = []string{".env", ".env.local"}

// LoadOptions tune Load.
type LoadOptions struct {
	// EnvFiles are loaded into the process environment before expansion.
	// Missing files are skipped. Variables already set are not overridden.
	// Default: DefaultEnvFiles
	EnvFiles []string

	// Registry creates the secret providers named in the secrets section.
	// Default: secret.DefaultRegistry
	Registry *secret.Registry
}

// Load reads, resolves, defaults and validates the configuration at path.
func Load(ctx context.Context, path string, opts ...LoadOptions) (Config, error) {
	var o LoadOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.EnvFiles == nil {
		o.EnvFiles = DefaultEnvFiles
	}

	if _, err := LoadEnvFiles(o.EnvFiles...); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(path) // #nosec G304 -- operator-supplied config path.
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(ctx, data, o.Registry)
}

// Parse decodes a YAML document, resolving ${VAR} and secretref: values in
// every scalar, then applies defaults and validates.
func Parse(ctx context.Context, data []byte, registry *secret.Registry) (Config, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	var cfg Config
	if len(root.Content) > 0 {
		resolver, err := newResolver(&root, registry)
		if err != nil {
			return Config{}, err
		}
		defer func() { _ = resolver.Close() }()

		if err := resolveNode(ctx, resolver, &root); err != nil {
			return Config{}, err
		}

		// Re-encode so unknown keys are rejected by the strict decoder.
		resolved, err := yaml.Marshal(&root)
		if err != nil {
			return Config{}, fmt.Errorf("config: encode: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(resolved))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode: %w", err)
		}
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnvFiles loads the existing files among paths into the environment
// and returns the ones loaded.
func LoadEnvFiles(paths ...string) ([]string, error) {
	loaded := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("config: load %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// newResolver builds a resolver from the secrets section of root, which is
// read before any value is resolved.
func newResolver(root *yaml.Node, registry *secret.Registry) (*secret.Resolver, error) {
	if registry == nil {
		registry = secret.DefaultRegistry
	}

	var head struct {
		Secrets SecretsConfig `yaml:"secrets"`
	}
	if err := root.Decode(&head); err != nil {
		return nil, fmt.Errorf("config: decode secrets: %w", err)
	}

	names := make([]string, 0, len(head.Secrets.Providers)+1)
	for name := range head.Secrets.Providers {
		names = append(names, name)
	}
	if _, ok := head.Secrets.Providers["env"]; !ok {
		names = append(names, "env")
	}
	sort.Strings(names)

	resolver := secret.NewResolver(head.Secrets.Strict)
	for _, name := range names {
		p, err := registry.Create(name, head.Secrets.Providers[name])
		if err != nil {
			_ = resolver.Close()
			return nil, fieldErr("secrets.providers."+name, err)
		}
		resolver.Register(p)
	}
	return resolver, nil
}

// resolveNode expands every string scalar under n in place. Mapping keys
// are left alone.
func resolveNode(ctx context.Context, r *secret.Resolver, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := resolveNode(ctx, r, c); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			if err := resolveNode(ctx, r, n.Content[i]); err != nil {
				return fmt.Errorf("%s: %w", n.Content[i-1].Value, err)
			}
		}
	case yaml.ScalarNode:
		if n.ShortTag() != "!!str" {
			return nil
		}
		v, err := r.ResolveValue(ctx, n.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		if v != n.Value {
			n.Value = v
			// A plain ${PORT} may now be a number or a duration.
			if n.Style == 0 {
				n.Tag = ""
			}
		}
	}
	return nil
}
