package secret

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// RefPrefix marks a secret reference.
const RefPrefix = "secretref:"

// Resolver resolves secret references using registered providers.
//
// Every value is first expanded with ExpandEnvStrict; references are then
// replaced by the provider's answer.
type Resolver struct {
	providers map[string]Provider
	strict    bool
}

// NewResolver creates a resolver. With strict set, an empty secret is an
// error.
func NewResolver(strict bool, providers ...Provider) *Resolver {
	r := &Resolver{
		providers: make(map[string]Provider),
		strict:    strict,
	}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register registers a provider with the resolver, replacing any provider of
// the same name.
func (r *Resolver) Register(provider Provider) {
	if provider == nil {
		return
	}
	r.providers[provider.Name()] = provider
}

// ResolveValue resolves environment variables and secret refs in value.
// A nil Resolver only expands the environment.
func (r *Resolver) ResolveValue(ctx context.Context, value string) (string, error) {
	expanded, err := ExpandEnvStrict(value)
	if err != nil {
		return "", err
	}
	if r == nil || !strings.Contains(expanded, RefPrefix) {
		return expanded, nil
	}

	if providerName, ref, ok := ParseSecretRef(expanded); ok {
		return r.resolveSingle(ctx, providerName, ref)
	}
	return r.resolveInline(ctx, expanded)
}

// ResolveMap resolves each value in input.
func (r *Resolver) ResolveMap(ctx context.Context, input map[string]string) (map[string]string, error) {
	if input == nil {
		return nil, nil
	}
	out := make(map[string]string, len(input))
	for k, v := range input {
		resolved, err := r.ResolveValue(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("resolve %q: %w", k, err)
		}
		out[k] = resolved
	}
	return out, nil
}

// Close closes every registered provider.
func (r *Resolver) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	for name, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

// ParseSecretRef parses a full secret reference of the form:
//
//	secretref:<provider>:<ref>
func ParseSecretRef(value string) (provider string, ref string, ok bool) {
	rest, found := strings.CutPrefix(value, RefPrefix)
	if !found {
		return "", "", false
	}
	provider, ref, found = strings.Cut(rest, ":")
	if !found || provider == "" || ref == "" {
		return "", "", false
	}
	return provider, ref, true
}

func (r *Resolver) resolveSingle(ctx context.Context, providerName string, ref string) (string, error) {
	provider, ok := r.providers[providerName]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownProvider, providerName)
	}
	resolved, err := provider.Resolve(ctx, ref)
	if err != nil {
		return "", fmt.Errorf("secret %s:%s: %w", providerName, ref, err)
	}
	if r.strict && resolved == "" {
		return "", fmt.Errorf("%w: %s:%s", ErrEmptySecret, providerName, ref)
	}
	return resolved, nil
}

// Inline refs stop at characters that commonly delimit them in URLs and
// header values.
var inlineSecretRefPattern = regexp.MustCompile(`secretref:([A-Za-z0-9_-]+):([A-Za-z0-9_./-]+)`)

func (r *Resolver) resolveInline(ctx context.Context, value string) (string, error) {
	var firstErr error
	out := inlineSecretRefPattern.ReplaceAllStringFunc(value, func(m string) string {
		if firstErr != nil {
			return m
		}
		sub := inlineSecretRefPattern.FindStringSubmatch(m)
		resolved, err := r.resolveSingle(ctx, sub[1], sub[2])
		if err != nil {
			firstErr = err
			return m
		}
		return resolved
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}
