package health

import (
	"context"
	"slices"
	"strings"
)

// Probe is the interface for health probes.
//
// Contract:
//   - Concurrency: Check may be called from several runs at once.
//   - Context: Check should honor the context deadline; the executor
//     abandons probes that outlive it.
//   - Identity: Name and Tags must not change after registration.
type Probe interface {
	// Name returns the unique name of this probe.
	Name() string

	// Tags returns the classification tags of this probe.
	Tags() Tags

	// Check performs the probe and returns its outcome.
	Check(ctx context.Context) Outcome
}

// Tags is a set of classification tags, kept sorted and de-duplicated.
type Tags []string

// NewTags normalizes tags: trims whitespace, drops blanks and duplicates.
func NewTags(tags ...string) Tags {
	out := make(Tags, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Has reports whether tag is in the set. The set need not be sorted.
func (t Tags) Has(tag string) bool {
	return slices.Contains(t, tag)
}

// Predicate selects probes by their tags.
type Predicate func(tags Tags) bool

// All selects every probe.
func All() Predicate {
	return func(Tags) bool { return true }
}

// None selects no probe.
func None() Predicate {
	return func(Tags) bool { return false }
}

// HasTag selects probes carrying tag.
func HasTag(tag string) Predicate {
	return func(tags Tags) bool { return tags.Has(tag) }
}

// AnyTag selects probes carrying at least one of tags.
// With no tags it selects every probe.
func AnyTag(tags ...string) Predicate {
	if len(tags) == 0 {
		return All()
	}
	return func(have Tags) bool {
		for _, t := range tags {
			if have.Has(t) {
				return true
			}
		}
		return false
	}
}

// Not inverts a predicate.
func Not(p Predicate) Predicate {
	return func(tags Tags) bool { return !p(tags) }
}

// ProbeFunc is an adapter to allow ordinary functions to be used as Probes.
type ProbeFunc struct {
	name string
	tags Tags
	fn   func(context.Context) Outcome
}

// NewProbeFunc creates a new ProbeFunc.
func NewProbeFunc(name string, tags []string, fn func(context.Context) Outcome) *ProbeFunc {
	return &ProbeFunc{name: name, tags: NewTags(tags...), fn: fn}
}

// NewErrorProbe creates a probe from a function that only reports failure.
// A nil error is Healthy, anything else is Unhealthy with the error as cause.
func NewErrorProbe(name string, tags []string, fn func(context.Context) error) *ProbeFunc {
	return NewProbeFunc(name, tags, func(ctx context.Context) Outcome {
		if err := fn(ctx); err != nil {
			return Unhealthy(err.Error(), err)
		}
		return Healthy("")
	})
}

// Name returns the name of this probe.
func (f *ProbeFunc) Name() string {
	return f.name
}

// Tags returns the tags of this probe.
func (f *ProbeFunc) Tags() Tags {
	return f.tags
}

// Check performs the probe.
func (f *ProbeFunc) Check(ctx context.Context) Outcome {
	return f.fn(ctx)
}

var _ Probe = (*ProbeFunc)(nil)
