package health

import (
	"strings"
	"sync"
)

// Registry holds the probes of a process.
//
// Probes are registered during startup, after which the registry is sealed
// and becomes read-only. Names are unique and registration order is kept.
type Registry struct {
	mu     sync.RWMutex
	probes []Probe
	tags   []Tags
	names  map[string]struct{}
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		names: make(map[string]struct{}),
	}
}

// Register adds a probe to the registry.
// Returns a *DuplicateNameError if the name is taken. The probe's tags are
// normalized and captured here; predicates match against that copy.
func (r *Registry) Register(p Probe) error {
	if p == nil {
		return ErrNilProbe
	}
	name := p.Name()
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if _, exists := r.names[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	r.names[name] = struct{}{}
	r.probes = append(r.probes, p)
	r.tags = append(r.tags, NewTags(p.Tags()...))
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(probes ...Probe) {
	for _, p := range probes {
		if err := r.Register(p); err != nil {
			panic(err)
		}
	}
}

// Seal ends the registration phase.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Select returns the probes whose tags satisfy pred, in registration order.
// A nil predicate selects every probe.
func (r *Registry) Select(pred Predicate) []Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()

	selected := make([]Probe, 0, len(r.probes))
	for i, p := range r.probes {
		if pred == nil || pred(r.tags[i]) {
			selected = append(selected, p)
		}
	}
	return selected
}

// Names returns the names of all registered probes in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.probes))
	for i, p := range r.probes {
		names[i] = p.Name()
	}
	return names
}

// Len returns the number of registered probes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.probes)
}
