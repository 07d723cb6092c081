package secret

import (
	"errors"
	"slices"
	"testing"
)

func TestRegistry_RegisterAndCreate(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register("stub", func(map[string]any) (Provider, error) {
		return &stubProvider{name: "stub"}, nil
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	p, err := reg.Create(" stub ", nil)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "stub" {
		t.Errorf("Name() = %q", p.Name())
	}
}

func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry()
	factory := func(map[string]any) (Provider, error) { return &stubProvider{name: "stub"}, nil }
	_ = reg.Register("stub", factory)

	if err := reg.Register("stub", factory); !errors.Is(err, ErrDuplicateFactory) {
		t.Errorf("duplicate error = %v", err)
	}
	if err := reg.Register("", factory); err == nil {
		t.Error("empty name accepted")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Error("nil factory accepted")
	}
	if _, err := reg.Create("missing", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("Create() error = %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	if got := DefaultRegistry.List(); !slices.Equal(got, []string{"env", "file"}) {
		t.Fatalf("List() = %v", got)
	}

	p, err := DefaultRegistry.Create("file", map[string]any{"dir": "/etc/healthops"})
	if err != nil {
		t.Fatal(err)
	}
	if fp, ok := p.(*FileProvider); !ok || fp.dir != "/etc/healthops" {
		t.Errorf("Create(file) = %#v", p)
	}
}
