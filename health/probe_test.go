package health

import (
	"context"
	"errors"
	"slices"
	"testing"
)

func TestNewTags(t *testing.T) {
	got := NewTags("ready", " db ", "", "ready", "api")
	want := Tags{"api", "db", "ready"}
	if !slices.Equal(got, want) {
		t.Errorf("NewTags() = %v, want %v", got, want)
	}
	if !got.Has("db") || got.Has("cache") {
		t.Error("Has() returned wrong membership")
	}
}

func TestPredicates(t *testing.T) {
	ready := NewTags("ready", "db")
	plain := NewTags()

	tests := []struct {
		name  string
		pred  Predicate
		tags  Tags
		match bool
	}{
		{"all matches untagged", All(), plain, true},
		{"none matches nothing", None(), ready, false},
		{"has tag", HasTag("ready"), ready, true},
		{"missing tag", HasTag("ready"), plain, false},
		{"any tag", AnyTag("cache", "db"), ready, true},
		{"any tag miss", AnyTag("cache"), ready, false},
		{"any tag empty selects all", AnyTag(), plain, true},
		{"not", Not(HasTag("ready")), plain, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pred(tt.tags); got != tt.match {
				t.Errorf("predicate(%v) = %v, want %v", tt.tags, got, tt.match)
			}
		})
	}
}

func TestNewErrorProbe(t *testing.T) {
	ctx := context.Background()

	ok := NewErrorProbe("ok", nil, func(context.Context) error { return nil })
	if out := ok.Check(ctx); out.Status != StatusHealthy {
		t.Errorf("nil error should be Healthy, got %v", out.Status)
	}

	cause := errors.New("dial tcp: refused")
	failing := NewErrorProbe("bad", []string{"ready"}, func(context.Context) error { return cause })
	out := failing.Check(ctx)
	if out.Status != StatusUnhealthy || !errors.Is(out.Err, cause) || out.Description != cause.Error() {
		t.Errorf("unexpected outcome %+v", out)
	}
	if !failing.Tags().Has("ready") {
		t.Error("tags not kept")
	}
}
