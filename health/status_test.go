package health

import (
	"testing"
)

func TestStatus_String(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusHealthy, "Healthy"},
		{StatusDegraded, "Degraded"},
		{StatusUnhealthy, "Unhealthy"},
		{Status(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("Status(%d).String() = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestStatus_Ordering(t *testing.T) {
	if !(StatusHealthy < StatusDegraded && StatusDegraded < StatusUnhealthy) {
		t.Fatal("statuses must be ordered Healthy < Degraded < Unhealthy")
	}
	if Status(-1).Valid() || Status(3).Valid() {
		t.Error("out-of-range statuses must be invalid")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range []Status{StatusHealthy, StatusDegraded, StatusUnhealthy} {
		got, ok := ParseStatus(s.String())
		if !ok || got != s {
			t.Errorf("ParseStatus(%q) = %v, %v", s.String(), got, ok)
		}
	}
	if _, ok := ParseStatus("sideways"); ok {
		t.Error("expected unknown status to fail")
	}
}

func TestAggregate(t *testing.T) {
	entry := func(s Status) Entry { return Entry{Outcome: Outcome{Status: s}} }

	tests := []struct {
		name    string
		entries []Entry
		want    Status
	}{
		{"empty is healthy", nil, StatusHealthy},
		{"all healthy", []Entry{entry(StatusHealthy), entry(StatusHealthy)}, StatusHealthy},
		{"one degraded", []Entry{entry(StatusHealthy), entry(StatusDegraded)}, StatusDegraded},
		{"unhealthy wins", []Entry{entry(StatusDegraded), entry(StatusUnhealthy), entry(StatusHealthy)}, StatusUnhealthy},
		{"order does not matter", []Entry{entry(StatusUnhealthy), entry(StatusDegraded)}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Aggregate(tt.entries); got != tt.want {
				t.Errorf("Aggregate() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Aggregate must equal the max over every multiset of statuses.
func TestAggregate_Exhaustive(t *testing.T) {
	all := []Status{StatusHealthy, StatusDegraded, StatusUnhealthy}
	for _, a := range all {
		for _, b := range all {
			for _, c := range all {
				entries := []Entry{{Outcome: Outcome{Status: a}}, {Outcome: Outcome{Status: b}}, {Outcome: Outcome{Status: c}}}
				want := max(a, b, c)
				if got := Aggregate(entries); got != want {
					t.Errorf("Aggregate(%v,%v,%v) = %v, want %v", a, b, c, got, want)
				}
				if Worst(Worst(a, b), c) != Worst(a, Worst(b, c)) {
					t.Errorf("Worst not associative for %v,%v,%v", a, b, c)
				}
				if Worst(a, b) != Worst(b, a) {
					t.Errorf("Worst not commutative for %v,%v", a, b)
				}
			}
		}
	}
}

func TestReport_Entry(t *testing.T) {
	r := Report{Entries: []Entry{{Name: "a"}, {Name: "b"}}}
	if e, ok := r.Entry("b"); !ok || e.Name != "b" {
		t.Errorf("Entry(b) = %+v, %v", e, ok)
	}
	if _, ok := r.Entry("c"); ok {
		t.Error("Entry(c) should not be found")
	}
}

func TestOutcome_WithData(t *testing.T) {
	base := Healthy("ok")
	withData := base.WithData(map[string]any{"k": 1})
	if base.Data != nil {
		t.Error("WithData mutated the receiver")
	}
	if withData.Data["k"] != 1 || withData.Description != "ok" {
		t.Errorf("unexpected outcome %+v", withData)
	}
}
