package health

import (
	"time"
)

// Status represents the health status of a probe or of a whole report.
//
// Statuses are totally ordered from best to worst, so the worse of two
// statuses is always the greater value.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusDegraded indicates the component is running but needs attention.
	StatusDegraded
	// StatusUnhealthy indicates the component is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "Healthy"
	case StatusDegraded:
		return "Degraded"
	case StatusUnhealthy:
		return "Unhealthy"
	default:
		return "Unknown"
	}
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= StatusHealthy && s <= StatusUnhealthy
}

// ParseStatus parses the string form produced by Status.String.
func ParseStatus(s string) (Status, bool) {
	switch s {
	case "Healthy", "healthy":
		return StatusHealthy, true
	case "Degraded", "degraded":
		return StatusDegraded, true
	case "Unhealthy", "unhealthy":
		return StatusUnhealthy, true
	default:
		return StatusUnhealthy, false
	}
}

// Outcome is the result of running a single probe.
type Outcome struct {
	// Status is the health status.
	Status Status

	// Description provides additional context about the status.
	Description string

	// Err is the cause when the probe failed.
	Err error

	// Data contains arbitrary metadata reported by the probe.
	Data map[string]any
}

// Healthy creates a healthy outcome.
func Healthy(description string) Outcome {
	return Outcome{
		Status:      StatusHealthy,
		Description: description,
	}
}

// Degraded creates a degraded outcome.
func Degraded(description string, err error) Outcome {
	return Outcome{
		Status:      StatusDegraded,
		Description: description,
		Err:         err,
	}
}

// Unhealthy creates an unhealthy outcome.
func Unhealthy(description string, err error) Outcome {
	return Outcome{
		Status:      StatusUnhealthy,
		Description: description,
		Err:         err,
	}
}

// WithData attaches data to an outcome.
func (o Outcome) WithData(data map[string]any) Outcome {
	o.Data = data
	return o
}

// Entry is one probe's contribution to a Report.
type Entry struct {
	Name     string
	Tags     Tags
	Outcome  Outcome
	Duration time.Duration
}

// Report is the aggregated result of running a set of probes once.
type Report struct {
	// Status is the worst status among Entries, or Healthy if there are none.
	Status Status

	// Duration is the wall-clock time the run took.
	Duration time.Duration

	// Entries are ordered like the probes passed to the run.
	Entries []Entry

	// Timestamp is when the run started.
	Timestamp time.Time
}

// Entry returns the entry for the named probe.
func (r Report) Entry(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

// Worst returns the worse of two statuses.
func Worst(a, b Status) Status {
	if b > a {
		return b
	}
	return a
}

// Aggregate reduces entries to a single status, worst wins.
// Returns Healthy for an empty set.
func Aggregate(entries []Entry) Status {
	overall := StatusHealthy
	for _, e := range entries {
		overall = Worst(overall, e.Outcome.Status)
		if overall == StatusUnhealthy {
			break
		}
	}
	return overall
}
