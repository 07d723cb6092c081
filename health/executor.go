package health

import (
	"context"
	"errors"
	"time"

	"github.com/jonwraymond/healthops/resilience"
)

// DefaultTimeout is the run budget used when none is given.
const DefaultTimeout = 30 * time.Second

// ExecutorConfig configures the probe executor.
type ExecutorConfig struct {
	// Timeout is the run budget used when Run is given a non-positive timeout.
	// Default: 30 seconds
	Timeout time.Duration

	// MaxConcurrent bounds how many probes of one run execute at once.
	// Default: 0 (one goroutine per probe)
	MaxConcurrent int
}

// Executor runs probes concurrently and assembles a Report.
//
// An Executor keeps no state between runs, so Run may be called from
// several goroutines at once.
type Executor struct {
	config ExecutorConfig
}

// NewExecutor creates a new executor.
func NewExecutor(config ...ExecutorConfig) *Executor {
	cfg := ExecutorConfig{Timeout: DefaultTimeout}
	if len(config) > 0 {
		cfg = config[0]
		if cfg.Timeout <= 0 {
			cfg.Timeout = DefaultTimeout
		}
		if cfg.MaxConcurrent < 0 {
			cfg.MaxConcurrent = 0
		}
	}
	return &Executor{config: cfg}
}

// Timeout returns the default run budget.
func (e *Executor) Timeout() time.Duration {
	return e.config.Timeout
}

// RunSelected runs the probes of reg matching pred.
func (e *Executor) RunSelected(ctx context.Context, reg *Registry, pred Predicate, timeout time.Duration) Report {
	return e.Run(ctx, reg.Select(pred), timeout)
}

type completion struct {
	index int
	entry Entry
}

// Run executes probes concurrently and waits for all of them or for the
// timeout, whichever comes first. It never blocks past the timeout: probes
// still running at the deadline are reported Unhealthy and abandoned.
// Entries are ordered like probes.
func (e *Executor) Run(ctx context.Context, probes []Probe, timeout time.Duration) Report {
	start := time.Now()
	if timeout <= 0 {
		timeout = e.config.Timeout
	}

	report := Report{
		Timestamp: start,
		Entries:   make([]Entry, len(probes)),
	}
	if len(probes) == 0 {
		report.Duration = time.Since(start)
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Each run gets its own bulkhead so concurrent runs do not starve each other.
	var bulkhead *resilience.Bulkhead
	if e.config.MaxConcurrent > 0 && e.config.MaxConcurrent < len(probes) {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			MaxConcurrent: e.config.MaxConcurrent,
		})
	}

	done := make([]bool, len(probes))
	results := make(chan completion, len(probes))
	for i, p := range probes {
		entry := Entry{Name: p.Name(), Tags: p.Tags()}
		report.Entries[i] = entry
		go runProbe(ctx, i, p, entry, bulkhead, results)
	}

	remaining := len(probes)
wait:
	for remaining > 0 {
		select {
		case c := <-results:
			report.Entries[c.index] = c.entry
			done[c.index] = true
			remaining--
		case <-ctx.Done():
			break wait
		}
	}

	if remaining > 0 {
		elapsed := time.Since(start)
		abandoned := abandonedOutcome(ctx.Err())
		for i := range report.Entries {
			if !done[i] {
				report.Entries[i].Outcome = abandoned
				report.Entries[i].Duration = elapsed
			}
		}
	}

	report.Status = Aggregate(report.Entries)
	report.Duration = time.Since(start)
	return report
}

func abandonedOutcome(err error) Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return Unhealthy("timed out", ErrProbeTimeout)
	}
	return Unhealthy("canceled", err)
}

// runProbe isolates a single probe and always reports a completion: a panic
// or a runtime.Goexit inside Check becomes an Unhealthy outcome.
func runProbe(ctx context.Context, index int, p Probe, entry Entry, bulkhead *resilience.Bulkhead, results chan<- completion) {
	start := time.Now()
	result := entry
	normalReturn := false

	defer func() {
		if v := recover(); v != nil {
			result.Outcome = Unhealthy("probe panicked", &ProbeExecutionError{Probe: entry.Name, Value: v})
		} else if !normalReturn {
			result.Outcome = Unhealthy("probe exited", &ProbeExecutionError{Probe: entry.Name})
		}
		result.Duration = time.Since(start)
		results <- completion{index: index, entry: result}
	}()

	result.Outcome = checkProbe(ctx, p, bulkhead)
	normalReturn = true
}

func checkProbe(ctx context.Context, p Probe, bulkhead *resilience.Bulkhead) Outcome {
	if bulkhead != nil {
		if err := bulkhead.Acquire(ctx); err != nil {
			return abandonedOutcome(err)
		}
		defer bulkhead.Release()
	}

	outcome := p.Check(ctx)
	if !outcome.Status.Valid() {
		outcome.Status = StatusUnhealthy
	}
	return outcome
}
