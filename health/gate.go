package health

import (
	"context"
	"sync/atomic"
	"time"
)

// TagReady marks probes consulted by the readiness endpoint.
const TagReady = "ready"

// Gate is a startup probe that stays Unhealthy until its warm-up completes.
//
// Completion is a one-way latch: once Healthy, a Gate never reports
// Unhealthy again.
type Gate struct {
	name      string
	tags      Tags
	completed atomic.Bool
}

// NewGate creates a gate. Without tags it is tagged "ready".
func NewGate(name string, tags ...string) *Gate {
	if len(tags) == 0 {
		tags = []string{TagReady}
	}
	return &Gate{name: name, tags: NewTags(tags...)}
}

// Name returns the name of this gate.
func (g *Gate) Name() string {
	return g.name
}

// Tags returns the tags of this gate.
func (g *Gate) Tags() Tags {
	return g.tags
}

// Complete opens the gate. Calling it again has no effect.
func (g *Gate) Complete() {
	g.completed.Store(true)
}

// Completed reports whether the gate is open.
func (g *Gate) Completed() bool {
	return g.completed.Load()
}

// Check returns Healthy once the gate is open.
func (g *Gate) Check(ctx context.Context) Outcome {
	if g.completed.Load() {
		return Healthy("startup complete")
	}
	return Unhealthy("not ready", nil)
}

// CompleteAfter starts the warm-up task: the gate opens after d unless ctx
// is canceled first. The returned channel is closed when the task exits.
func (g *Gate) CompleteAfter(ctx context.Context, d time.Duration) <-chan struct{} {
	return g.CompleteWhen(ctx, func(ctx context.Context) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

// CompleteWhen runs task in the background and opens the gate if it
// returns nil. The returned channel is closed when task returns.
func (g *Gate) CompleteWhen(ctx context.Context, task func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := task(ctx); err != nil {
			return
		}
		if ctx.Err() != nil {
			return
		}
		g.Complete()
	}()
	return done
}

var _ Probe = (*Gate)(nil)
