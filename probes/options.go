package probes

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Options are shared by every dependency probe.
type Options struct {
	// Tags classify the probe, e.g. "ready".
	Tags []string

	// Timeout bounds the round trip. Zero leaves it to the run deadline.
	Timeout time.Duration

	// DegradedAfter turns a successful but slow round trip into Degraded.
	// Zero disables latency degradation.
	DegradedAfter time.Duration
}

// base carries identity and the shared round-trip bookkeeping.
type base struct {
	name string
	tags health.Tags
	opts Options
}

func newBase(name string, opts Options) base {
	return base{name: name, tags: health.NewTags(opts.Tags...), opts: opts}
}

// Name returns the name of this probe.
func (b base) Name() string { return b.name }

// Tags returns the tags of this probe.
func (b base) Tags() health.Tags { return b.tags }

// roundTrip runs op under the probe timeout and converts its result into an
// outcome. target names the dependency in descriptions.
func (b base) roundTrip(ctx context.Context, target string, op func(context.Context) error) health.Outcome {
	if b.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := op(ctx)
	latency := time.Since(start)
	data := map[string]any{"latency_ms": float64(latency.Microseconds()) / 1000}

	switch {
	case err != nil:
		return health.Unhealthy(fmt.Sprintf("%s unreachable", target), err).WithData(data)
	case b.opts.DegradedAfter > 0 && latency > b.opts.DegradedAfter:
		return health.Degraded(fmt.Sprintf("%s slow: %s", target, latency.Round(time.Millisecond)), nil).WithData(data)
	default:
		return health.Healthy(fmt.Sprintf("%s reachable", target)).WithData(data)
	}
}
