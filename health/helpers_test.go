package health

import (
	"context"
	"time"
)

func staticProbe(name string, outcome Outcome, tags ...string) *ProbeFunc {
	return NewProbeFunc(name, tags, func(context.Context) Outcome { return outcome })
}

// blockingProbe waits for ctx.
func blockingProbe(name string) *ProbeFunc {
	return NewProbeFunc(name, nil, func(ctx context.Context) Outcome {
		<-ctx.Done()
		return Unhealthy("context done", ctx.Err())
	})
}

// sleepingProbe ignores its context.
func sleepingProbe(name string, d time.Duration) *ProbeFunc {
	return NewProbeFunc(name, nil, func(context.Context) Outcome {
		time.Sleep(d)
		return Healthy("slept")
	})
}
