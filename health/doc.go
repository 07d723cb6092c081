// Package health provides the health probe orchestration engine.
//
// Probes are registered once at startup in a Registry, classified by tags.
// An Executor runs a tag-selected subset concurrently under a single run
// timeout and produces a Report whose status is the worst of its entries.
//
// # Core Concepts
//
// A Probe is any component that can report an Outcome. The Status type
// represents the health state: Healthy, Degraded, or Unhealthy, ordered so
// that the worse status always wins aggregation.
//
// A probe that panics or outlives the run timeout is reported Unhealthy; it
// never aborts the run or affects its siblings.
//
// # Basic Usage
//
//	reg := health.NewRegistry()
//	reg.MustRegister(
//	    health.NewMemoryProbe(health.MemoryProbeConfig{}),
//	    health.NewGate("startup"),
//	)
//	reg.Seal()
//
//	exec := health.NewExecutor(health.ExecutorConfig{Timeout: 5 * time.Second})
//	report := exec.RunSelected(ctx, reg, health.All(), 0)
//	if report.Status == health.StatusUnhealthy {
//	    log.Printf("service unhealthy")
//	}
//
// # HTTP Endpoints
//
// The package provides handlers for the three usual consumers:
//
//	// Liveness: never runs a probe
//	mux.Handle("/health/live", health.LivenessHandler())
//
//	// Readiness: probes tagged "ready", bare status code
//	mux.Handle("/health/ready", health.ReadinessHandler(reg, exec, nil, 0))
//
//	// Full status document for operators
//	mux.Handle("/status", health.NewStatusHandler(reg, exec, health.StatusConfig{}))
//
// Healthy and Degraded answer 200, Unhealthy answers 503.
package health
