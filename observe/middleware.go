package observe

import (
	"context"
	"fmt"
	"time"

	"github.com/jonwraymond/healthops/health"
)

// Middleware wraps probes with observability (tracing, metrics, logging).
//
// Contract:
//   - Concurrency: probes returned by Wrap are safe for concurrent use if
//     the wrapped probe is.
//   - Context: the probe runs under the span context.
//   - Errors: outcomes pass through unchanged. A panicking probe is recorded
//     as Unhealthy and the panic is re-raised for the executor to recover.
type Middleware struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewMiddleware creates a new Middleware with the given observability components.
// Nil components are replaced with no-ops.
func NewMiddleware(tracer Tracer, metrics Metrics, logger Logger) *Middleware {
	if tracer == nil {
		tracer = newNoopTracer()
	}
	if metrics == nil {
		metrics = NopMetrics()
	}
	if logger == nil {
		logger = NopLogger()
	}
	return &Middleware{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// MiddlewareFromObserver creates a Middleware from an Observer.
func MiddlewareFromObserver(obs Observer) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewMiddleware(NewTracer(obs.Tracer()), metrics, obs.Logger()), nil
}

// Metrics returns the metrics recorder used by the middleware.
func (m *Middleware) Metrics() Metrics {
	return m.metrics
}

// Wrap returns a probe with the same name and tags that records every run.
func (m *Middleware) Wrap(p health.Probe) health.Probe {
	return &instrumentedProbe{Probe: p, mw: m}
}

// WrapAll wraps every probe in ps.
func (m *Middleware) WrapAll(ps ...health.Probe) []health.Probe {
	out := make([]health.Probe, len(ps))
	for i, p := range ps {
		out[i] = m.Wrap(p)
	}
	return out
}

type instrumentedProbe struct {
	health.Probe
	mw *Middleware
}

func (p *instrumentedProbe) Check(ctx context.Context) (out health.Outcome) {
	name := p.Name()
	ctx, span := p.mw.tracer.StartSpan(ctx, name, p.Tags())
	start := time.Now()

	defer func() {
		r := recover()
		if r != nil {
			out = health.Unhealthy("probe panicked", fmt.Errorf("%w: %v", health.ErrProbePanic, r))
		}
		p.mw.record(ctx, name, out, time.Since(start))
		p.mw.tracer.EndSpan(span, out)
		if r != nil {
			panic(r)
		}
	}()

	return p.Probe.Check(ctx)
}

func (m *Middleware) record(ctx context.Context, name string, out health.Outcome, d time.Duration) {
	m.metrics.RecordProbe(ctx, name, out, d)

	fields := []Field{
		F("probe", name),
		F("status", out.Status.String()),
		F("duration_ms", float64(d.Microseconds())/1000),
	}
	if out.Description != "" {
		fields = append(fields, F("description", out.Description))
	}
	if out.Err != nil {
		fields = append(fields, F("error", out.Err.Error()))
	}

	switch out.Status {
	case health.StatusHealthy:
		m.logger.Debug(ctx, "probe completed", fields...)
	case health.StatusDegraded:
		m.logger.Warn(ctx, "probe degraded", fields...)
	default:
		m.logger.Error(ctx, "probe failed", fields...)
	}
}
