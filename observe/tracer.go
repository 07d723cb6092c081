package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/jonwraymond/healthops/health"
)

// SpanPrefix prefixes every probe span name.
const SpanPrefix = "health.probe."

// SpanName returns the deterministic span name for a probe.
// Format: health.probe.<name>
func SpanName(probe string) string {
	return SpanPrefix + probe
}

// Tracer wraps OpenTelemetry tracing with probe-specific span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: EndSpan must be best-effort and must not panic.
type Tracer interface {
	// StartSpan starts a new span for a probe run.
	StartSpan(ctx context.Context, name string, tags health.Tags) (context.Context, trace.Span)

	// EndSpan ends the span, recording the outcome.
	EndSpan(span trace.Span, outcome health.Outcome)
}

type tracerImpl struct {
	tracer trace.Tracer
}

// NewTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func NewTracer(t trace.Tracer) Tracer {
	if t == nil {
		return newNoopTracer()
	}
	return &tracerImpl{tracer: t}
}

func (t *tracerImpl) StartSpan(ctx context.Context, name string, tags health.Tags) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("probe.name", name),
	}
	if len(tags) > 0 {
		attrs = append(attrs, attribute.StringSlice("probe.tags", tags))
	}

	return t.tracer.Start(ctx, SpanName(name),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpan marks the span as an error unless the probe was healthy.
func (t *tracerImpl) EndSpan(span trace.Span, outcome health.Outcome) {
	span.SetAttributes(attribute.String("probe.status", outcome.Status.String()))
	switch {
	case outcome.Err != nil:
		span.RecordError(outcome.Err)
		span.SetStatus(codes.Error, outcome.Err.Error())
	case outcome.Status != health.StatusHealthy:
		span.SetStatus(codes.Error, outcome.Description)
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

type noopTracer struct {
	noop trace.Tracer
}

func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartSpan(ctx context.Context, name string, _ health.Tags) (context.Context, trace.Span) {
	return t.noop.Start(ctx, SpanName(name))
}

func (t *noopTracer) EndSpan(span trace.Span, _ health.Outcome) {
	span.End()
}
