package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jonwraymond/healthops/health"
)

// Metric instrument names.
const (
	MetricProbeRuns     = "health.probe.runs"
	MetricProbeFailures = "health.probe.failures"
	MetricProbeDuration = "health.probe.duration_ms"
	MetricProbeStatus   = "health.probe.status"
	MetricReportStatus  = "health.report.status"
	MetricSinkPublishes = "health.sink.publishes"
	MetricSinkFailures  = "health.sink.failures"
)

// Metrics records probe and publisher metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordProbe records a single probe run.
	RecordProbe(ctx context.Context, name string, outcome health.Outcome, duration time.Duration)

	// RecordReport records the per-probe and overall status gauges of a report.
	RecordReport(ctx context.Context, report health.Report)

	// RecordSink records one publish attempt to a sink.
	RecordSink(ctx context.Context, sink string, err error)
}

type metricsImpl struct {
	runs         metric.Int64Counter
	failures     metric.Int64Counter
	durationHist metric.Float64Histogram
	probeStatus  metric.Int64Gauge
	reportStatus metric.Int64Gauge
	sinkCount    metric.Int64Counter
	sinkFailures metric.Int64Counter
}

// NewMetrics creates the probe instruments on meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	m := &metricsImpl{}
	var err error

	if m.runs, err = meter.Int64Counter(MetricProbeRuns,
		metric.WithDescription("Total number of probe runs"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter(MetricProbeFailures,
		metric.WithDescription("Probe runs that did not report Healthy"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.durationHist, err = meter.Float64Histogram(MetricProbeDuration,
		metric.WithDescription("Probe run duration in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.probeStatus, err = meter.Int64Gauge(MetricProbeStatus,
		metric.WithDescription("Last published probe status (0 healthy, 1 degraded, 2 unhealthy)"),
	); err != nil {
		return nil, err
	}
	if m.reportStatus, err = meter.Int64Gauge(MetricReportStatus,
		metric.WithDescription("Last published overall status (0 healthy, 1 degraded, 2 unhealthy)"),
	); err != nil {
		return nil, err
	}
	if m.sinkCount, err = meter.Int64Counter(MetricSinkPublishes,
		metric.WithDescription("Total number of sink publish attempts"),
		metric.WithUnit("{publish}"),
	); err != nil {
		return nil, err
	}
	if m.sinkFailures, err = meter.Int64Counter(MetricSinkFailures,
		metric.WithDescription("Sink publish attempts that failed"),
		metric.WithUnit("{publish}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *metricsImpl) RecordProbe(ctx context.Context, name string, outcome health.Outcome, duration time.Duration) {
	opt := metric.WithAttributes(
		attribute.String("probe.name", name),
		attribute.String("probe.status", outcome.Status.String()),
	)

	m.runs.Add(ctx, 1, opt)
	if outcome.Status != health.StatusHealthy {
		m.failures.Add(ctx, 1, opt)
	}
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000, opt)
}

func (m *metricsImpl) RecordReport(ctx context.Context, report health.Report) {
	for _, e := range report.Entries {
		m.probeStatus.Record(ctx, int64(e.Outcome.Status),
			metric.WithAttributes(attribute.String("probe.name", e.Name)))
	}
	m.reportStatus.Record(ctx, int64(report.Status))
}

func (m *metricsImpl) RecordSink(ctx context.Context, sink string, err error) {
	opt := metric.WithAttributes(attribute.String("sink.name", sink))
	m.sinkCount.Add(ctx, 1, opt)
	if err != nil {
		m.sinkFailures.Add(ctx, 1, opt)
	}
}

type noopMetrics struct{}

// NopMetrics returns a Metrics that records nothing.
func NopMetrics() Metrics { return noopMetrics{} }

func (noopMetrics) RecordProbe(context.Context, string, health.Outcome, time.Duration) {}
func (noopMetrics) RecordReport(context.Context, health.Report)                        {}
func (noopMetrics) RecordSink(context.Context, string, error)                          {}
