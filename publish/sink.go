package publish

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
)

// Sink receives published reports.
//
// Contract:
//   - Concurrency: Publish may run concurrently with other sinks, never with
//     itself for the same publisher.
//   - Context: Publish must honor the deadline.
//   - Errors: a returned error is logged and counted, then dropped.
type Sink interface {
	Name() string
	Publish(ctx context.Context, report health.Report) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc struct {
	name string
	fn   func(context.Context, health.Report) error
}

// NewSinkFunc creates a SinkFunc.
func NewSinkFunc(name string, fn func(context.Context, health.Report) error) *SinkFunc {
	return &SinkFunc{name: name, fn: fn}
}

// Name returns the name of this sink.
func (s *SinkFunc) Name() string { return s.name }

// Publish calls the function.
func (s *SinkFunc) Publish(ctx context.Context, report health.Report) error {
	return s.fn(ctx, report)
}

// Message is the wire form of a published report.
type Message struct {
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	health.Document
}

// NewMessage renders a report for service.
func NewMessage(service string, report health.Report) Message {
	return Message{
		Service:   service,
		Timestamp: report.Timestamp.UTC(),
		Document:  health.NewDocument(report),
	}
}

// Encode renders a report as a JSON Message.
func Encode(service string, report health.Report) ([]byte, error) {
	return json.Marshal(NewMessage(service, report))
}

// LogSink writes a one-line summary per report, plus one line per
// entry that is not Healthy.
type LogSink struct {
	logger observe.Logger
}

// NewLogSink creates a log sink.
func NewLogSink(logger observe.Logger) *LogSink {
	if logger == nil {
		logger = observe.NopLogger()
	}
	return &LogSink{logger: logger}
}

// Name returns "log".
func (s *LogSink) Name() string { return "log" }

// Publish logs the report.
func (s *LogSink) Publish(ctx context.Context, report health.Report) error {
	s.logger.Info(ctx, "health report",
		observe.F("status", report.Status.String()),
		observe.F("probes", len(report.Entries)),
		observe.F("duration_ms", float64(report.Duration.Microseconds())/1000),
	)
	for _, e := range report.Entries {
		if e.Outcome.Status == health.StatusHealthy {
			continue
		}
		fields := []observe.Field{
			observe.F("probe", e.Name),
			observe.F("status", e.Outcome.Status.String()),
			observe.F("description", e.Outcome.Description),
		}
		if e.Outcome.Err != nil {
			fields = append(fields, observe.F("error", e.Outcome.Err.Error()))
		}
		s.logger.Warn(ctx, "probe not healthy", fields...)
	}
	return nil
}

// MetricsSink records the report as OpenTelemetry gauges.
type MetricsSink struct {
	metrics observe.Metrics
}

// NewMetricsSink creates a metrics sink.
func NewMetricsSink(metrics observe.Metrics) *MetricsSink {
	if metrics == nil {
		metrics = observe.NopMetrics()
	}
	return &MetricsSink{metrics: metrics}
}

// Name returns "metrics".
func (s *MetricsSink) Name() string { return "metrics" }

// Publish records the per-probe and overall status gauges.
func (s *MetricsSink) Publish(ctx context.Context, report health.Report) error {
	s.metrics.RecordReport(ctx, report)
	return nil
}

var (
	_ Sink = (*SinkFunc)(nil)
	_ Sink = (*LogSink)(nil)
	_ Sink = (*MetricsSink)(nil)
)
