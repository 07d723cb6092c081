// Package publish runs the background publisher loop.
//
// A Publisher waits Config.Delay, then every Config.Period runs the probes
// selected by Config.Predicate and hands the report to each Sink. Sinks run
// concurrently. A failing or panicking sink is logged and counted; it never
// stops the loop or delays the other sinks beyond Config.Timeout.
//
// Sinks provided: LogSink, MetricsSink (OpenTelemetry), WebhookSink (HTTP
// POST), KafkaSink (franz-go) and RedisSink (SET plus PUBLISH). Any sink can
// be guarded by a resilience.Policy for retries and circuit breaking.
package publish
