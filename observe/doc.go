// Package observe provides the observability primitives of the health
// service: a structured JSON logger, OpenTelemetry tracing and metrics, and
// a Middleware that instruments probes.
//
// It performs no health logic of its own. The service wires the Observer
// into probes at registration time and into the publisher.
package observe
