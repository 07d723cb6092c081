// Package probes provides health probes for the dependencies a service
// talks to: PostgreSQL, Redis, Kafka brokers and HTTP services.
//
// Every probe performs one trivial round trip (SELECT 1, PING, a metadata
// request, a GET) and reports the latency in its outcome data. A probe
// reports Degraded when the round trip succeeds but takes longer than
// Options.DegradedAfter.
package probes
