// Package observe instruments health checks.
//
// Middleware wraps each health.Checker in an OpenTelemetry span, records
// run counts and durations, and logs the outcome as one JSON line through
// zerolog. Entries logged inside a span carry its trace and span IDs.
// ErrorHandler logs failures the health HTTP layer cannot answer itself.
//
// NewObserver builds the providers named in Config; the exporters
// subpackage constructs the exporters. With the prometheus exporter the
// Observer serves its own registry from MetricsHandler.
package observe
