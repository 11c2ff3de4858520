// Package tracing wraps OpenTelemetry so that process table operations can be
// traced without callers importing the upstream packages. Until Init or
// InitWithExporter installs a provider, spans are no-ops.
package tracing
