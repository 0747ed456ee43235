// Package instrumentation wires OpenTelemetry metrics, tracing and audit
// logging into the mcp-kubectl server.
//
// A single Provider owns the SDK setup: it builds the meter and tracer
// providers from Config, hands out the Metrics recorder and the
// AuditLogger, and tears everything down in one Shutdown call. When
// instrumentation is disabled the provider is inert: Metrics() returns
// nil, while the audit logger remains available because audit trails
// are a logging concern, not a metrics one.
//
// # Metrics
//
// Four instrument groups, named from the wire surface inward:
//
//   - http_requests_total and http_request_duration_seconds cover the
//     network transports.
//   - kubectl_invocations_total, kubectl_invocation_duration_seconds and
//     kubectl_active_invocations cover individual kubectl processes.
//   - kubectl_lifecycle_runs_total and kubectl_lifecycle_run_duration_seconds
//     cover whole desired-state reconciliations.
//   - mcp_tool_calls_total counts tool calls by name and status.
//
// Verbs and resource types arrive from tool arguments, so raw values
// could mint unbounded label sets. Every label value passes through an
// allowlist classifier before recording; unknown verbs and resource
// types collapse to "other". The raw namespace and the exact resource
// type are added only when METRICS_DETAILED_LABELS is set, for clusters
// where the namespace count is known to be small.
//
// # Tracing
//
// Spans nest the way the work does: tool.<name> at the server edge,
// lifecycle.<state> for one reconciliation, kubectl.<verb> per process.
// The span helpers in tracing.go resolve the tracer through the otel
// global, so they are safe to call with no provider installed.
//
// # Configuration
//
// DefaultConfig reads the standard OTEL_* variables plus this package's
// own switches (INSTRUMENTATION_ENABLED, METRICS_EXPORTER,
// TRACING_EXPORTER, METRICS_DETAILED_LABELS); config.go documents the
// defaults.
package instrumentation
