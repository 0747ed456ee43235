package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Label keys shared by the metric families below.
const (
	attrMethod       = "method"
	attrPath         = "path"
	attrStatus       = "status"
	attrVerb         = "verb"
	attrState        = "state"
	attrChanged      = "changed"
	attrResourceType = "resource_type"
	attrNamespace    = "namespace"
	attrTool         = "tool"
)

// Metrics owns every instrument the server records into. A zero-value
// Metrics records nothing, so callers holding one from a disabled provider
// can invoke the Record methods unconditionally.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// kubectl invocation metrics (one process spawn each)
	invocationsTotal   metric.Int64Counter
	invocationDuration metric.Float64Histogram
	activeInvocations  metric.Int64UpDownCounter

	// Lifecycle run metrics (one state reconciliation each, possibly
	// spanning a probe plus an action invocation)
	lifecycleRunsTotal metric.Int64Counter
	lifecycleDuration  metric.Float64Histogram

	// MCP tool call metrics
	toolCallsTotal metric.Int64Counter

	// detailedLabels opts invocation metrics into the namespace and
	// resource_type labels, which are unbounded on large clusters.
	detailedLabels bool
}

func newCounter(meter metric.Meter, name, description, unit string) (metric.Int64Counter, error) {
	counter, err := meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s counter: %w", name, err)
	}
	return counter, nil
}

func newHistogram(meter metric.Meter, name, description string, buckets ...float64) (metric.Float64Histogram, error) {
	histogram, err := meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(buckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s histogram: %w", name, err)
	}
	return histogram, nil
}

// NewMetrics registers every instrument on the given meter. Pass
// detailedLabels=true to record namespace and resource_type on invocation
// metrics.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{detailedLabels: detailedLabels}

	var err error

	if m.httpRequestsTotal, err = newCounter(meter,
		"http_requests_total", "Count of HTTP requests handled", "{request}"); err != nil {
		return nil, err
	}
	if m.httpRequestDuration, err = newHistogram(meter,
		"http_request_duration_seconds", "Latency of HTTP requests",
		0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0); err != nil {
		return nil, err
	}

	// kubectl forks dominate the latency profile, so the invocation buckets
	// stretch to the 30s range where a slow apiserver shows up.
	if m.invocationsTotal, err = newCounter(meter,
		"kubectl_invocations_total", "Count of kubectl process invocations", "{invocation}"); err != nil {
		return nil, err
	}
	if m.invocationDuration, err = newHistogram(meter,
		"kubectl_invocation_duration_seconds", "Wall-clock duration of kubectl invocations",
		0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0); err != nil {
		return nil, err
	}

	m.activeInvocations, err = meter.Int64UpDownCounter(
		"kubectl_active_invocations",
		metric.WithDescription("Number of kubectl processes currently running"),
		metric.WithUnit("{process}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubectl_active_invocations gauge: %w", err)
	}

	if m.lifecycleRunsTotal, err = newCounter(meter,
		"kubectl_lifecycle_runs_total", "Count of lifecycle reconciliation runs", "{run}"); err != nil {
		return nil, err
	}
	if m.lifecycleDuration, err = newHistogram(meter,
		"kubectl_lifecycle_run_duration_seconds", "Wall-clock duration of lifecycle reconciliation runs",
		0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0); err != nil {
		return nil, err
	}

	if m.toolCallsTotal, err = newCounter(meter,
		"mcp_tool_calls_total", "Count of MCP tool calls", "{call}"); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordHTTPRequest records one request against the HTTP families. The path
// label carries the route pattern, never a raw request path.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordInvocation records one kubectl process invocation with its verb,
// resource type, namespace, status, and duration. Verb and resource type are
// classified before use so request-supplied values cannot explode label
// cardinality.
//
// CARDINALITY NOTE: When detailedLabels is false (default), only verb and
// status labels are recorded. When detailedLabels is true, namespace and
// resource_type are also included; keep that disabled on clusters with
// >1000 namespaces and lean on traces instead.
func (m *Metrics) RecordInvocation(ctx context.Context, verb, resourceType, namespace, status string, duration time.Duration) {
	if m.invocationsTotal == nil || m.invocationDuration == nil {
		return
	}

	// verb and status are classifier-bounded and always present.
	attrs := []attribute.KeyValue{
		attribute.String(attrVerb, ClassifyVerb(verb)),
		attribute.String(attrStatus, status),
	}

	// namespace and resource_type ride along only when opted in.
	if m.detailedLabels {
		attrs = append(attrs,
			attribute.String(attrResourceType, ClassifyResourceType(resourceType)),
			attribute.String(attrNamespace, namespace),
		)
	}

	m.invocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.invocationDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordLifecycleRun records one lifecycle reconciliation run with the
// requested state, its status, whether it changed anything, and its
// duration.
func (m *Metrics) RecordLifecycleRun(ctx context.Context, state, status string, changed bool, duration time.Duration) {
	if m.lifecycleRunsTotal == nil || m.lifecycleDuration == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrState, state),
		attribute.String(attrStatus, status),
		attribute.Bool(attrChanged, changed),
	}

	m.lifecycleRunsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.lifecycleDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordToolCall records an MCP tool call with its tool name and status.
// Tool names are registration-time constants, so they are safe as labels.
func (m *Metrics) RecordToolCall(ctx context.Context, tool, status string) {
	if m.toolCallsTotal == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, tool),
		attribute.String(attrStatus, status),
	}

	m.toolCallsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// IncrementActiveInvocations increments the running kubectl process counter.
func (m *Metrics) IncrementActiveInvocations(ctx context.Context) {
	if m.activeInvocations == nil {
		return
	}

	m.activeInvocations.Add(ctx, 1)
}

// DecrementActiveInvocations decrements the running kubectl process counter.
func (m *Metrics) DecrementActiveInvocations(ctx context.Context) {
	if m.activeInvocations == nil {
		return
	}

	m.activeInvocations.Add(ctx, -1)
}
