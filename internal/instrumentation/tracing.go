package instrumentation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName identifies this module's tracer in the global provider.
const TracerName = "github.com/giantswarm/mcp-kubectl"

// Span attribute keys. The kubectl.* keys describe a single process
// invocation, k8s.* locate the resource it touched, and mcp.* tie spans
// back to the tool call that triggered them.
const (
	SpanAttrTool     = "mcp.tool"
	SpanAttrCacheHit = "mcp.cache_hit"

	SpanAttrVerb      = "kubectl.verb"
	SpanAttrVerbClass = "kubectl.verb_class" // read, write or other
	SpanAttrState     = "kubectl.state"
	SpanAttrProbe     = "kubectl.probe"
	SpanAttrExitCode  = "kubectl.exit_code"
	SpanAttrChanged   = "kubectl.changed"
	SpanAttrBinary    = "kubectl.binary"

	SpanAttrNamespace    = "k8s.namespace"
	SpanAttrResourceType = "k8s.resource_type"
	SpanAttrResourceName = "k8s.resource_name"
)

// SpanAttributeBuilder accumulates span attributes without forcing the
// caller to remember key names or attribute constructors.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{attrs: make([]attribute.KeyValue, 0, 8)}
}

func (b *SpanAttributeBuilder) WithTool(name string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrTool, name))
	return b
}

// WithVerb records the kubectl verb together with its access class, so
// traces can be filtered by read/write without a verb lookup table.
func (b *SpanAttributeBuilder) WithVerb(verb string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrVerb, verb),
		attribute.String(SpanAttrVerbClass, string(ClassifyVerbAccess(verb))),
	)
	return b
}

func (b *SpanAttributeBuilder) WithState(state string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrState, state))
	return b
}

func (b *SpanAttributeBuilder) WithNamespace(namespace string) *SpanAttributeBuilder {
	if namespace != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrNamespace, namespace))
	}
	return b
}

func (b *SpanAttributeBuilder) WithResource(resourceType, resourceName string) *SpanAttributeBuilder {
	if resourceType != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if resourceName != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrResourceName, resourceName))
	}
	return b
}

// WithProbe marks a span as belonging to an existence probe rather than
// a mutating invocation.
func (b *SpanAttributeBuilder) WithProbe(probe bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrProbe, probe))
	return b
}

func (b *SpanAttributeBuilder) WithExitCode(code int) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Int(SpanAttrExitCode, code))
	return b
}

func (b *SpanAttributeBuilder) WithChanged(changed bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrChanged, changed))
	return b
}

func (b *SpanAttributeBuilder) WithCacheHit(hit bool) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.Bool(SpanAttrCacheHit, hit))
	return b
}

func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

func tracer() trace.Tracer {
	return otel.GetTracerProvider().Tracer(TracerName)
}

// StartSpan opens a span on the globally registered tracer. When no
// provider is configured the returned span is a no-op, so callers never
// need to guard their tracing code.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan opens the server-kind root span for one MCP tool call.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{attribute.String(SpanAttrTool, toolName)}, attrs...)
	return tracer().Start(ctx, "tool."+toolName,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(all...),
	)
}

// StartInvocationSpan opens a span covering a single kubectl process, as
// a child of whatever tool or lifecycle span drives it. Empty resource
// type and namespace are omitted instead of recorded as "".
func StartInvocationSpan(ctx context.Context, verb, resourceType, namespace string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{attribute.String(SpanAttrVerb, verb)}
	if resourceType != "" {
		attrs = append(attrs, attribute.String(SpanAttrResourceType, resourceType))
	}
	if namespace != "" {
		attrs = append(attrs, attribute.String(SpanAttrNamespace, namespace))
	}
	return tracer().Start(ctx, "kubectl."+verb,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// StartLifecycleSpan opens a span covering one desired-state run, which
// in turn parents the probe and apply invocation spans.
func StartLifecycleSpan(ctx context.Context, state, verb string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		attribute.String(SpanAttrState, state),
		attribute.String(SpanAttrVerb, verb),
	}, attrs...)
	return tracer().Start(ctx, "lifecycle."+state,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(all...),
	)
}

// SetSpanError records err on the span and flips its status to Error.
// Nil errors are ignored so callers can defer it unconditionally.
func SetSpanError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddSpanEvent attaches a point-in-time event to the span.
func AddSpanEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// currentSpanContext extracts the span context from ctx, reporting
// whether it carries usable IDs.
func currentSpanContext(ctx context.Context) (trace.SpanContext, bool) {
	sc := trace.SpanFromContext(ctx).SpanContext()
	return sc, sc.IsValid()
}

// GetTraceID returns the hex trace ID from ctx, or "" outside a trace.
func GetTraceID(ctx context.Context) string {
	if sc, ok := currentSpanContext(ctx); ok {
		return sc.TraceID().String()
	}
	return ""
}

// GetSpanID returns the hex span ID from ctx, or "" outside a trace.
func GetSpanID(ctx context.Context) string {
	if sc, ok := currentSpanContext(ctx); ok {
		return sc.SpanID().String()
	}
	return ""
}

// SpanContextString renders the current trace correlation pair in the
// form log lines carry, e.g. "trace_id=4bf9... span_id=00f0...".
func SpanContextString(ctx context.Context) string {
	sc, ok := currentSpanContext(ctx)
	if !ok {
		return ""
	}
	return fmt.Sprintf("trace_id=%s span_id=%s", sc.TraceID(), sc.SpanID())
}
