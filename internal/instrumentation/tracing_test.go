package instrumentation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

// withTestTracer installs an in-memory span exporter as the global tracer
// provider for the duration of the test, so the span helpers (which resolve
// the tracer through the otel global) produce capturable spans.
func withTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)))
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	return exporter
}

// finishedSpan ends the span and returns its exported snapshot.
func finishedSpan(t *testing.T, exporter *tracetest.InMemoryExporter, span trace.Span) tracetest.SpanStub {
	t.Helper()

	span.End()
	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	return spans[0]
}

func spanAttrs(stub tracetest.SpanStub) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value, len(stub.Attributes))
	for _, attr := range stub.Attributes {
		m[attr.Key] = attr.Value
	}
	return m
}

func TestSpanAttributeBuilder(t *testing.T) {
	tests := []struct {
		name  string
		build func() []attribute.KeyValue
		want  map[attribute.Key]interface{}
	}{
		{
			name:  "empty builder yields nothing",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().Build() },
			want:  map[attribute.Key]interface{}{},
		},
		{
			name:  "tool name",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithTool("kubectl_present").Build() },
			want:  map[attribute.Key]interface{}{SpanAttrTool: "kubectl_present"},
		},
		{
			name:  "verb carries its access class",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithVerb("delete").Build() },
			want: map[attribute.Key]interface{}{
				SpanAttrVerb:      "delete",
				SpanAttrVerbClass: "write",
			},
		},
		{
			name:  "unknown verb classifies as other",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithVerb("my-plugin-op").Build() },
			want: map[attribute.Key]interface{}{
				SpanAttrVerb:      "my-plugin-op",
				SpanAttrVerbClass: "other",
			},
		},
		{
			name:  "state",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithState("absent").Build() },
			want:  map[attribute.Key]interface{}{SpanAttrState: "absent"},
		},
		{
			name:  "empty namespace is omitted",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithNamespace("").Build() },
			want:  map[attribute.Key]interface{}{},
		},
		{
			name: "resource type and name",
			build: func() []attribute.KeyValue {
				return NewSpanAttributeBuilder().WithResource("pods", "nginx-abc123").Build()
			},
			want: map[attribute.Key]interface{}{
				SpanAttrResourceType: "pods",
				SpanAttrResourceName: "nginx-abc123",
			},
		},
		{
			name: "manifest-driven run has neither resource field",
			build: func() []attribute.KeyValue {
				return NewSpanAttributeBuilder().WithResource("", "").Build()
			},
			want: map[attribute.Key]interface{}{},
		},
		{
			name:  "probe flag",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithProbe(true).Build() },
			want:  map[attribute.Key]interface{}{SpanAttrProbe: true},
		},
		{
			name:  "exit code",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithExitCode(1).Build() },
			want:  map[attribute.Key]interface{}{SpanAttrExitCode: int64(1)},
		},
		{
			name:  "changed flag",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithChanged(true).Build() },
			want:  map[attribute.Key]interface{}{SpanAttrChanged: true},
		},
		{
			name:  "cache hit flag",
			build: func() []attribute.KeyValue { return NewSpanAttributeBuilder().WithCacheHit(false).Build() },
			want:  map[attribute.Key]interface{}{SpanAttrCacheHit: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := tt.build()
			require.Len(t, attrs, len(tt.want))

			for _, attr := range attrs {
				want, ok := tt.want[attr.Key]
				require.True(t, ok, "unexpected attribute %s", attr.Key)
				assert.Equal(t, want, attr.Value.AsInterface(), "attribute %s", attr.Key)
			}
		})
	}
}

func TestSpanAttributeBuilderChaining(t *testing.T) {
	attrs := NewSpanAttributeBuilder().
		WithTool("kubectl_absent").
		WithVerb("delete").
		WithState("absent").
		WithNamespace("production").
		WithResource("pods", "nginx").
		WithProbe(false).
		WithExitCode(0).
		WithChanged(true).
		WithCacheHit(false).
		Build()

	// tool + verb/class pair + state + namespace + type/name pair + the
	// four scalar flags.
	assert.Len(t, attrs, 11)
}

func TestStartToolSpan(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartToolSpan(context.Background(), "kubectl_present",
		attribute.String("extra", "attr"))
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, "tool.kubectl_present", stub.Name)
	assert.Equal(t, trace.SpanKindServer, stub.SpanKind)

	attrs := spanAttrs(stub)
	assert.Equal(t, "kubectl_present", attrs[SpanAttrTool].AsString())
	assert.Equal(t, "attr", attrs["extra"].AsString())
}

func TestStartInvocationSpan(t *testing.T) {
	t.Run("named resource", func(t *testing.T) {
		exporter := withTestTracer(t)

		_, span := StartInvocationSpan(context.Background(), "get", "pods", "production")
		stub := finishedSpan(t, exporter, span)

		assert.Equal(t, "kubectl.get", stub.Name)
		assert.Equal(t, trace.SpanKindInternal, stub.SpanKind)

		attrs := spanAttrs(stub)
		assert.Equal(t, "get", attrs[SpanAttrVerb].AsString())
		assert.Equal(t, "pods", attrs[SpanAttrResourceType].AsString())
		assert.Equal(t, "production", attrs[SpanAttrNamespace].AsString())
	})

	t.Run("manifest-driven invocation omits resource and namespace", func(t *testing.T) {
		exporter := withTestTracer(t)

		_, span := StartInvocationSpan(context.Background(), "apply", "", "")
		stub := finishedSpan(t, exporter, span)

		assert.Equal(t, "kubectl.apply", stub.Name)

		attrs := spanAttrs(stub)
		assert.NotContains(t, attrs, attribute.Key(SpanAttrResourceType))
		assert.NotContains(t, attrs, attribute.Key(SpanAttrNamespace))
	})
}

func TestStartLifecycleSpan(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartLifecycleSpan(context.Background(), "present", "apply")
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, "lifecycle.present", stub.Name)
	assert.Equal(t, trace.SpanKindInternal, stub.SpanKind)

	attrs := spanAttrs(stub)
	assert.Equal(t, "present", attrs[SpanAttrState].AsString())
	assert.Equal(t, "apply", attrs[SpanAttrVerb].AsString())
}

func TestStartSpan(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartSpan(context.Background(), "classify", attribute.String("key", "value"))
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, "classify", stub.Name)
	assert.Equal(t, "value", spanAttrs(stub)["key"].AsString())
}

func TestSetSpanError(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartSpan(context.Background(), "failing-run")
	SetSpanError(span, errors.New("exit status 1"))
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, codes.Error, stub.Status.Code)
	assert.Equal(t, "exit status 1", stub.Status.Description)
	require.Len(t, stub.Events, 1)
	assert.Equal(t, "exception", stub.Events[0].Name)
}

func TestSetSpanErrorNilIsNoop(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartSpan(context.Background(), "clean-run")
	SetSpanError(span, nil)
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, codes.Unset, stub.Status.Code)
	assert.Empty(t, stub.Events)
}

func TestSetSpanSuccess(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartSpan(context.Background(), "clean-run")
	SetSpanSuccess(span)
	stub := finishedSpan(t, exporter, span)

	assert.Equal(t, codes.Ok, stub.Status.Code)
}

func TestAddSpanEvent(t *testing.T) {
	exporter := withTestTracer(t)

	_, span := StartSpan(context.Background(), "run")
	AddSpanEvent(span, "probe-complete", attribute.Bool("present", true))
	stub := finishedSpan(t, exporter, span)

	require.Len(t, stub.Events, 1)
	assert.Equal(t, "probe-complete", stub.Events[0].Name)
}

func TestTraceContextAccessors(t *testing.T) {
	t.Run("without a span", func(t *testing.T) {
		ctx := context.Background()

		assert.Empty(t, GetTraceID(ctx))
		assert.Empty(t, GetSpanID(ctx))
		assert.Empty(t, SpanContextString(ctx))
	})

	t.Run("with a recording span", func(t *testing.T) {
		withTestTracer(t)

		ctx, span := StartSpan(context.Background(), "run")
		defer span.End()

		traceID := GetTraceID(ctx)
		spanID := GetSpanID(ctx)

		assert.Len(t, traceID, 32)
		assert.Len(t, spanID, 16)
		assert.Equal(t, "trace_id="+traceID+" span_id="+spanID, SpanContextString(ctx))
	})
}
