package instrumentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attrsByKey(attrs []slog.Attr) map[string]slog.Attr {
	m := make(map[string]slog.Attr, len(attrs))
	for _, attr := range attrs {
		m[attr.Key] = attr
	}
	return m
}

func TestNewToolInvocation(t *testing.T) {
	ti := NewToolInvocation("kubectl_exists")

	assert.Equal(t, "kubectl_exists", ti.Tool)
	assert.False(t, ti.StartTime.IsZero())
	assert.Equal(t, -1, ti.ExitCode, "exit code must read as no-process-ran until an outcome arrives")
}

func TestToolInvocationCompletion(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ti := NewToolInvocation("kubectl_exists")
		time.Sleep(time.Millisecond)
		ti.CompleteSuccess()

		assert.True(t, ti.Success)
		assert.NotZero(t, ti.Duration)
		assert.Empty(t, ti.Error)
		assert.Equal(t, "success", ti.Status())
	})

	t.Run("error", func(t *testing.T) {
		ti := NewToolInvocation("kubectl_absent")
		ti.CompleteWithError(errors.New("permission denied"))

		assert.False(t, ti.Success)
		assert.Equal(t, "permission denied", ti.Error)
		assert.Equal(t, "error", ti.Status())
	})

	t.Run("nil error leaves the message empty", func(t *testing.T) {
		ti := NewToolInvocation("test")
		ti.Complete(true, nil)

		assert.Empty(t, ti.Error)
	})
}

func TestToolInvocationChaining(t *testing.T) {
	ti := NewToolInvocation("kubectl_latest").
		WithVerb("apply").
		WithState("latest").
		WithResource("default", "deployments", "web").
		WithOutcome(false, 0).
		CompleteSuccess()

	assert.Equal(t, "kubectl_latest", ti.Tool)
	assert.Equal(t, "apply", ti.Verb)
	assert.Equal(t, "latest", ti.State)
	assert.Equal(t, "default", ti.Namespace)
	assert.Equal(t, "deployments", ti.ResourceType)
	assert.Equal(t, "web", ti.ResourceName)
	assert.False(t, ti.Changed)
	assert.Equal(t, 0, ti.ExitCode)
	assert.True(t, ti.Success)
}

func TestToolInvocationVerbClass(t *testing.T) {
	classes := map[string]string{
		"get":          "read",
		"describe":     "read",
		"apply":        "write",
		"delete":       "write",
		"my-plugin-op": "other",
		"":             "other",
	}

	for verb, want := range classes {
		ti := NewToolInvocation("test")
		ti.Verb = verb
		assert.Equal(t, want, ti.VerbClass(), "verb %q", verb)
	}
}

func TestToolInvocationResourceClass(t *testing.T) {
	classes := map[string]string{
		"pods":         "pods",
		"po":           "pods",
		"":             "file",
		"certificates": "other",
	}

	for resourceType, want := range classes {
		ti := NewToolInvocation("test")
		ti.ResourceType = resourceType
		assert.Equal(t, want, ti.ResourceClass(), "resource type %q", resourceType)
	}
}

// LogAttrs feeds the operational log and must stay low-cardinality:
// classified verbs and resource types, no namespaces, no resource names.
func TestToolInvocationLogAttrs(t *testing.T) {
	ti := NewToolInvocation("kubectl_absent").
		WithVerb("delete").
		WithState("absent").
		WithResource("production", "pods", "nginx-abc123").
		WithOutcome(true, 0).
		CompleteSuccess()

	attrs := attrsByKey(ti.LogAttrs())

	for _, key := range []string{"tool", "verb_class", "resource_class", "state", "duration", "success", "changed"} {
		assert.Contains(t, attrs, key)
	}
	assert.Equal(t, "write", attrs["verb_class"].Value.String())
	assert.Equal(t, "pods", attrs["resource_class"].Value.String())

	assert.NotContains(t, attrs, "namespace")
	assert.NotContains(t, attrs, "resource_name")
}

// The audit record is the one place the full target details belong.
func TestToolInvocationLogAuditAttrs(t *testing.T) {
	ti := NewToolInvocation("kubectl_absent").
		WithVerb("delete").
		WithState("absent").
		WithResource("production", "pods", "nginx-abc123").
		WithOutcome(true, 0).
		CompleteSuccess()
	ti.TraceID = "abc123def456"
	ti.SpanID = "span789"

	attrs := attrsByKey(ti.LogAuditAttrs())

	assert.Equal(t, "delete", attrs["verb"].Value.String())
	assert.Equal(t, "production", attrs["namespace"].Value.String())
	assert.Equal(t, "nginx-abc123", attrs["resource_name"].Value.String())
	assert.Equal(t, int64(0), attrs["exit_code"].Value.Int64())
	assert.Equal(t, "abc123def456", attrs["trace_id"].Value.String())
	assert.Equal(t, "span789", attrs["span_id"].Value.String())

	assert.NotContains(t, attrs, "error", "no error attribute on success")
}

func TestToolInvocationLogAuditAttrsWithError(t *testing.T) {
	ti := NewToolInvocation("kubectl_present")
	ti.CompleteWithError(errors.New("filename or resource required"))

	attrs := attrsByKey(ti.LogAuditAttrs())

	require.Contains(t, attrs, "error")
	assert.Equal(t, "filename or resource required", attrs["error"].Value.String())
}

func TestNewAuditLogger(t *testing.T) {
	al := NewAuditLogger(nil)
	require.NotNil(t, al.logger, "nil falls back to the default logger")

	logger := slog.Default()
	assert.Same(t, logger, NewAuditLogger(logger).logger)
}

// auditRecord logs the invocation through a JSON handler and decodes the
// single line it produces.
func auditRecord(t *testing.T, ti *ToolInvocation) map[string]interface{} {
	t.Helper()

	var buf bytes.Buffer
	al := NewAuditLogger(slog.New(slog.NewJSONHandler(&buf, nil)))
	al.LogToolInvocation(context.Background(), ti)

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestLogToolInvocation(t *testing.T) {
	ti := NewToolInvocation("kubectl_present").
		WithVerb("apply").
		WithState("present").
		WithResource("default", "", "").
		WithOutcome(true, 0).
		CompleteSuccess()

	record := auditRecord(t, ti)

	assert.Equal(t, "tool invocation", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "kubectl_present", record["tool"])
	assert.Equal(t, true, record["changed"])
}

func TestLogToolInvocationFailureLogsAtWarn(t *testing.T) {
	ti := NewToolInvocation("kubectl_absent").
		WithVerb("delete").
		CompleteWithError(errors.New("connection refused"))

	record := auditRecord(t, ti)

	assert.Equal(t, "WARN", record["level"])
	assert.Equal(t, "connection refused", record["error"])
}

func TestWithSpanContext(t *testing.T) {
	t.Run("no active span", func(t *testing.T) {
		ti := NewToolInvocation("test").WithSpanContext(context.Background())

		assert.Empty(t, ti.TraceID)
		assert.Empty(t, ti.SpanID)
	})

	t.Run("active span", func(t *testing.T) {
		withTestTracer(t)
		ctx, span := StartSpan(context.Background(), "audit-test")
		defer span.End()

		ti := NewToolInvocation("test").WithSpanContext(ctx)

		assert.Len(t, ti.TraceID, 32)
		assert.Len(t, ti.SpanID, 16)
	})
}

func TestTraceIDFromContextWithoutSpan(t *testing.T) {
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
