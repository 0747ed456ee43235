package instrumentation

import (
	"context"
	"log/slog"
	"time"
)

// ToolInvocation captures one MCP tool call for audit logging and metrics.
// Build it at the start of a handler, enrich it as arguments are parsed, and
// complete it when the handler returns.
type ToolInvocation struct {
	// Tool is the MCP tool name.
	Tool string

	// StartTime is when the invocation began.
	StartTime time.Time

	// Duration is the total invocation duration, set on completion.
	Duration time.Duration

	// Success indicates whether the invocation succeeded.
	Success bool

	// Error is the error message when the invocation failed.
	Error string

	// Verb is the kubectl verb that was requested.
	Verb string

	// State is the requested lifecycle state.
	State string

	// Namespace is the Kubernetes namespace, when scoped.
	Namespace string

	// ResourceType is the primary resource type.
	ResourceType string

	// ResourceName is the resource name, when targeting one resource.
	ResourceName string

	// Changed indicates whether the run mutated cluster state.
	Changed bool

	// ExitCode is the kubectl process exit code. It stays -1 when no
	// process produced one (validation failures, launch failures).
	ExitCode int

	// TraceID and SpanID carry the trace context for correlation.
	TraceID string
	SpanID  string
}

// NewToolInvocation creates a ToolInvocation with the start time set.
func NewToolInvocation(tool string) *ToolInvocation {
	return &ToolInvocation{
		Tool:      tool,
		StartTime: time.Now(),
		ExitCode:  -1,
	}
}

// WithVerb sets the kubectl verb.
func (ti *ToolInvocation) WithVerb(verb string) *ToolInvocation {
	ti.Verb = verb
	return ti
}

// WithState sets the requested lifecycle state.
func (ti *ToolInvocation) WithState(state string) *ToolInvocation {
	ti.State = state
	return ti
}

// WithResource sets the resource scope attributes.
func (ti *ToolInvocation) WithResource(namespace, resourceType, resourceName string) *ToolInvocation {
	ti.Namespace = namespace
	ti.ResourceType = resourceType
	ti.ResourceName = resourceName
	return ti
}

// WithOutcome records the classified run outcome.
func (ti *ToolInvocation) WithOutcome(changed bool, exitCode int) *ToolInvocation {
	ti.Changed = changed
	ti.ExitCode = exitCode
	return ti
}

// WithSpanContext captures the trace and span IDs from ctx, when a valid
// span is present.
func (ti *ToolInvocation) WithSpanContext(ctx context.Context) *ToolInvocation {
	ti.TraceID = GetTraceID(ctx)
	ti.SpanID = GetSpanID(ctx)
	return ti
}

// Complete finalizes the invocation with its duration and outcome.
func (ti *ToolInvocation) Complete(success bool, err error) *ToolInvocation {
	ti.Duration = time.Since(ti.StartTime)
	ti.Success = success
	if err != nil {
		ti.Error = err.Error()
	}
	return ti
}

// CompleteSuccess finalizes the invocation as successful.
func (ti *ToolInvocation) CompleteSuccess() *ToolInvocation {
	return ti.Complete(true, nil)
}

// CompleteWithError finalizes the invocation as failed.
func (ti *ToolInvocation) CompleteWithError(err error) *ToolInvocation {
	return ti.Complete(false, err)
}

// Status returns the status label value for this invocation.
func (ti *ToolInvocation) Status() string {
	if ti.Success {
		return StatusSuccess
	}
	return StatusError
}

// VerbClass returns the classified verb access type for low-cardinality
// aggregation.
func (ti *ToolInvocation) VerbClass() string {
	return string(ClassifyVerbAccess(ti.Verb))
}

// ResourceClass returns the classified resource type for low-cardinality
// aggregation.
func (ti *ToolInvocation) ResourceClass() string {
	return ClassifyResourceType(ti.ResourceType)
}

// LogAttrs returns cardinality-controlled attributes for operational logs.
// Raw namespace and resource names are deliberately excluded here; use
// LogAuditAttrs for the full record.
func (ti *ToolInvocation) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("verb_class", ti.VerbClass()),
		slog.String("resource_class", ti.ResourceClass()),
		slog.String("state", ti.State),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
		slog.Bool("changed", ti.Changed),
	}
}

// LogAuditAttrs returns the full-detail attributes for audit logs. Unlike
// LogAttrs, these carry the raw values: audit trails need the exact target,
// not a classification.
func (ti *ToolInvocation) LogAuditAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("tool", ti.Tool),
		slog.String("verb", ti.Verb),
		slog.String("state", ti.State),
		slog.String("namespace", ti.Namespace),
		slog.String("resource_type", ti.ResourceType),
		slog.String("resource_name", ti.ResourceName),
		slog.Bool("changed", ti.Changed),
		slog.Int("exit_code", ti.ExitCode),
		slog.Duration("duration", ti.Duration),
		slog.Bool("success", ti.Success),
		slog.String("trace_id", ti.TraceID),
		slog.String("span_id", ti.SpanID),
	}
	if ti.Error != "" {
		attrs = append(attrs, slog.String("error", ti.Error))
	}
	return attrs
}

// AuditLogger writes structured audit records for tool invocations.
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates an AuditLogger. A nil logger falls back to
// slog.Default().
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditLogger{logger: logger}
}

// LogToolInvocation writes one audit record. Failed invocations log at warn
// level so they stand out without paging anyone.
func (al *AuditLogger) LogToolInvocation(ctx context.Context, ti *ToolInvocation) {
	level := slog.LevelInfo
	if !ti.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "tool invocation", ti.LogAuditAttrs()...)
}

// TraceIDFromContext returns the trace ID of the active span, or an empty
// string when no valid span is present.
func TraceIDFromContext(ctx context.Context) string {
	return GetTraceID(ctx)
}
