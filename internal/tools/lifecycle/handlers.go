package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools"
)

// handlePresent handles kubectl_present tool calls.
func handlePresent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return runLifecycle(ctx, request, sc, kubectl.StatePresent)
}

// handleAbsent handles kubectl_absent tool calls.
func handleAbsent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return runLifecycle(ctx, request, sc, kubectl.StateAbsent)
}

// handleLatest handles kubectl_latest tool calls.
func handleLatest(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	return runLifecycle(ctx, request, sc, kubectl.StateLatest)
}

// runLifecycle is the shared body of the three state tools: build the spec
// from the arguments, enforce read-only mode, run the reconciliation, and
// return the classified result.
func runLifecycle(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext, state kubectl.State) (*mcp.CallToolResult, error) {
	if sc.IsShutdown() {
		return nil, server.ErrServerShutdown
	}

	spec := specFromRequest(request, sc)
	spec.State = state

	if blocked := tools.CheckMutatingSpec(sc, spec); blocked != nil {
		return blocked, nil
	}

	mgr, err := kubectl.NewManager(spec, sc.ManagerOptions()...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	// The manager's spec is normalized: verb and state are defaulted.
	owned := mgr.Spec()
	ctx, span := instrumentation.StartLifecycleSpan(ctx, string(state), owned.Verb,
		instrumentation.NewSpanAttributeBuilder().
			WithNamespace(owned.Namespace).
			WithResource(firstResource(owned), owned.Name).
			Build()...)
	defer span.End()

	start := time.Now()
	res, err := mgr.Apply(ctx)
	duration := time.Since(start)

	if err != nil {
		instrumentation.SetSpanError(span, err)
		recordLifecycleRun(ctx, sc, string(state), instrumentation.StatusError, false, duration)
		return mcp.NewToolResultError(err.Error()), nil
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithChanged(res.Changed).
		Build()...)
	instrumentation.SetSpanSuccess(span)
	recordLifecycleRun(ctx, sc, string(state), instrumentation.StatusSuccess, res.Changed, duration)

	return resultResponse(res, sc)
}

// handleExists handles kubectl_exists tool calls: a single existence probe,
// never the configured operation. Read-only mode does not apply.
func handleExists(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.IsShutdown() {
		return nil, server.ErrServerShutdown
	}

	spec := specFromRequest(request, sc)

	mgr, err := kubectl.NewManager(spec, sc.ManagerOptions()...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	owned := mgr.Spec()
	ctx, span := instrumentation.StartToolSpan(ctx, "kubectl_exists",
		instrumentation.NewSpanAttributeBuilder().
			WithProbe(true).
			WithNamespace(owned.Namespace).
			WithResource(firstResource(owned), owned.Name).
			Build()...)
	defer span.End()

	exists, res, err := mgr.Exists(ctx)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	instrumentation.SetSpanSuccess(span)

	payload := existsPayload{
		Exists:        exists,
		ResultPayload: tools.NewResultPayload(res, sc.OutputConfig()),
	}
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// existsPayload augments the run payload with the probe verdict.
type existsPayload struct {
	Exists bool `json:"exists"`
	tools.ResultPayload
}

// specFromRequest builds the run spec from tool arguments and fills in the
// server-wide defaults for namespace and kubeconfig path.
func specFromRequest(request mcp.CallToolRequest, sc *server.ServerContext) *kubectl.Spec {
	spec := tools.SpecFromArgs(request.GetArguments())

	config := sc.Config()
	if spec.Namespace == "" {
		spec.Namespace = config.DefaultNamespace
	}
	if spec.Kubeconfig == "" {
		spec.Kubeconfig = config.KubeConfigPath
	}
	return spec
}

// resultResponse marshals the bounded run result into a text response.
func resultResponse(res *kubectl.Result, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	payload := tools.NewResultPayload(res, sc.OutputConfig())
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// recordLifecycleRun records the run in the lifecycle metrics when
// instrumentation is enabled.
func recordLifecycleRun(ctx context.Context, sc *server.ServerContext, state, status string, changed bool, duration time.Duration) {
	provider := sc.InstrumentationProvider()
	if provider == nil {
		return
	}
	if metrics := provider.Metrics(); metrics != nil {
		metrics.RecordLifecycleRun(ctx, state, status, changed, duration)
	}
}

// firstResource returns the primary resource type, the one existence probes
// target.
func firstResource(spec *kubectl.Spec) string {
	if len(spec.Resources) > 0 {
		return spec.Resources[0]
	}
	return ""
}
