package diag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools"
)

// handleVersion handles kubectl_version tool calls.
func handleVersion(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.IsShutdown() {
		return nil, server.ErrServerShutdown
	}

	binary, err := kubectl.ResolveBinary(sc.KubectlPath())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	cache := sc.Versions()
	cached := cache.Cached(binary)

	ctx, span := instrumentation.StartToolSpan(ctx, "kubectl_version",
		instrumentation.NewSpanAttributeBuilder().
			WithCacheHit(cached).
			Build()...)
	defer span.End()

	version, err := cache.ClientVersion(ctx, sc.InstrumentedRunner(), binary)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	instrumentation.SetSpanSuccess(span)

	payload := versionPayload{
		Binary:        binary,
		ClientVersion: version,
		Cached:        cached,
	}
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// versionPayload is the kubectl_version response body.
type versionPayload struct {
	Binary        string `json:"binary"`
	ClientVersion string `json:"clientVersion"`
	Cached        bool   `json:"cached"`
}

// handleClusterInfo handles kubectl_cluster_info tool calls. cluster-info
// addresses the cluster as a whole, not a resource, so the invocation goes
// straight to the runner instead of through a lifecycle manager.
func handleClusterInfo(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	if sc.IsShutdown() {
		return nil, server.ErrServerShutdown
	}

	binary, err := kubectl.ResolveBinary(sc.KubectlPath())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	kubeconfig := sc.Config().KubeConfigPath
	if v, ok := args["kubeconfig"].(string); ok && v != "" {
		kubeconfig = v
	}

	argv := []string{"cluster-info"}
	if kubeconfig != "" {
		argv = append(argv, "--kubeconfig="+kubeconfig)
	}
	if v, ok := args["server"].(string); ok && v != "" {
		argv = append(argv, "--server="+v)
	}

	ctx, span := instrumentation.StartToolSpan(ctx, "kubectl_cluster_info")
	defer span.End()

	out, err := sc.InstrumentedRunner().Run(ctx, binary, argv)
	if err != nil {
		instrumentation.SetSpanError(span, err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if out.ExitCode != 0 {
		execErr := &kubectl.ExecutionError{
			Cmd:      append([]string{binary}, argv...),
			ExitCode: out.ExitCode,
			Stdout:   out.Stdout,
			Stderr:   out.Stderr,
		}
		instrumentation.SetSpanError(span, execErr)
		return mcp.NewToolResultError(execErr.Error()), nil
	}
	instrumentation.SetSpanSuccess(span)

	res := kubectl.NewResult()
	res.Meta = stdoutLines(out.Stdout)
	res.Msg = "successfully ran kubectl (cluster-info) command"

	payload := tools.NewResultPayload(res, sc.OutputConfig())
	jsonData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

// stdoutLines splits captured output into lines without a phantom entry for
// the trailing newline.
func stdoutLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
