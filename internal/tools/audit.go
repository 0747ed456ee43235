// Package tools holds the plumbing shared by every MCP tool: argument
// parsing into invocation specs, result shaping, and audit wrapping.
package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/server"
)

// ToolHandler is the handler shape tool packages implement: the MCP request
// plus the ServerContext carrying the runner and configuration.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error)

// WrapWithAuditLogging turns a ToolHandler into the plain handler shape
// the MCP server registers, recording one audit entry and one tool-call
// metric sample per invocation. The entry carries timing, the lifecycle
// state, verb and resource pulled from the request arguments, and the
// active trace IDs so audit lines join up with spans.
//
// Without an instrumentation provider the wrapper is a pass-through.
func WrapWithAuditLogging(
	toolName string,
	handler ToolHandler,
	sc *server.ServerContext,
) func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider := sc.InstrumentationProvider()
		if provider == nil || provider.AuditLogger() == nil {
			return handler(ctx, request, sc)
		}

		invocation := instrumentation.NewToolInvocation(toolName).
			WithSpanContext(ctx)
		extractAuditInfoFromArgs(invocation, request.GetArguments())

		result, err := handler(ctx, request, sc)
		finishInvocation(invocation, result, err)

		provider.AuditLogger().LogToolInvocation(ctx, invocation)
		if metrics := provider.Metrics(); metrics != nil {
			metrics.RecordToolCall(ctx, toolName, invocation.Status())
		}

		return result, err
	}
}

// finishInvocation classifies the handler outcome. Tools report most
// failures inside the result rather than as Go errors, so a result with
// IsError set counts as a failure and its first text block becomes the
// audit error message.
func finishInvocation(invocation *instrumentation.ToolInvocation, result *mcp.CallToolResult, err error) {
	switch {
	case err != nil:
		invocation.CompleteWithError(err)
	case result != nil && result.IsError:
		invocation.Complete(false, nil)
		if len(result.Content) > 0 {
			if textContent, ok := result.Content[0].(mcp.TextContent); ok {
				invocation.Error = textContent.Text
			}
		}
	default:
		invocation.CompleteSuccess()
	}
}

// extractAuditInfoFromArgs pulls the lifecycle state, verb and target
// resource out of the raw tool arguments. Absent or mistyped values are
// simply skipped; auditing never fails a request.
func extractAuditInfoFromArgs(invocation *instrumentation.ToolInvocation, args map[string]interface{}) {
	if state, ok := args["state"].(string); ok && state != "" {
		invocation.WithState(state)
	}
	if verb, ok := args["command"].(string); ok && verb != "" {
		invocation.WithVerb(verb)
	}

	namespace, _ := args["namespace"].(string)
	name, _ := args["name"].(string)

	// The resource argument accepts both a single string and a list; only
	// the first entry identifies the target for audit purposes.
	var resourceType string
	if resources := StringList(args["resource"]); len(resources) > 0 {
		resourceType = resources[0]
	}

	if namespace != "" || resourceType != "" || name != "" {
		invocation.WithResource(namespace, resourceType, name)
	}
}
