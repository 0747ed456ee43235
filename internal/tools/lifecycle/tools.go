// Package lifecycle implements the declarative resource lifecycle tools:
// ensuring targets are present, absent, or at their latest definition, and
// probing for their existence.
package lifecycle

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools"
)

// RegisterLifecycleTools registers the lifecycle tools with the MCP server.
// All four tools share the same option vocabulary; only the state differs.
func RegisterLifecycleTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	specParams := tools.SpecToolOptions()

	// kubectl_present tool
	presentOpts := []mcp.ToolOption{
		mcp.WithDescription("Ensure the targeted Kubernetes resources exist. Probes for the target and runs the configured kubectl operation (default: apply) only when it is missing; read-only operations run unconditionally"),
	}
	presentOpts = append(presentOpts, specParams...)
	presentTool := mcp.NewTool("kubectl_present", presentOpts...)

	s.AddTool(presentTool, tools.WrapWithAuditLogging("kubectl_present", handlePresent, sc))

	// kubectl_absent tool
	absentOpts := []mcp.ToolOption{
		mcp.WithDescription("Ensure the targeted Kubernetes resources do not exist. Probes for the target and deletes it only when present; force deletes without probing"),
	}
	absentOpts = append(absentOpts, specParams...)
	absentTool := mcp.NewTool("kubectl_absent", absentOpts...)

	s.AddTool(absentTool, tools.WrapWithAuditLogging("kubectl_absent", handleAbsent, sc))

	// kubectl_latest tool
	latestOpts := []mcp.ToolOption{
		mcp.WithDescription("Bring the targeted Kubernetes resources to their latest definition. Always runs the configured kubectl operation with --overwrite, relying on kubectl's own update-or-create semantics"),
	}
	latestOpts = append(latestOpts, specParams...)
	latestTool := mcp.NewTool("kubectl_latest", latestOpts...)

	s.AddTool(latestTool, tools.WrapWithAuditLogging("kubectl_latest", handleLatest, sc))

	// kubectl_exists tool
	existsOpts := []mcp.ToolOption{
		mcp.WithDescription("Probe whether the targeted Kubernetes resources exist, without changing anything. A missing target is an empty result, not an error"),
	}
	existsOpts = append(existsOpts, specParams...)
	existsTool := mcp.NewTool("kubectl_exists", existsOpts...)

	s.AddTool(existsTool, tools.WrapWithAuditLogging("kubectl_exists", handleExists, sc))

	return nil
}
