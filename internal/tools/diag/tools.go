// Package diag implements diagnostic tools: the kubectl client version and
// cluster reachability. Both are read-only and run regardless of the
// server's read-only mode.
package diag

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools"
)

// RegisterDiagnosticTools registers the diagnostic tools with the MCP server.
func RegisterDiagnosticTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	// kubectl_version tool
	versionTool := mcp.NewTool("kubectl_version",
		mcp.WithDescription("Report the version of the kubectl binary the server invokes. The binary is probed at most once per path; later calls serve the cached version"),
	)

	s.AddTool(versionTool, tools.WrapWithAuditLogging("kubectl_version", handleVersion, sc))

	// kubectl_cluster_info tool
	clusterInfoTool := mcp.NewTool("kubectl_cluster_info",
		mcp.WithDescription("Show the addresses of the Kubernetes control plane and cluster services, as reported by kubectl cluster-info"),
		mcp.WithString("kubeconfig",
			mcp.Description("Path to a kubeconfig file. Defaults to the server-wide kubeconfig"),
		),
		mcp.WithString("server",
			mcp.Description("The address and port of the Kubernetes API server"),
		),
	)

	s.AddTool(clusterInfoTool, tools.WrapWithAuditLogging("kubectl_cluster_info", handleClusterInfo, sc))

	return nil
}
