// Package cmd implements the mcp-kubectl command line: a Cobra root
// command with serve, run, version and self-update subcommands. Running
// the binary with no subcommand is equivalent to "serve", so MCP client
// configurations that just name the binary keep working.
//
// The serve command starts the MCP server on one of three transports:
//
//	mcp-kubectl serve                                      # stdio (default)
//	mcp-kubectl serve --transport sse --http-addr :8080
//	mcp-kubectl serve --transport streamable-http --http-addr :9000 --http-endpoint /mcp
//
// Flags and the MCP_KUBECTL_* / KUBECTL_BIN environment variables
// configure how kubectl is invoked: the binary path, a kubeconfig passed
// to every call, a default namespace, and read-only mode, which refuses
// mutating tool calls. A dedicated Prometheus listener is available on
// any transport via --metrics-enabled.
//
// The run command executes a single lifecycle operation without an MCP
// client in front, either from flags or from a task file:
//
//	mcp-kubectl run --filename deploy.yaml --state present
//	mcp-kubectl run --resource pods --name web --namespace prod --state absent
//	mcp-kubectl run --task ./task.yaml
package cmd
