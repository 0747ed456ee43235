//go:build integration

// Package integration drives the assembled MCP stack end to end: real
// tool registrations, a real streamable-http transport and the mcp-go
// client, with only the kubectl process swapped for scripted runners.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools/diag"
	"github.com/giantswarm/mcp-kubectl/internal/tools/lifecycle"
)

// scriptedRunner replays canned process outcomes instead of spawning
// kubectl, so the whole MCP stack can run without a cluster.
type scriptedRunner struct {
	mu       sync.Mutex
	outcomes []kubectl.Outcome
	calls    [][]string
}

func (r *scriptedRunner) Run(ctx context.Context, binary string, args []string) (kubectl.Outcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := len(r.calls)
	r.calls = append(r.calls, append([]string(nil), args...))
	if index < len(r.outcomes) {
		return r.outcomes[index], nil
	}
	return kubectl.Outcome{ExitCode: 0, Stdout: ""}, nil
}

// blockingRunner parks every invocation until its context is cancelled,
// standing in for a kubectl that hangs against an unreachable apiserver.
type blockingRunner struct{}

func (blockingRunner) Run(ctx context.Context, _ string, _ []string) (kubectl.Outcome, error) {
	<-ctx.Done()
	return kubectl.Outcome{}, ctx.Err()
}

// serveToolStack registers the lifecycle and diagnostic tools backed by
// the given runner and exposes them over streamable-http on an httptest
// server. It returns the MCP endpoint URL.
func serveToolStack(t *testing.T, ctx context.Context, runner kubectl.Runner, extra ...server.Option) string {
	t.Helper()

	opts := append([]server.Option{
		server.WithRunner(runner),
		server.WithKubectlPath("/usr/local/bin/kubectl"),
	}, extra...)
	sc, err := server.NewServerContext(ctx, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = sc.Shutdown() })

	mcpSrv := mcpserver.NewMCPServer("mcp-kubectl-test", "1.0.0",
		mcpserver.WithToolCapabilities(true))
	require.NoError(t, lifecycle.RegisterLifecycleTools(mcpSrv, sc))
	require.NoError(t, diag.RegisterDiagnosticTools(mcpSrv, sc))

	ts := httptest.NewServer(mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath("/mcp")))
	t.Cleanup(ts.Close)

	return ts.URL + "/mcp"
}

// connectClient completes the transport start and MCP handshake, leaving
// the client ready for tool calls.
func connectClient(t *testing.T, ctx context.Context, url string) *client.Client {
	t.Helper()

	mcpClient, err := client.NewStreamableHttpClient(url)
	require.NoError(t, err)
	require.NoError(t, mcpClient.Start(ctx))
	t.Cleanup(func() { _ = mcpClient.Close() })

	_, err = mcpClient.Initialize(ctx, mcp.InitializeRequest{
		Params: mcp.InitializeParams{
			ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
			Capabilities:    mcp.ClientCapabilities{},
			ClientInfo: mcp.Implementation{
				Name:    "integration-test",
				Version: "1.0.0",
			},
		},
	})
	require.NoError(t, err)

	return mcpClient
}

func callTool(ctx context.Context, c *client.Client, name string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	return c.CallTool(ctx, mcp.CallToolRequest{
		Request: mcp.Request{Method: "tools/call"},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	})
}

// The full catalog is served over the wire and an existence probe
// round-trips: argv in, classified outcome out.
func TestStreamableHTTPLifecycleTools(t *testing.T) {
	runner := &scriptedRunner{
		outcomes: []kubectl.Outcome{
			{ExitCode: 0, Stdout: "web   1/1     Running   0   4d\n"},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := serveToolStack(t, ctx, runner)
	mcpClient := connectClient(t, ctx, url)

	toolsResp, err := mcpClient.ListTools(ctx, mcp.ListToolsRequest{})
	require.NoError(t, err)
	var toolNames []string
	for _, tool := range toolsResp.Tools {
		toolNames = append(toolNames, tool.Name)
	}
	for _, want := range []string{
		"kubectl_present", "kubectl_absent", "kubectl_latest",
		"kubectl_exists", "kubectl_version", "kubectl_cluster_info",
	} {
		assert.Contains(t, toolNames, want)
	}

	result, err := callTool(ctx, mcpClient, "kubectl_exists", map[string]interface{}{
		"resource":  "pods",
		"name":      "web",
		"namespace": "default",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", result.Content[0])

	var payload struct {
		Exists  bool     `json:"exists"`
		Changed bool     `json:"changed"`
		Meta    []string `json:"meta"`
	}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	assert.True(t, payload.Exists)
	assert.False(t, payload.Changed)
	assert.Len(t, payload.Meta, 1)

	// The probe argv reached the runner untouched.
	runner.mu.Lock()
	defer runner.mu.Unlock()
	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		[]string{"get", "pods", "web", "--namespace=default", "--no-headers"},
		runner.calls[0])
}

// A hanging kubectl must not hang the transport: the client deadline
// travels with the request and cancels the invocation server-side.
func TestStreamableHTTPClientDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := serveToolStack(t, ctx, blockingRunner{})
	mcpClient := connectClient(t, ctx, url)

	callCtx, callCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer callCancel()

	start := time.Now()
	result, err := callTool(callCtx, mcpClient, "kubectl_exists", map[string]interface{}{
		"resource": "pods",
		"name":     "web",
	})
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 10*time.Second, "call must not outlive the client deadline by much")
	if err == nil {
		// Some transport versions surface the cancellation as an error
		// result instead of a client-side error.
		require.NotNil(t, result)
		assert.True(t, result.IsError, "expected an error outcome, got %+v", result)
	}
}

// TestReadOnlyModeOverHTTP verifies the read-only refusal survives the
// transport round trip rather than only working in-process.
func TestReadOnlyModeOverHTTP(t *testing.T) {
	runner := &scriptedRunner{}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	url := serveToolStack(t, ctx, runner, server.WithReadOnlyMode(true))
	mcpClient := connectClient(t, ctx, url)

	result, err := callTool(ctx, mcpClient, "kubectl_present", map[string]interface{}{
		"filename": "/manifests/deploy.yaml",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "read-only mode")

	runner.mu.Lock()
	defer runner.mu.Unlock()
	assert.Empty(t, runner.calls, "no process may run in read-only mode, got %v", runner.calls)
}

func TestMain(m *testing.M) {
	// Debug-level logs on stderr make transport failures diagnosable
	// without rerunning.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})))

	os.Exit(m.Run())
}
