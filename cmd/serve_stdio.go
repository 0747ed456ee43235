package cmd

import (
	"context"
	"fmt"
	"log/slog"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/server"
)

// runStdioServer runs the server with STDIO transport. The metrics server,
// when enabled, still gets its own listener: stdio owns stdout but not the
// network, so Prometheus can scrape stdio deployments too.
func runStdioServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, metricsConfig MetricsServeConfig, provider *instrumentation.Provider) error {
	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider != nil && provider.Enabled() {
		var err error
		metricsServer, err = startMetricsServer(metricsConfig, provider)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	// ServeStdio returns once stdin closes or the client disconnects; the
	// signal context covers SIGINT/SIGTERM. Stdout carries only protocol
	// traffic, so everything below logs to stderr.
	var serveErr error
	select {
	case <-ctx.Done():
	case err := <-serverDone:
		serveErr = err
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("error shutting down metrics server", "error", err)
		}
	}

	if serveErr != nil {
		return fmt.Errorf("server stopped with error: %w", serveErr)
	}

	return nil
}
