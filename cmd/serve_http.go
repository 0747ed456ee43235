package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/server/middleware"
)

// maxRequestBytes bounds the body of one MCP request. Inline manifests
// arrive as tool arguments, so the ceiling is generous.
const maxRequestBytes = 10 << 20 // 10 MiB

// runStreamableHTTPServer serves MCP over the Streamable HTTP transport on
// endpoint, with health checks alongside. Prometheus metrics, when enabled,
// get a dedicated listener so scrapes never mix with MCP traffic.
func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, addr, endpoint string, provider *instrumentation.Provider, sc *server.ServerContext, metricsConfig MetricsServeConfig) error {
	mux := http.NewServeMux()
	mux.Handle(endpoint, mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithEndpointPath(endpoint),
	))

	healthChecker := server.NewHealthChecker(sc)
	healthChecker.RegisterHealthEndpoints(mux)

	// Request metrics, security headers, and a body size cap wrap every
	// endpoint, the health checks included.
	var handler http.Handler = mux
	handler = middleware.MaxRequestSize(maxRequestBytes)(handler)
	handler = middleware.SecurityHeaders(os.Getenv("ENABLE_HSTS") == envValueTrue)(handler)
	handler = middleware.HTTPMetrics(provider)(handler)

	var metricsServer *server.MetricsServer
	if metricsConfig.Enabled && provider != nil && provider.Enabled() {
		var err error
		metricsServer, err = startMetricsServer(metricsConfig, provider)
		if err != nil {
			return fmt.Errorf("failed to start metrics listener: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	slog.Info("serving MCP over streamable http",
		"addr", addr,
		"endpoint", endpoint,
		"health", "/healthz,/readyz")

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	// The metrics listener goes down with the main server.
	shutdown := func(shutdownCtx context.Context) error {
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("metrics listener shutdown failed", "error", err)
			}
		}
		return httpServer.Shutdown(shutdownCtx)
	}

	return serveUntilDone(ctx, "streamable-http", serverDone, shutdown)
}

// startMetricsServer starts the dedicated metrics listener in the background.
func startMetricsServer(config MetricsServeConfig, provider *instrumentation.Provider) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    config.Addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics listener: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics listener failed", "error", err)
		}
	}()

	slog.Info("metrics listener started", "addr", metricsServer.Addr(), "endpoint", provider.PrometheusEndpoint())
	return metricsServer, nil
}
