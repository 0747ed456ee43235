package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/logging"
	"github.com/giantswarm/mcp-kubectl/internal/server"
	"github.com/giantswarm/mcp-kubectl/internal/tools/diag"
	"github.com/giantswarm/mcp-kubectl/internal/tools/lifecycle"
)

// Transports the serve command can bind the MCP server to.
const (
	transportStdio          = "stdio"
	transportSSE            = "sse"
	transportStreamableHTTP = "streamable-http"
)

// newServeCmd builds the serve command. Flags cover kubectl resolution,
// transport selection and the optional metrics listener; unset flags may be
// filled from environment variables.
func newServeCmd() *cobra.Command {
	var (
		kubectlBin       string
		kubeConfigPath   string
		defaultNamespace string
		readOnlyMode     bool
		debugMode        bool
		logLevel         string
		logFormat        string

		// Transport selection
		transport       string
		httpAddr        string
		sseEndpoint     string
		messageEndpoint string
		httpEndpoint    string

		// Metrics server options
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP kubectl server",
		Long: `Start the MCP kubectl server to provide declarative resource lifecycle
tools (present, absent, latest, exists) via the Model Context Protocol.
Every tool drives the kubectl binary; no Kubernetes API client is embedded.

The server speaks MCP over stdio by default; pass --transport sse or
--transport streamable-http to serve over HTTP instead.

The kubectl binary is resolved from --kubectl-bin, the KUBECTL_BIN
environment variable, or PATH lookup, in that order. Read-only mode
(--read-only) refuses every tool call that would mutate cluster state
while still allowing probes and read verbs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			config := ServeConfig{
				Transport:        transport,
				HTTPAddr:         httpAddr,
				SSEEndpoint:      sseEndpoint,
				MessageEndpoint:  messageEndpoint,
				HTTPEndpoint:     httpEndpoint,
				KubectlPath:      kubectlBin,
				KubeConfigPath:   kubeConfigPath,
				DefaultNamespace: defaultNamespace,
				ReadOnlyMode:     readOnlyMode,
				DebugMode:        debugMode,
				LogLevel:         logLevel,
				LogFormat:        logFormat,
				Metrics: MetricsServeConfig{
					Enabled: metricsEnabled,
					Addr:    metricsAddr,
				},
			}

			// Environment variables fill in anything the user did not set
			// explicitly; flags always win.
			loadServeEnvVars(cmd, &config)

			return runServe(config)
		},
	}

	// kubectl invocation flags
	cmd.Flags().StringVar(&kubectlBin, "kubectl-bin", "", "Path to the kubectl binary (default: PATH lookup; can also be set via KUBECTL_BIN env var)")
	cmd.Flags().StringVar(&kubeConfigPath, "kubeconfig", "", "Kubeconfig path passed to every kubectl invocation (default: kubectl's own resolution)")
	cmd.Flags().StringVar(&defaultNamespace, "namespace", "", "Namespace applied to tool calls that do not name one (can also be set via MCP_KUBECTL_NAMESPACE env var)")
	cmd.Flags().BoolVar(&readOnlyMode, "read-only", false, "Refuse tool calls that would mutate cluster state (can also be set via MCP_KUBECTL_READ_ONLY env var)")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Force debug-level logging regardless of --log-level")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "json", "Log format: json or text")

	// Transport wiring
	cmd.Flags().StringVar(&transport, "transport", transportStdio, "MCP transport: stdio, sse, or streamable-http")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "Listen address for the sse and streamable-http transports")
	cmd.Flags().StringVar(&sseEndpoint, "sse-endpoint", "/sse", "Event stream path on the sse transport")
	cmd.Flags().StringVar(&messageEndpoint, "message-endpoint", "/message", "Message post path on the sse transport")
	cmd.Flags().StringVar(&httpEndpoint, "http-endpoint", "/mcp", "Request path on the streamable-http transport")

	// Metrics server flags
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", false, "Serve Prometheus metrics on a dedicated listener (can also be set via METRICS_SERVER_ENABLED env var)")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (can also be set via METRICS_SERVER_ADDR env var)")

	return cmd
}

// runServe wires logging, instrumentation, the server context and the tool
// registry together, then serves MCP over the configured transport until a
// shutdown signal arrives.
func runServe(config ServeConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	// The MCP protocol owns stdout on the stdio transport, so logs always
	// go to stderr. Debug mode overrides the configured level, and the
	// global slog default follows the configured handler so every package
	// logs in the same format.
	logLevel := config.LogLevel
	if config.DebugMode {
		logLevel = "debug"
	}
	logger := logging.NewLogger(logLevel, config.LogFormat)
	slog.SetDefault(logger.Logger())

	// SIGINT and SIGTERM both start a coordinated shutdown through this
	// context.
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Initialize OpenTelemetry instrumentation provider. Enabling the
	// metrics flag implies instrumentation even when the environment does
	// not request it.
	instrumentationConfig := instrumentation.DefaultConfig()
	instrumentationConfig.ServiceVersion = rootCmd.Version
	if config.Metrics.Enabled {
		instrumentationConfig.Enabled = true
	}
	instrumentationProvider, err := instrumentation.NewProvider(shutdownCtx, instrumentationConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if shutdownErr := instrumentationProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("error during instrumentation shutdown", "error", shutdownErr)
		}
	}()

	if instrumentationProvider.Enabled() {
		logger.Info("instrumentation enabled",
			"metrics_exporter", instrumentationConfig.MetricsExporter,
			"tracing_exporter", instrumentationConfig.TracingExporter)
	}

	// Create server context carrying the runner, logger and configuration
	serverContextOptions := []server.Option{
		server.WithLogger(logger),
		server.WithVersion(rootCmd.Version),
		server.WithLogLevel(logLevel),
		server.WithInstrumentationProvider(instrumentationProvider),
		server.WithReadOnlyMode(config.ReadOnlyMode),
	}
	if config.KubectlPath != "" {
		serverContextOptions = append(serverContextOptions, server.WithKubectlPath(config.KubectlPath))
	}
	if config.KubeConfigPath != "" {
		serverContextOptions = append(serverContextOptions, server.WithKubeConfigPath(config.KubeConfigPath))
	}
	if config.DefaultNamespace != "" {
		serverContextOptions = append(serverContextOptions, server.WithDefaultNamespace(config.DefaultNamespace))
	}

	serverContext, err := server.NewServerContext(shutdownCtx, serverContextOptions...)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		if err := serverContext.Shutdown(); err != nil {
			logger.Error("error during server context shutdown", "error", err)
		}
	}()

	if config.ReadOnlyMode {
		logger.Info("read-only mode enabled: mutating tool calls will be refused")
	}

	// Tools are the only MCP capability this server advertises.
	mcpSrv := mcpserver.NewMCPServer("mcp-kubectl", rootCmd.Version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := lifecycle.RegisterLifecycleTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register lifecycle tools: %w", err)
	}

	if err := diag.RegisterDiagnosticTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register diagnostic tools: %w", err)
	}

	// Hand the registered server to the selected transport loop.
	switch config.Transport {
	case transportStdio:
		// No startup log here: nothing may touch stdout before the
		// protocol handshake, and logging is already on stderr.
		return runStdioServer(shutdownCtx, mcpSrv, config.Metrics, instrumentationProvider)
	case transportSSE:
		logger.Info("starting MCP server", logging.KeyTransport, config.Transport)
		return runSSEServer(shutdownCtx, mcpSrv, config.HTTPAddr, config.SSEEndpoint, config.MessageEndpoint)
	case transportStreamableHTTP:
		logger.Info("starting MCP server", logging.KeyTransport, config.Transport)
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, config.HTTPAddr, config.HTTPEndpoint, instrumentationProvider, serverContext, config.Metrics)
	default:
		// Validate already rejected anything else; this guards refactors.
		return fmt.Errorf("unsupported transport type: %s", config.Transport)
	}
}

// serveUntilDone blocks until the shutdown context fires or the transport's
// serve loop exits on its own, then runs the transport's shutdown function
// with a bounded grace period.
func serveUntilDone(ctx context.Context, transport string, serverDone <-chan error, shutdown func(context.Context) error) error {
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received", logging.KeyTransport, transport)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down %s server: %w", transport, err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("%s server stopped with error: %w", transport, err)
		}
	}

	slog.Info("server stopped", logging.KeyTransport, transport)
	return nil
}
