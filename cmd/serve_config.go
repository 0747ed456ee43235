package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// envValueTrue is the string value used to enable boolean environment variables.
const envValueTrue = "true"

// ServeConfig holds all configuration for the serve command.
type ServeConfig struct {
	// Transport settings
	Transport string
	HTTPAddr  string

	// Endpoint paths
	SSEEndpoint     string
	MessageEndpoint string
	HTTPEndpoint    string

	// kubectl invocation settings
	KubectlPath      string
	KubeConfigPath   string
	DefaultNamespace string
	ReadOnlyMode     bool

	// Logging settings
	LogLevel  string
	LogFormat string
	DebugMode bool

	// Metrics holds the standalone metrics server configuration.
	Metrics MetricsServeConfig
}

// MetricsServeConfig configures the dedicated Prometheus metrics listener.
// It is separate from the MCP transport so scrapes work on every transport,
// including stdio.
type MetricsServeConfig struct {
	Enabled bool
	Addr    string
}

// Validate checks the configuration for combinations that cannot serve.
// It runs before any process or listener is created so misconfiguration
// fails fast with a single clear error.
func (c *ServeConfig) Validate() error {
	switch c.Transport {
	case transportStdio, transportSSE, transportStreamableHTTP:
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: stdio, sse, streamable-http)", c.Transport)
	}

	if c.Transport != transportStdio && c.HTTPAddr == "" {
		return fmt.Errorf("http-addr is required for the %s transport", c.Transport)
	}

	if c.Transport == transportSSE {
		if !strings.HasPrefix(c.SSEEndpoint, "/") {
			return fmt.Errorf("sse-endpoint must start with '/', got %q", c.SSEEndpoint)
		}
		if !strings.HasPrefix(c.MessageEndpoint, "/") {
			return fmt.Errorf("message-endpoint must start with '/', got %q", c.MessageEndpoint)
		}
	}

	if c.Transport == transportStreamableHTTP && !strings.HasPrefix(c.HTTPEndpoint, "/") {
		return fmt.Errorf("http-endpoint must start with '/', got %q", c.HTTPEndpoint)
	}

	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics-addr is required when the metrics server is enabled")
	}

	if c.Metrics.Enabled && c.Transport != transportStdio && c.Metrics.Addr == c.HTTPAddr {
		return fmt.Errorf("metrics-addr must differ from http-addr (both are %q)", c.Metrics.Addr)
	}

	return nil
}

// loadServeEnvVars fills configuration from environment variables. A value
// from the environment only applies when the corresponding flag was not
// explicitly set by the user, so flags always win.
func loadServeEnvVars(cmd *cobra.Command, config *ServeConfig) {
	if !cmd.Flags().Changed("kubectl-bin") {
		loadEnvIfEmpty(&config.KubectlPath, "KUBECTL_BIN")
	}

	// KUBECONFIG intentionally stays unread here: an explicitly configured
	// path is passed to every invocation via --kubeconfig=, while the
	// variable itself is already honored by kubectl when no flag is given.
	if !cmd.Flags().Changed("namespace") {
		loadEnvIfEmpty(&config.DefaultNamespace, "MCP_KUBECTL_NAMESPACE")
	}

	if !cmd.Flags().Changed("read-only") {
		if os.Getenv("MCP_KUBECTL_READ_ONLY") == envValueTrue {
			config.ReadOnlyMode = true
		}
	}

	if !cmd.Flags().Changed("metrics-enabled") {
		if os.Getenv("METRICS_SERVER_ENABLED") == envValueTrue {
			config.Metrics.Enabled = true
		}
	}

	if !cmd.Flags().Changed("metrics-addr") {
		if addr := os.Getenv("METRICS_SERVER_ADDR"); addr != "" {
			config.Metrics.Addr = addr
		}
	}

	if !cmd.Flags().Changed("log-level") {
		if level := os.Getenv("MCP_KUBECTL_LOG_LEVEL"); level != "" {
			config.LogLevel = level
		}
	}
}

// loadEnvIfEmpty loads an environment variable into a string pointer if it's empty.
func loadEnvIfEmpty(target *string, envKey string) {
	if *target == "" {
		*target = os.Getenv(envKey)
	}
}
