package server

import (
	"errors"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/logging"
	"github.com/giantswarm/mcp-kubectl/internal/tools/output"
)

// Option mutates a ServerContext during construction. Options are applied
// in the order given; the first error aborts NewServerContext.
type Option func(*ServerContext) error

// WithRunner sets the kubectl process runner for the ServerContext.
func WithRunner(runner kubectl.Runner) Option {
	return func(sc *ServerContext) error {
		if runner == nil {
			return ErrMissingRunner
		}
		sc.runner = runner
		return nil
	}
}

// WithLogger sets the logger the server and everything built from it will
// write through.
func WithLogger(logger logging.Logger) Option {
	return func(sc *ServerContext) error {
		if logger == nil {
			return ErrMissingLogger
		}
		sc.logger = logger
		return nil
	}
}

// WithConfig replaces the whole configuration. The config is cloned, so
// later mutation by the caller cannot reach the server.
func WithConfig(config *Config) Option {
	return func(sc *ServerContext) error {
		if config == nil {
			return ErrMissingConfig
		}
		sc.config = config.Clone()
		return nil
	}
}

// WithServerName overrides the name reported during the MCP handshake.
func WithServerName(name string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ServerName = name
		return nil
	}
}

// WithVersion overrides the version reported during the MCP handshake.
func WithVersion(version string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.Version = version
		return nil
	}
}

// WithKubectlPath sets an explicit kubectl binary path. The version cache
// entry for the previous path is dropped so a changed binary is re-probed.
func WithKubectlPath(path string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		if sc.versions != nil && sc.config.KubectlPath != path {
			sc.versions.Invalidate(sc.config.KubectlPath)
		}
		sc.config.KubectlPath = path
		return nil
	}
}

// WithKubeConfigPath sets the kubeconfig path applied to every invocation.
func WithKubeConfigPath(path string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.KubeConfigPath = path
		return nil
	}
}

// WithDefaultNamespace sets the namespace applied to tool calls that do not
// name one.
func WithDefaultNamespace(namespace string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.DefaultNamespace = namespace
		return nil
	}
}

// WithReadOnlyMode enables or disables read-only mode. In read-only mode
// tool calls that would mutate cluster resources are refused before any
// process is spawned.
func WithReadOnlyMode(enabled bool) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.ReadOnlyMode = enabled
		return nil
	}
}

// WithLogLevel records the effective log level. The logger itself is built
// by the caller; the config keeps the value for introspection.
func WithLogLevel(level string) Option {
	return func(sc *ServerContext) error {
		if sc.config == nil {
			sc.config = NewDefaultConfig()
		}
		sc.config.LogLevel = level
		return nil
	}
}

// WithInstrumentationProvider sets the instrumentation provider. A nil
// provider leaves instrumentation disabled.
func WithInstrumentationProvider(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) error {
		sc.instrumentationProvider = provider
		return nil
	}
}

// WithOutputConfig sets the response bounding limits. The config is
// validated and copied; nil restores the environment-derived defaults.
func WithOutputConfig(cfg *output.Config) Option {
	return func(sc *ServerContext) error {
		if cfg == nil {
			sc.outputConfig = output.ConfigFromEnv()
			return nil
		}
		sc.outputConfig = cfg.Validate()
		return nil
	}
}

// Common errors
var (
	// ErrMissingRunner is returned when a kubectl runner is required but
	// not provided.
	ErrMissingRunner = errors.New("kubectl runner is required")

	// ErrMissingLogger is returned when a logger is required but not provided.
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingConfig is returned when a config is required but not provided.
	ErrMissingConfig = errors.New("config is required")

	// ErrServerShutdown is returned when operations are attempted on a
	// shutdown server.
	ErrServerShutdown = errors.New("server is shutdown")
)
