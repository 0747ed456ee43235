package server

import (
	"context"
	"sync"
	"time"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/logging"
	"github.com/giantswarm/mcp-kubectl/internal/tools/output"
)

// DefaultShutdownTimeout is the default timeout for graceful shutdown of
// the HTTP transports.
const DefaultShutdownTimeout = 30 * time.Second

// shutdownFlushTimeout bounds the instrumentation flush during Shutdown.
// The lifecycle context is already cancelled at that point, so the flush
// needs its own deadline.
const shutdownFlushTimeout = 5 * time.Second

// ServerContext is the dependency container handed to every tool handler:
// the process runner, logger and configuration, plus the caches and
// instrumentation they share and the lifecycle context they all stop on.
type ServerContext struct {
	runner kubectl.Runner
	logger logging.Logger
	config *Config

	// versions memoizes kubectl client version probes. Health checks and
	// the version tool consult it on every request, so probes must not
	// fork a process each time.
	versions *kubectl.VersionCache

	// instrumentationProvider manages metrics, tracing and audit logging.
	// Nil when instrumentation was never configured.
	instrumentationProvider *instrumentation.Provider

	// outputConfig bounds tool response sizes. Never nil after construction.
	outputConfig *output.Config

	// ctx is cancelled by Shutdown; long-running work derives from it.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards every field above; shutdown latches once Shutdown runs.
	mu       sync.RWMutex
	shutdown bool
}

// NewServerContext creates a new ServerContext with the provided options.
// It establishes a cancellable context for the server lifecycle and applies
// defaults for any dependency not supplied: an os/exec-backed runner, a
// JSON slog logger and the default configuration.
//
// The kubectl binary is deliberately not resolved here. Construction must
// succeed on hosts without kubectl so that health endpoints can report the
// missing binary instead of the process failing to start.
func NewServerContext(ctx context.Context, opts ...Option) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		runner:       kubectl.NewExecRunner(),
		logger:       logging.DefaultLogger(),
		config:       NewDefaultConfig(),
		versions:     kubectl.NewVersionCache(),
		outputConfig: output.ConfigFromEnv(),
		ctx:          serverCtx,
		cancel:       cancel,
	}

	for _, opt := range opts {
		if err := opt(sc); err != nil {
			cancel()
			return nil, err
		}
	}

	if err := sc.validate(); err != nil {
		cancel()
		return nil, err
	}

	return sc, nil
}

// Context returns the server's context for cancellation propagation.
func (sc *ServerContext) Context() context.Context {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ctx
}

// Runner returns the kubectl process runner.
func (sc *ServerContext) Runner() kubectl.Runner {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.runner
}

// Logger returns the structured logger instance.
func (sc *ServerContext) Logger() logging.Logger {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.logger
}

// Config exposes the active configuration.
func (sc *ServerContext) Config() *Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config
}

// Versions returns the kubectl version cache shared by health checks and
// the version tool.
func (sc *ServerContext) Versions() *kubectl.VersionCache {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.versions
}

// InstrumentationProvider returns the instrumentation provider, or nil if
// instrumentation is not configured.
func (sc *ServerContext) InstrumentationProvider() *instrumentation.Provider {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.instrumentationProvider
}

// OutputConfig returns the response bounding limits applied by tool
// handlers.
func (sc *ServerContext) OutputConfig() *output.Config {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.outputConfig
}

// KubectlPath returns the configured kubectl binary path. Empty means the
// binary is looked up on PATH at invocation time.
func (sc *ServerContext) KubectlPath() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.config.KubectlPath
}

// InstrumentedRunner returns the process runner, decorated with
// per-invocation metrics and spans when instrumentation is enabled. Tool
// handlers that invoke kubectl outside a lifecycle manager go through this
// so every spawned process is observed the same way.
func (sc *ServerContext) InstrumentedRunner() kubectl.Runner {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return newInstrumentedRunner(sc.runner, sc.instrumentationProvider)
}

// ManagerOptions returns lifecycle manager options derived from the
// server's dependencies. Tool handlers construct one manager per call from
// these, so a runner or binary path swapped in for tests flows through to
// every invocation. With instrumentation enabled the runner is decorated
// with per-invocation metrics and spans.
func (sc *ServerContext) ManagerOptions() []kubectl.ManagerOption {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	opts := []kubectl.ManagerOption{
		kubectl.WithRunner(newInstrumentedRunner(sc.runner, sc.instrumentationProvider)),
		kubectl.WithLogger(sc.logger),
	}
	if sc.config.KubectlPath != "" {
		opts = append(opts, kubectl.WithBinaryPath(sc.config.KubectlPath))
	}
	return opts
}

// Shutdown gracefully shuts down the server context, cancelling the internal
// context and flushing instrumentation. It is safe to call multiple times.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()

	if sc.instrumentationProvider != nil {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
		defer flushCancel()
		if err := sc.instrumentationProvider.Shutdown(flushCtx); err != nil {
			return err
		}
	}

	return nil
}

// IsShutdown reports whether Shutdown has run.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.shutdown
}

// validate ensures all required dependencies are present.
func (sc *ServerContext) validate() error {
	if sc.runner == nil {
		return ErrMissingRunner
	}
	if sc.logger == nil {
		return ErrMissingLogger
	}
	if sc.config == nil {
		return ErrMissingConfig
	}
	return nil
}

// Config holds server configuration.
type Config struct {
	// Identity reported during the MCP handshake.
	ServerName string `json:"serverName"`
	Version    string `json:"version"`

	// KubectlPath is an explicit kubectl binary path. Empty means the
	// binary is found on PATH.
	KubectlPath string `json:"kubectlPath"`

	// KubeConfigPath overrides kubeconfig discovery for every invocation.
	// Empty defers to KUBECONFIG and the home directory default.
	KubeConfigPath string `json:"kubeConfigPath"`

	// DefaultNamespace is applied to tool calls that do not name one.
	// Empty leaves namespace selection to the kubeconfig context.
	DefaultNamespace string `json:"defaultNamespace"`

	// ReadOnlyMode refuses tool calls whose state would mutate cluster
	// resources. Existence probes and read verbs still run.
	ReadOnlyMode bool `json:"readOnlyMode"`

	// Log level and format the process was started with.
	LogLevel  string `json:"logLevel"`
	LogFormat string `json:"logFormat"`
}

// NewDefaultConfig returns a Config with sensible defaults.
func NewDefaultConfig() *Config {
	return &Config{
		ServerName:   "mcp-kubectl",
		Version:      "dev",
		ReadOnlyMode: false,
		LogLevel:     "info",
		LogFormat:    "json",
	}
}

// Clone creates a copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
