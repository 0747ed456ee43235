package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
)

// HealthChecker serves the liveness, readiness and detailed diagnosis
// endpoints that the network transports mount next to the MCP endpoint.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker returns a checker that reports ready until told
// otherwise.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady flips the readiness gate, e.g. to drain traffic before a
// shutdown.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// RegisterHealthEndpoints mounts all three probe endpoints on mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// HealthResponse is the body served by the liveness and readiness probes.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Version string            `json:"version,omitempty"`
}

// DetailedHealthResponse carries the full diagnosis: operational mode,
// uptime, and the state of the kubectl binary the server shells out to.
type DetailedHealthResponse struct {
	Status          string                      `json:"status"`
	Mode            string                      `json:"mode"`
	Version         string                      `json:"version,omitempty"`
	Uptime          string                      `json:"uptime"`
	Kubectl         *KubectlHealthStatus        `json:"kubectl,omitempty"`
	Kubeconfig      *KubeconfigHealthStatus     `json:"kubeconfig,omitempty"`
	Instrumentation *InstrumentationHealthCheck `json:"instrumentation,omitempty"`
}

// KubectlHealthStatus reports whether the kubectl binary can be found and
// what client version it identifies as.
type KubectlHealthStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// KubeconfigHealthStatus reports which kubeconfig and context invocations
// will run against.
type KubeconfigHealthStatus struct {
	Path           string `json:"path,omitempty"`
	CurrentContext string `json:"current_context,omitempty"`
	Error          string `json:"error,omitempty"`
}

// InstrumentationHealthCheck reports whether metrics and tracing are
// wired up.
type InstrumentationHealthCheck struct {
	Enabled         bool   `json:"enabled"`
	MetricsExporter string `json:"metrics_exporter,omitempty"`
	TracingExporter string `json:"tracing_exporter,omitempty"`
}

// LivenessHandler serves /healthz. Answering at all proves the process
// is alive, so this never inspects dependencies.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:  "ok",
			Version: h.version(),
		})
	})
}

// ReadinessHandler serves /readyz. The kubectl binary is checked by
// lookup only; readiness probes fire far too often to fork a process
// per probe.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checks, ok := h.readinessChecks()

		response := HealthResponse{Status: "ok", Checks: checks}
		statusCode := http.StatusOK
		if !ok {
			response.Status = "not ready"
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, response)
	})
}

// readinessChecks runs every readiness gate and reports the per-check
// outcomes together with whether all of them passed.
func (h *HealthChecker) readinessChecks() (map[string]string, bool) {
	ok := true
	checks := map[string]string{"ready": "ok", "shutdown": "ok"}

	if !h.ready.Load() {
		checks["ready"] = "not ready"
		ok = false
	}
	if h.serverContext != nil && h.serverContext.IsShutdown() {
		checks["shutdown"] = "shutting down"
		ok = false
	}
	if h.serverContext != nil {
		if _, err := kubectl.ResolveBinary(h.serverContext.KubectlPath()); err != nil {
			checks["kubectl"] = "binary not found"
			ok = false
		} else {
			checks["kubectl"] = "ok"
		}

		// Disabled instrumentation is informational, never a gate.
		if provider := h.serverContext.InstrumentationProvider(); provider != nil {
			if provider.Enabled() {
				checks["instrumentation"] = "ok"
			} else {
				checks["instrumentation"] = "disabled"
			}
		}
	}

	return checks, ok
}

// DetailedHealthHandler serves /healthz/detailed. Degraded dependencies
// are reported in the body rather than via the status code so operators
// can read the diagnosis; only not-ready and shutdown flip it to 503.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := DetailedHealthResponse{
			Status:  "ok",
			Mode:    h.determineMode(),
			Version: h.version(),
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		}
		if h.serverContext != nil {
			response.Kubectl = h.getKubectlStatus(r)
			response.Kubeconfig = h.getKubeconfigStatus()
			response.Instrumentation = h.getInstrumentationStatus()
		}

		statusCode := http.StatusOK
		switch {
		case !h.ready.Load():
			response.Status = "not ready"
			statusCode = http.StatusServiceUnavailable
		case h.serverContext != nil && h.serverContext.IsShutdown():
			response.Status = "shutting down"
			statusCode = http.StatusServiceUnavailable
		}
		writeJSON(w, statusCode, response)
	})
}

// determineMode reports whether the server accepts mutations.
func (h *HealthChecker) determineMode() string {
	if h.serverContext == nil || h.serverContext.Config() == nil {
		return "unknown"
	}
	if h.serverContext.Config().ReadOnlyMode {
		return "read-only"
	}
	return "read-write"
}

// getKubectlStatus resolves the kubectl binary and probes its client
// version. The probe result is cached, so only the first detailed health
// request after startup (or after a cache invalidation) forks a process.
func (h *HealthChecker) getKubectlStatus(r *http.Request) *KubectlHealthStatus {
	path, err := kubectl.ResolveBinary(h.serverContext.KubectlPath())
	if err != nil {
		return &KubectlHealthStatus{Available: false, Error: err.Error()}
	}

	status := &KubectlHealthStatus{Available: true, Path: path}

	version, err := h.serverContext.Versions().ClientVersion(r.Context(), h.serverContext.Runner(), path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version

	return status
}

// getKubeconfigStatus reports the kubeconfig path in effect and its
// active context, or nil when no kubeconfig resolves at all.
func (h *HealthChecker) getKubeconfigStatus() *KubeconfigHealthStatus {
	path := kubectl.ResolveKubeconfig(h.serverContext.Config().KubeConfigPath)
	if path == "" {
		return nil
	}

	status := &KubeconfigHealthStatus{Path: path}

	current, err := kubectl.CurrentContext(path)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.CurrentContext = current

	return status
}

func (h *HealthChecker) getInstrumentationStatus() *InstrumentationHealthCheck {
	provider := h.serverContext.InstrumentationProvider()
	if provider == nil || !provider.Enabled() {
		return &InstrumentationHealthCheck{Enabled: false}
	}
	cfg := provider.Config()
	return &InstrumentationHealthCheck{
		Enabled:         true,
		MetricsExporter: cfg.MetricsExporter,
		TracingExporter: cfg.TracingExporter,
	}
}

// version returns the server version when the context carries one.
func (h *HealthChecker) version() string {
	if h.serverContext != nil && h.serverContext.Config() != nil {
		return h.serverContext.Config().Version
	}
	return ""
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}
