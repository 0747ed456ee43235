package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
)

// DefaultMetricsAddr is the default listen address for the metrics server.
const DefaultMetricsAddr = ":9090"

// MetricsServerConfig configures the standalone metrics HTTP server.
type MetricsServerConfig struct {
	// Addr is the listen address. Empty means DefaultMetricsAddr.
	Addr string

	// InstrumentationProvider supplies the Prometheus registry whose
	// metrics the server exposes.
	InstrumentationProvider *instrumentation.Provider
}

// MetricsServer exposes Prometheus metrics over HTTP on its own listener,
// separate from the MCP transport, so scrapes never contend with tool
// traffic and stdio deployments can still be scraped.
type MetricsServer struct {
	addr   string
	server *http.Server
}

// NewMetricsServer creates a metrics server for the given configuration.
// The provider must have the prometheus exporter configured; the server
// serves that provider's registry, not the global one.
func NewMetricsServer(config MetricsServerConfig) (*MetricsServer, error) {
	if config.InstrumentationProvider == nil {
		return nil, errors.New("instrumentation provider is required")
	}

	gatherer := config.InstrumentationProvider.PrometheusGatherer()
	if gatherer == nil {
		return nil, errors.New("metrics server requires the prometheus exporter")
	}

	addr := config.Addr
	if addr == "" {
		addr = DefaultMetricsAddr
	}

	mux := http.NewServeMux()
	mux.Handle(
		config.InstrumentationProvider.PrometheusEndpoint(),
		promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		addr: addr,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Addr returns the address the server listens on.
func (ms *MetricsServer) Addr() string {
	return ms.addr
}

// Start begins serving and blocks until the server stops. It returns
// http.ErrServerClosed after a clean Shutdown.
func (ms *MetricsServer) Start() error {
	return ms.server.ListenAndServe()
}

// Shutdown gracefully stops the server. Calling it before Start is a no-op.
func (ms *MetricsServer) Shutdown(ctx context.Context) error {
	return ms.server.Shutdown(ctx)
}
