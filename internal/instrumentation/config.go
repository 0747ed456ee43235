package instrumentation

import (
	"fmt"
	"os"
	"strconv"
)

// Status values for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusUnknown = "unknown"
)

// Exporter names accepted by MetricsExporter and TracingExporter.
const (
	ExporterPrometheus = "prometheus"
	ExporterOTLP       = "otlp"
	ExporterStdout     = "stdout"
	ExporterNone       = "none"
)

// Config controls the OpenTelemetry instrumentation stack. The zero value
// disables everything; DefaultConfig reads the conventional OTEL_* variables
// plus a few specific to this server.
type Config struct {
	// ServiceName and ServiceVersion identify this process in exported
	// telemetry (service.name / service.version resource attributes).
	ServiceName    string
	ServiceVersion string

	// Enabled gates the whole stack. When false, NewProvider returns a
	// disabled provider and every recording call is a no-op.
	Enabled bool

	// MetricsExporter selects where metrics go: "prometheus" (pull),
	// "otlp" (push), or "stdout" (debugging).
	MetricsExporter string

	// TracingExporter selects where spans go: "otlp", "stdout", or
	// "none" to keep tracing off while metrics stay on.
	TracingExporter string

	// OTLPEndpoint is the collector base URL for the otlp exporters,
	// e.g. "http://localhost:4318". OTLPInsecure switches the exporters
	// to plaintext HTTP for local collectors.
	OTLPEndpoint string
	OTLPInsecure bool

	// TraceSamplingRate is the head sampling ratio in [0.0, 1.0].
	TraceSamplingRate float64

	// PrometheusEndpoint is the HTTP path the metrics listener serves.
	PrometheusEndpoint string

	// DetailedLabels adds namespace and resource_type labels to invocation
	// metrics. High cardinality; keep disabled on clusters with many
	// namespaces.
	DetailedLabels bool
}

// DefaultConfig builds a Config from the environment. Unset variables fall
// back to a Prometheus-only setup with tracing off.
func DefaultConfig() Config {
	return Config{
		ServiceName:        envOr("OTEL_SERVICE_NAME", "mcp-kubectl"),
		ServiceVersion:     "unknown",
		Enabled:            envBool("INSTRUMENTATION_ENABLED", false),
		MetricsExporter:    envOr("METRICS_EXPORTER", "prometheus"),
		TracingExporter:    envOr("TRACING_EXPORTER", "none"),
		OTLPEndpoint:       envOr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:       envBool("OTEL_EXPORTER_OTLP_INSECURE", false),
		TraceSamplingRate:  envFloat("OTEL_TRACES_SAMPLER_ARG", 0.1),
		PrometheusEndpoint: envOr("PROMETHEUS_ENDPOINT", "/metrics"),
		DetailedLabels:     envBool("METRICS_DETAILED_LABELS", false),
	}
}

// Validate rejects configurations the provider could not honor.
func (c *Config) Validate() error {
	if c.TraceSamplingRate < 0.0 || c.TraceSamplingRate > 1.0 {
		return fmt.Errorf("trace sampling rate must be between 0.0 and 1.0, got %f", c.TraceSamplingRate)
	}

	switch c.MetricsExporter {
	case "prometheus", "otlp", "stdout":
	default:
		return fmt.Errorf("unsupported metrics exporter: %q", c.MetricsExporter)
	}

	switch c.TracingExporter {
	case "otlp", "stdout", "none", "":
	default:
		return fmt.Errorf("unsupported tracing exporter: %q", c.TracingExporter)
	}

	if (c.MetricsExporter == "otlp" || c.TracingExporter == "otlp") && c.OTLPEndpoint == "" {
		return fmt.Errorf("OTLP endpoint is required when using the otlp exporter")
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envBool treats unparsable values as unset rather than failing startup.
func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
