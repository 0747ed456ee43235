package middleware

import (
	"net/http"
	"regexp"
	"time"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
)

// HTTPMetrics returns middleware that records one request counter and one
// duration sample per request, labelled with method, normalized path, and
// status code. Whether instrumentation is live is decided once at wrap time;
// a nil or disabled provider yields the handler unchanged.
func HTTPMetrics(provider *instrumentation.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if provider == nil || !provider.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			provider.Metrics().RecordHTTPRequest(
				r.Context(),
				r.Method,
				normalizePath(r.URL.Path),
				wrapped.statusCode,
				time.Since(start),
			)
		})
	}
}

// Dynamic path segments that would blow up the path label's cardinality.
// Session identifiers are minted per MCP connection and UUIDs per resource;
// both must collapse to a placeholder before becoming a label value.
var (
	sessionPath    = regexp.MustCompile(`^/mcp/[a-zA-Z0-9_-]{8,64}$`)
	uuidSegment    = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	numericSegment = regexp.MustCompile(`/\d+(/|$)`)
)

// normalizePath collapses per-session and per-resource path segments so the
// metric label set stays bounded. The static endpoints (/mcp, /sse,
// /message, /healthz, /readyz, /metrics) pass through unchanged.
func normalizePath(path string) string {
	if sessionPath.MatchString(path) {
		return "/mcp/:session"
	}
	path = uuidSegment.ReplaceAllString(path, ":uuid")
	path = numericSegment.ReplaceAllString(path, "/:id$1")
	return path
}

// responseWriter captures the status code on its way through so the metric
// can be labelled after the handler runs. The first WriteHeader wins, same
// as net/http's own semantics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.written = true
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying writer for http.ResponseController.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Flush forwards to the underlying writer when it supports streaming. The
// SSE transport requires this.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
