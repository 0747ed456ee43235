package middleware

import (
	"net/http"
)

// fixedSecurityHeaders are set on every response. The transports only
// ever serve JSON-RPC, SSE streams and plain-text health output, never
// HTML, so the strictest cross-origin and framing values are safe.
var fixedSecurityHeaders = map[string]string{
	"X-Content-Type-Options":       "nosniff",
	"X-Frame-Options":              "DENY",
	"X-XSS-Protection":             "1; mode=block",
	"Referrer-Policy":              "strict-origin-when-cross-origin",
	"Content-Security-Policy":      "default-src 'self'; frame-ancestors 'none'; base-uri 'self'; form-action 'self'",
	"Permissions-Policy":           "geolocation=(), microphone=(), camera=(), payment=(), usb=(), magnetometer=(), gyroscope=()",
	"Cross-Origin-Opener-Policy":   "same-origin",
	"Cross-Origin-Embedder-Policy": "require-corp",
	"Cross-Origin-Resource-Policy": "same-origin",
}

// SecurityHeaders stamps fixedSecurityHeaders onto each response.
// HSTS is added when the connection itself is TLS, or unconditionally
// when enableHSTS is set for deployments behind a TLS-terminating
// reverse proxy where r.TLS is always nil.
func SecurityHeaders(enableHSTS bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for name, value := range fixedSecurityHeaders {
				w.Header().Set(name, value)
			}
			if r.TLS != nil || enableHSTS {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// MaxRequestSize caps the request body via http.MaxBytesReader. Tool
// calls can carry inline manifests, so the limit must leave room for
// large YAML payloads while still bounding what one request can make
// the server buffer. Zero or negative disables the cap.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 && r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
