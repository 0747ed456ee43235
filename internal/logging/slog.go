package logging

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Attribute keys shared by every package, so log queries can rely on a
// single spelling.
const (
	KeyOperation    = "operation"
	KeyVerb         = "verb"
	KeyState        = "state"
	KeyNamespace    = "namespace"
	KeyResourceType = "resource_type"
	KeyResourceName = "resource_name"
	KeyContext      = "context"
	KeyBinary       = "binary"
	KeyExitCode     = "exit_code"
	KeyChanged      = "changed"
	KeyDuration     = "duration"
	KeyStatus       = "status"
	KeyError        = "error"
	KeyHost         = "host"
	KeyTool         = "tool"
	KeyTransport    = "transport"
)

// Values carried by KeyStatus.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// WithOperation binds the operation attribute to every record the returned
// logger emits.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithTool binds the MCP tool name to the returned logger.
func WithTool(logger *slog.Logger, tool string) *slog.Logger {
	return logger.With(slog.String(KeyTool, tool))
}

// WithKubeContext returns a logger with the kubeconfig context attribute set.
func WithKubeContext(logger *slog.Logger, context string) *slog.Logger {
	return logger.With(slog.String(KeyContext, context))
}

// Operation names the unit of work a record belongs to.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Verb returns a slog attribute for the kubectl verb.
func Verb(verb string) slog.Attr {
	return slog.String(KeyVerb, verb)
}

// State returns a slog attribute for the requested lifecycle state.
func State(state string) slog.Attr {
	return slog.String(KeyState, state)
}

// Namespace carries the Kubernetes namespace a record concerns.
func Namespace(ns string) slog.Attr {
	return slog.String(KeyNamespace, ns)
}

// ResourceType carries the resource kind, such as "deployment".
func ResourceType(rt string) slog.Attr {
	return slog.String(KeyResourceType, rt)
}

// ResourceName carries the object name of the resource acted on.
func ResourceName(name string) slog.Attr {
	return slog.String(KeyResourceName, name)
}

// KubeContext returns a slog attribute for the kubeconfig context name.
func KubeContext(name string) slog.Attr {
	return slog.String(KeyContext, name)
}

// Binary returns a slog attribute for the kubectl binary path.
func Binary(path string) slog.Attr {
	return slog.String(KeyBinary, path)
}

// ExitCode returns a slog attribute for a process exit code.
func ExitCode(code int) slog.Attr {
	return slog.Int(KeyExitCode, code)
}

// Changed returns a slog attribute reporting whether a run mutated state.
func Changed(changed bool) slog.Attr {
	return slog.Bool(KeyChanged, changed)
}

// Duration returns a slog attribute for an elapsed duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration(KeyDuration, d)
}

// Status carries one of the Status* values.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Transport returns a slog attribute for the serving transport.
func Transport(transport string) slog.Attr {
	return slog.String(KeyTransport, transport)
}

// Err records an error's message. A nil error yields an empty value rather
// than being dropped, keeping record shapes stable.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}

// SanitizedErr returns a slog attribute for an error with IP addresses
// redacted. Use it when logging errors that may embed API server addresses,
// which kubectl's stderr frequently does.
func SanitizedErr(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, SanitizeHost(err.Error()))
}

// Host records a host string after passing it through SanitizeHost.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, SanitizeHost(host))
}

var (
	ipv4Pattern = regexp.MustCompile(`\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

	// Covers full, compressed, and bracketed IPv6 forms; the bracket
	// variant is what URLs carry ("[2001:db8::1]:6443").
	ipv6Pattern = regexp.MustCompile(`\[?([0-9a-fA-F]{0,4}:){2,7}[0-9a-fA-F]{0,4}\]?`)
)

func redactIPs(s string) string {
	return ipv6Pattern.ReplaceAllString(
		ipv4Pattern.ReplaceAllString(s, "<redacted-ip>"),
		"<redacted-ip>")
}

// SanitizeHost redacts IPv4 and IPv6 addresses in a host string or URL,
// keeping network topology out of logs. Hostnames pass through untouched:
// "https://10.0.0.7:6443" becomes "https://<redacted-ip>:6443" while
// "https://api.cluster.example.com:6443" stays as it is. The empty string
// maps to "<empty>" so a missing host is still visible in the log line.
func SanitizeHost(host string) string {
	if host == "" {
		return "<empty>"
	}

	// Bare hosts and free-form text get redacted in place.
	if !strings.Contains(host, "://") {
		return redactIPs(host)
	}

	parsed, err := url.Parse(host)
	if err != nil {
		return redactIPs(host)
	}

	// Only the host portion is rewritten; paths and queries that merely
	// look numeric stay intact.
	if redacted := redactIPs(parsed.Host); redacted != parsed.Host {
		parsed.Host = redacted
		return parsed.String()
	}

	return host
}
