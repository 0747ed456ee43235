package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeHost(t *testing.T) {
	cases := map[string]string{
		"": "<empty>",
		"https://api.cluster.example.com:6443": "https://api.cluster.example.com:6443",
		"https://192.168.1.100:6443":           "https://<redacted-ip>:6443",
		"192.168.1.100":                        "<redacted-ip>",
		"10.0.0.1:6443":                        "<redacted-ip>:6443",
		"https://[2001:db8::1]:6443":           "https://<redacted-ip>:6443",
		"2001:db8::1":                          "<redacted-ip>",
		"[2001:db8:85a3::8a2e:370:7334]:6443":  "<redacted-ip>:6443",
		"2001:0db8:85a3:0000:0000:8a2e:0370:7334": "<redacted-ip>",
	}

	for host, want := range cases {
		assert.Equal(t, want, SanitizeHost(host), "SanitizeHost(%q)", host)
	}
}

// Every attribute helper must emit its documented key; the value check uses
// slog.Value's own rendering, which covers strings, ints, bools, and
// durations alike.
func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		attr      slog.Attr
		wantKey   string
		wantValue string
	}{
		{Operation("run.apply"), KeyOperation, "run.apply"},
		{Verb("apply"), KeyVerb, "apply"},
		{State("present"), KeyState, "present"},
		{Namespace("default"), KeyNamespace, "default"},
		{ResourceType("pods"), KeyResourceType, "pods"},
		{ResourceName("my-pod"), KeyResourceName, "my-pod"},
		{KubeContext("prod-cluster"), KeyContext, "prod-cluster"},
		{Binary("/usr/local/bin/kubectl"), KeyBinary, "/usr/local/bin/kubectl"},
		{ExitCode(2), KeyExitCode, "2"},
		{Changed(true), KeyChanged, "true"},
		{Duration(1500 * time.Millisecond), KeyDuration, "1.5s"},
		{Status(StatusSuccess), KeyStatus, StatusSuccess},
		{Transport("stdio"), KeyTransport, "stdio"},
		{Err(errors.New("boom")), KeyError, "boom"},
		{Err(nil), KeyError, ""},
		{SanitizedErr(nil), KeyError, ""},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.wantKey, tc.attr.Key)
		assert.Equal(t, tc.wantValue, tc.attr.Value.String(), "value under key %s", tc.wantKey)
	}
}

func TestSanitizedErrRedactsAddresses(t *testing.T) {
	attr := SanitizedErr(errors.New("The connection to the server 192.168.1.100:6443 was refused"))

	msg := attr.Value.String()
	assert.NotContains(t, msg, "192.168.1.100")
	assert.Contains(t, msg, "<redacted-ip>")
	assert.Contains(t, msg, "was refused", "non-address text must survive")

	// Hostnames are not sensitive and stay readable.
	attr = SanitizedErr(errors.New("failed to connect to https://api.cluster.example.com:6443"))
	assert.Contains(t, attr.Value.String(), "api.cluster.example.com")
}

func TestHostAttributeSanitizes(t *testing.T) {
	attr := Host("https://192.168.1.1:6443")

	assert.Equal(t, KeyHost, attr.Key)
	assert.NotContains(t, attr.Value.String(), "192.168")
}

// logLine captures one JSON log record emitted through the given build
// function and decodes it for field-level assertions.
func logLine(t *testing.T, build func(*slog.Logger) *slog.Logger) map[string]any {
	t.Helper()

	var buf bytes.Buffer
	logger := build(slog.New(slog.NewJSONHandler(&buf, nil)))
	logger.Info("test message")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	return record
}

func TestContextualLoggers(t *testing.T) {
	t.Run("WithOperation", func(t *testing.T) {
		record := logLine(t, func(l *slog.Logger) *slog.Logger {
			return WithOperation(l, "run.apply")
		})
		assert.Equal(t, "run.apply", record[KeyOperation])
	})

	t.Run("WithTool", func(t *testing.T) {
		record := logLine(t, func(l *slog.Logger) *slog.Logger {
			return WithTool(l, "kubectl_present")
		})
		assert.Equal(t, "kubectl_present", record[KeyTool])
	})

	t.Run("WithKubeContext", func(t *testing.T) {
		record := logLine(t, func(l *slog.Logger) *slog.Logger {
			return WithKubeContext(l, "prod-cluster")
		})
		assert.Equal(t, "prod-cluster", record[KeyContext])
	})
}
