package kubectl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestResolveBinary_Explicit verifies that an explicit path short-circuits
// PATH lookup.
func TestResolveBinary_Explicit(t *testing.T) {
	path, err := ResolveBinary("/opt/tools/kubectl-1.31")
	require.NoError(t, err)
	assert.Equal(t, "/opt/tools/kubectl-1.31", path)
}

// TestVersionCache verifies that version probes run once per binary path and
// that Invalidate forces a fresh probe.
func TestVersionCache(t *testing.T) {
	runner := &scriptedRunner{steps: []scriptedStep{
		{out: Outcome{Stdout: "Client Version: v1.31.2\nKustomize Version: v5.4.2\n"}},
		{out: Outcome{Stdout: "Client Version: v1.32.0\n"}},
	}}
	cache := NewVersionCache()
	ctx := context.Background()

	version, err := cache.ClientVersion(ctx, runner, testBinary)
	require.NoError(t, err)
	assert.Equal(t, "Client Version: v1.31.2", version)
	require.Len(t, runner.calls, 1)
	assert.Equal(t, []string{testBinary, "version", "--client"}, runner.calls[0])

	// Cache hit: no new process.
	version, err = cache.ClientVersion(ctx, runner, testBinary)
	require.NoError(t, err)
	assert.Equal(t, "Client Version: v1.31.2", version)
	assert.Len(t, runner.calls, 1)

	cache.Invalidate(testBinary)

	version, err = cache.ClientVersion(ctx, runner, testBinary)
	require.NoError(t, err)
	assert.Equal(t, "Client Version: v1.32.0", version)
	assert.Len(t, runner.calls, 2)
}

// TestVersionCache_Cached verifies hit reporting across probe and
// invalidation.
func TestVersionCache_Cached(t *testing.T) {
	runner := &scriptedRunner{steps: []scriptedStep{
		{out: Outcome{Stdout: "Client Version: v1.31.2\n"}},
	}}
	cache := NewVersionCache()

	assert.False(t, cache.Cached(testBinary))

	_, err := cache.ClientVersion(context.Background(), runner, testBinary)
	require.NoError(t, err)
	assert.True(t, cache.Cached(testBinary))

	cache.Invalidate(testBinary)
	assert.False(t, cache.Cached(testBinary))
}

// TestVersionCache_ProbeFailure verifies that failed probes are not cached.
func TestVersionCache_ProbeFailure(t *testing.T) {
	runner := &scriptedRunner{steps: []scriptedStep{
		{out: Outcome{ExitCode: 127, Stderr: "kubectl: command not found"}},
		{out: Outcome{Stdout: "Client Version: v1.31.2\n"}},
	}}
	cache := NewVersionCache()
	ctx := context.Background()

	_, err := cache.ClientVersion(ctx, runner, testBinary)
	require.Error(t, err)
	assert.True(t, IsExecutionError(err))

	version, err := cache.ClientVersion(ctx, runner, testBinary)
	require.NoError(t, err)
	assert.Equal(t, "Client Version: v1.31.2", version)
	assert.Len(t, runner.calls, 2)
}

// TestFirstLine verifies leading-whitespace and empty-input handling.
func TestFirstLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "single line", input: "v1.31.2", expected: "v1.31.2"},
		{name: "multi line", input: "v1.31.2\nv5.4.2\n", expected: "v1.31.2"},
		{name: "leading blank lines", input: "\n\n  v1.31.2  \n", expected: "v1.31.2"},
		{name: "empty", input: "", expected: ""},
		{name: "only whitespace", input: "  \n\t\n", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, firstLine(tt.input))
		})
	}
}
