package kubectl

import (
	"context"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// ResolveBinary returns the kubectl path to invoke. An explicit path is
// used verbatim; otherwise the binary is looked up on PATH. A failed lookup
// is a ProcessError since nothing can run without the binary.
func ResolveBinary(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	path, err := exec.LookPath(DefaultBinaryName)
	if err != nil {
		return "", &ProcessError{Cmd: []string{DefaultBinaryName}, Err: err}
	}
	return path, nil
}

// VersionCache memoizes kubectl client version probes per binary path.
// Concurrent callers for the same binary share a single invocation. Health
// checks and the version tool hit this on every request, so the probe must
// not stampede the host with processes.
type VersionCache struct {
	group singleflight.Group

	mu       sync.RWMutex
	versions map[string]string
}

// NewVersionCache returns an empty VersionCache.
func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[string]string)}
}

// ClientVersion returns the first line of `kubectl version --client` for
// binary, probing at most once per path.
func (c *VersionCache) ClientVersion(ctx context.Context, runner Runner, binary string) (string, error) {
	c.mu.RLock()
	cached, ok := c.versions[binary]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	value, err, _ := c.group.Do(binary, func() (interface{}, error) {
		args := []string{"version", "--client"}
		out, err := runner.Run(ctx, binary, args)
		if err != nil {
			return nil, err
		}
		if out.ExitCode != 0 {
			return nil, &ExecutionError{
				Cmd:      append([]string{binary}, args...),
				ExitCode: out.ExitCode,
				Stdout:   out.Stdout,
				Stderr:   out.Stderr,
			}
		}

		version := firstLine(out.Stdout)

		c.mu.Lock()
		c.versions[binary] = version
		c.mu.Unlock()

		return version, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}

// Cached reports whether a version for binary is already memoized.
func (c *VersionCache) Cached(binary string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.versions[binary]
	return ok
}

// Invalidate drops the cached version for binary, forcing the next
// ClientVersion call to probe again. Used when the configured binary path
// changes at runtime.
func (c *VersionCache) Invalidate(binary string) {
	c.mu.Lock()
	delete(c.versions, binary)
	c.mu.Unlock()
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
