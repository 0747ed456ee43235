package output

import (
	"os"
	"strconv"
)

// Defaults and ceilings for response shaping. The defaults keep a kubectl
// listing of a busy namespace inside a model context window; the absolute
// caps exist so an operator override cannot balloon a single tool result
// past what the transport should carry.
const (
	// DefaultMaxMetaLines bounds how many output lines a result keeps.
	DefaultMaxMetaLines = 200

	// DefaultMaxResponseBytes bounds the serialized result payload (512KB).
	DefaultMaxResponseBytes = 512 * 1024

	// AbsoluteMaxMetaLines is the ceiling for operator-configured line limits.
	AbsoluteMaxMetaLines = 5000

	// AbsoluteMaxResponseBytes is the ceiling for operator-configured byte
	// limits (2MB).
	AbsoluteMaxResponseBytes = 2 * 1024 * 1024
)

// Environment variables honored by ConfigFromEnv.
const (
	EnvMaxMetaLines     = "MCP_KUBECTL_MAX_META_LINES"
	EnvMaxResponseBytes = "MCP_KUBECTL_MAX_RESPONSE_BYTES"
)

// Config carries the output limits applied to tool results.
type Config struct {
	// MaxMetaLines limits how many lines of kubectl output are kept in the
	// meta field of a result.
	MaxMetaLines int `json:"maxMetaLines" yaml:"maxMetaLines"`

	// MaxResponseBytes limits the total serialized size of a result.
	MaxResponseBytes int `json:"maxResponseBytes" yaml:"maxResponseBytes"`
}

// DefaultConfig returns a Config with the built-in limits.
func DefaultConfig() *Config {
	return &Config{
		MaxMetaLines:     DefaultMaxMetaLines,
		MaxResponseBytes: DefaultMaxResponseBytes,
	}
}

// ConfigFromEnv builds a Config from the defaults plus any environment
// overrides. Unparseable values are ignored rather than failing startup;
// the returned config is already validated.
func ConfigFromEnv() *Config {
	cfg := DefaultConfig()

	if raw := os.Getenv(EnvMaxMetaLines); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.MaxMetaLines = n
		}
	}
	if raw := os.Getenv(EnvMaxResponseBytes); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			cfg.MaxResponseBytes = n
		}
	}

	return cfg.Validate()
}

// Validate returns a copy of the config with every limit forced into its
// allowed range: non-positive values fall back to the default, values above
// the absolute cap are clamped to it. The receiver is never mutated.
func (c *Config) Validate() *Config {
	return &Config{
		MaxMetaLines:     clampLimit(c.MaxMetaLines, DefaultMaxMetaLines, AbsoluteMaxMetaLines),
		MaxResponseBytes: clampLimit(c.MaxResponseBytes, DefaultMaxResponseBytes, AbsoluteMaxResponseBytes),
	}
}

func clampLimit(value, fallback, ceiling int) int {
	switch {
	case value <= 0:
		return fallback
	case value > ceiling:
		return ceiling
	default:
		return value
	}
}

// Clone returns an independent copy of the config. Cloning nil yields nil.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// TruncationWarning describes output that was cut to stay inside the
// configured limits, so callers can tell the user what was dropped and how
// to narrow the query.
type TruncationWarning struct {
	// Shown is the number of lines kept.
	Shown int `json:"shown"`

	// Total is the number of lines kubectl produced.
	Total int `json:"total"`

	// Message explains the truncation in one line.
	Message string `json:"message"`

	// SuggestFilters lists argument names the caller could set to narrow
	// the output, such as a namespace or label selector.
	SuggestFilters []string `json:"suggestFilters,omitempty"`
}
