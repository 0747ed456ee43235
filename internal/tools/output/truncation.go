package output

import (
	"fmt"
)

// BoundMeta truncates run output to the configured limits: first by line
// count, then by a byte budget across the kept lines. A single line that
// alone exceeds the byte budget is cut rather than dropped so part of it
// survives. Returns the bounded slice and a warning when anything was cut.
//
// The input slice is never mutated.
func BoundMeta(meta []string, cfg *Config) ([]string, *TruncationWarning) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Validate()

	total := len(meta)
	if total == 0 {
		return meta, nil
	}

	keep := total
	if keep > cfg.MaxMetaLines {
		keep = cfg.MaxMetaLines
	}

	bounded := make([]string, 0, keep)
	budget := cfg.MaxResponseBytes
	used := 0
	clipped := false
	for _, line := range meta[:keep] {
		if used+len(line) > budget {
			if remaining := budget - used; remaining > 0 {
				bounded = append(bounded, line[:remaining])
			}
			clipped = true
			break
		}
		bounded = append(bounded, line)
		used += len(line) + 1
	}

	if !clipped && len(bounded) == total {
		return meta, nil
	}

	warning := &TruncationWarning{
		Shown:   len(bounded),
		Total:   total,
		Message: fmt.Sprintf("Output truncated. Showing %d of %d lines. Use filter or label to narrow the output.", len(bounded), total),
	}
	if total > cfg.MaxMetaLines*2 {
		warning.SuggestFilters = []string{
			"Use filter to keep only lines matching a regular expression",
			"Use label to select a subset of resources",
			"Use namespace to limit the operation to one namespace",
		}
	}

	return bounded, warning
}

// BoundText applies the byte budget to a single string. Returns the bounded
// string and whether it was cut.
func BoundText(s string, cfg *Config) (string, bool) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.Validate()

	if len(s) <= cfg.MaxResponseBytes {
		return s, false
	}
	return s[:cfg.MaxResponseBytes], true
}
