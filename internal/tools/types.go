package tools

import (
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/tools/output"
)

// ResultPayload is the JSON document lifecycle tools return to MCP clients:
// the classified run outcome plus a truncation notice when the output had to
// be bounded.
type ResultPayload struct {
	// Changed reports whether the run mutated cluster state.
	Changed bool `json:"changed"`

	// Msg is the one-line summary of the run.
	Msg string `json:"msg,omitempty"`

	// Meta holds the run's output lines, or the filter matches when a
	// filter was set. Bounded by the configured output limits.
	Meta []string `json:"meta"`

	// Truncation is set when Meta was cut to fit the output limits.
	Truncation *output.TruncationWarning `json:"truncation,omitempty"`
}

// NewResultPayload converts a run result into the tool response shape,
// bounding the output to the configured limits.
func NewResultPayload(res *kubectl.Result, cfg *output.Config) ResultPayload {
	meta, warning := output.BoundMeta(res.Meta, cfg)
	return ResultPayload{
		Changed:    res.Changed,
		Msg:        res.Msg,
		Meta:       meta,
		Truncation: warning,
	}
}
