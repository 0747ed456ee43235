// Package output bounds kubectl output for MCP tool responses.
//
// A single run can produce far more stdout than an LLM context window can
// absorb, so tool responses carry a bounded view of the output: at most
// [Config.MaxMetaLines] lines and [Config.MaxResponseBytes] bytes, with a
// [TruncationWarning] describing what was cut.
//
// Limits come from [DefaultConfig] or, for operator overrides, from the
// MCP_KUBECTL_MAX_META_LINES and MCP_KUBECTL_MAX_RESPONSE_BYTES environment
// variables via [ConfigFromEnv]. Out-of-range values are capped at absolute
// maximums.
//
//	cfg := output.ConfigFromEnv()
//	meta, warning := output.BoundMeta(lines, cfg)
package output
