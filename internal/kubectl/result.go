package kubectl

// Result is the externally visible outcome of one lifecycle run. It is
// initialized empty by NewResult and mutated in place during classification;
// a no-op run returns it untouched apart from any probe output.
type Result struct {
	// Changed reports whether the run mutated cluster state, per the
	// changed-word heuristic over kubectl's stdout.
	Changed bool `json:"changed"`

	// Meta is the classified invocation output: regex filter matches when a
	// filter is configured, raw stdout lines otherwise.
	Meta []string `json:"meta"`

	// Msg is a human-readable summary naming the verb that ran. Empty when
	// no invocation produced classified output.
	Msg string `json:"msg"`
}

// NewResult returns an empty Result. Meta is allocated so the record
// marshals as [] rather than null.
func NewResult() *Result {
	return &Result{Meta: []string{}}
}

// Outcome captures one finished process invocation: exit code plus raw
// captured output. It exists only between invocation and classification.
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
}
