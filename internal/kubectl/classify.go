package kubectl

import (
	"fmt"
	"regexp"
	"strings"
)

// classifyOptions carries everything classification needs besides the raw
// Outcome: the verb that ran (for the summary message), the full command
// line (for diagnostics), the optional stdout filter, and the two exit-code
// tolerance modes.
type classifyOptions struct {
	verb string
	cmd  []string

	// filter narrows meta to ordered regex matches instead of raw lines.
	filter *regexp.Regexp

	// existsTolerant treats a trailing "not found" on stderr as a valid
	// empty result. Used by existence probes.
	existsTolerant bool

	// dirMode tolerates any non-zero exit: a manifest directory may contain
	// files kubectl cannot parse, which is not itself a failure signal.
	dirMode bool
}

// classify interprets one Outcome into res, mutating it in place.
//
// A non-zero exit fails with ExecutionError unless a tolerance applies:
// exists-tolerant runs accept a "not found" stderr as an empty result (res
// is left untouched), and directory mode accepts any exit. Tolerated and
// zero exits are classified: meta from the filter or line-split stdout, the
// changed heuristic over the raw stdout tokens, and the summary message.
func classify(res *Result, out Outcome, opts classifyOptions) error {
	if out.ExitCode != 0 {
		if opts.existsTolerant && stderrNotFound(out.Stderr) {
			return nil
		}
		if !opts.dirMode {
			return &ExecutionError{
				Cmd:      opts.cmd,
				ExitCode: out.ExitCode,
				Stdout:   out.Stdout,
				Stderr:   out.Stderr,
			}
		}
	}

	if opts.filter != nil {
		matches := opts.filter.FindAllString(out.Stdout, -1)
		if matches == nil {
			matches = []string{}
		}
		res.Meta = matches
	} else {
		res.Meta = splitLines(out.Stdout)
	}

	if len(res.Meta) > 0 && containsChangedWord(out.Stdout) {
		res.Changed = true
	}
	res.Msg = fmt.Sprintf("successfully ran kubectl (%s) command", opts.verb)

	return nil
}

// stderrNotFound reports whether the last two whitespace-separated tokens of
// stderr are exactly "not found", kubectl's shape for a missing resource
// (e.g. `Error from server (NotFound): pods "nginx" not found`).
func stderrNotFound(stderr string) bool {
	fields := strings.Fields(stderr)
	if len(fields) < 2 {
		return false
	}
	return fields[len(fields)-2] == "not" && fields[len(fields)-1] == "found"
}

// containsChangedWord reports whether any whitespace token of stdout
// contains one of the changed-word vocabulary entries. Substring matching is
// deliberate and documented: "unmodified" trips the "modified" entry.
func containsChangedWord(stdout string) bool {
	for _, token := range strings.Fields(stdout) {
		for _, word := range changedWords {
			if strings.Contains(token, word) {
				return true
			}
		}
	}
	return false
}

// splitLines splits stdout into lines without a phantom trailing entry for
// the final newline. Empty interior lines are preserved.
func splitLines(s string) []string {
	if s == "" {
		return []string{}
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}
