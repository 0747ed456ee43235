package kubectl

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassify_Success verifies line-split meta, the changed heuristic, and
// the summary message on a clean exit.
func TestClassify_Success(t *testing.T) {
	res := NewResult()
	out := Outcome{
		ExitCode: 0,
		Stdout:   "replicationcontroller \"nginx\" created\n",
	}

	err := classify(res, out, classifyOptions{verb: "create", cmd: []string{"kubectl", "create"}})
	require.NoError(t, err)

	assert.Equal(t, []string{`replicationcontroller "nginx" created`}, res.Meta)
	assert.True(t, res.Changed)
	assert.Equal(t, "successfully ran kubectl (create) command", res.Msg)
}

// TestClassify_ChangedVocabulary exercises the changed-word heuristic,
// including its documented false positive on "unmodified".
func TestClassify_ChangedVocabulary(t *testing.T) {
	tests := []struct {
		name    string
		stdout  string
		changed bool
	}{
		{"created", "pod \"nginx\" created\n", true},
		{"deleted", "pod \"nginx\" deleted\n", true},
		{"labeled", "pod \"nginx\" labeled\n", true},
		{"configured via modified", "deployment \"web\" modified\n", true},
		{"unmodified counts as modified", "deployment \"web\" unmodified\n", true},
		{"plain get output", "nginx 1/1 Running 0 3d\n", false},
		{"unchanged", "service \"web\" unchanged\n", false},
		{"create without trailing d", "use create to make one\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewResult()
			err := classify(res, Outcome{Stdout: tt.stdout}, classifyOptions{verb: "apply"})
			require.NoError(t, err)
			assert.Equal(t, tt.changed, res.Changed)
		})
	}
}

// TestClassify_ChangedRequiresMeta verifies that changed stays false when
// classification yields no meta, even if stdout contains a changed word.
func TestClassify_ChangedRequiresMeta(t *testing.T) {
	res := NewResult()
	filter := regexp.MustCompile(`nomatch-\d+`)
	out := Outcome{Stdout: "pod \"nginx\" created\n"}

	err := classify(res, out, classifyOptions{verb: "apply", filter: filter})
	require.NoError(t, err)

	assert.Empty(t, res.Meta)
	assert.False(t, res.Changed)
}

// TestClassify_Filter verifies that a configured filter replaces line
// splitting with ordered regex matches.
func TestClassify_Filter(t *testing.T) {
	res := NewResult()
	filter := regexp.MustCompile(`pod/\S+`)
	out := Outcome{
		ExitCode: 0,
		Stdout:   "pod/nginx created\npod/redis created\nservice/web unchanged\n",
	}

	err := classify(res, out, classifyOptions{verb: "apply", filter: filter})
	require.NoError(t, err)

	assert.Equal(t, []string{"pod/nginx", "pod/redis"}, res.Meta)
	assert.True(t, res.Changed)
	assert.Equal(t, "successfully ran kubectl (apply) command", res.Msg)
}

// TestClassify_NotFoundTolerated verifies the exists-tolerant carve-out: a
// non-zero exit whose stderr ends in "not found" is an empty result, not an
// error, and leaves the record untouched.
func TestClassify_NotFoundTolerated(t *testing.T) {
	res := NewResult()
	out := Outcome{
		ExitCode: 1,
		Stderr:   `Error from server (NotFound): pods "nginx" not found`,
	}

	err := classify(res, out, classifyOptions{verb: "get", existsTolerant: true})
	require.NoError(t, err)

	assert.Empty(t, res.Meta)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Msg)
}

// TestClassify_ExistsTolerantHardError verifies that exists-tolerant mode
// swallows only "not found": any other non-zero exit is still fatal.
func TestClassify_ExistsTolerantHardError(t *testing.T) {
	res := NewResult()
	out := Outcome{
		ExitCode: 1,
		Stderr:   "Unable to connect to the server: dial tcp: connection refused",
	}

	err := classify(res, out, classifyOptions{
		verb:           "get",
		cmd:            []string{"kubectl", "get", "pods"},
		existsTolerant: true,
	})

	require.Error(t, err)
	assert.True(t, IsExecutionError(err))
}

// TestClassify_ExecutionError verifies the diagnostic payload of a plain
// non-zero exit.
func TestClassify_ExecutionError(t *testing.T) {
	res := NewResult()
	out := Outcome{
		ExitCode: 2,
		Stdout:   "partial output",
		Stderr:   "error: unknown flag",
	}

	err := classify(res, out, classifyOptions{
		verb: "apply",
		cmd:  []string{"kubectl", "apply", "--filename=x.yml"},
	})

	require.Error(t, err)
	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, []string{"kubectl", "apply", "--filename=x.yml"}, execErr.Cmd)
	assert.Equal(t, 2, execErr.ExitCode)
	assert.Equal(t, "partial output", execErr.Stdout)
	assert.Equal(t, "error: unknown flag", execErr.Stderr)
	assert.Contains(t, execErr.Error(), "(rc=2)")
	assert.Contains(t, execErr.Error(), "kubectl apply --filename=x.yml")
}

// TestClassify_DirModeToleratesFailure verifies directory mode: manifest
// directories may contain files kubectl cannot parse, so non-zero exits are
// classified instead of failing.
func TestClassify_DirModeToleratesFailure(t *testing.T) {
	res := NewResult()
	out := Outcome{
		ExitCode: 1,
		Stdout:   "pod \"nginx\" created\n",
		Stderr:   "error: unable to decode README.md",
	}

	err := classify(res, out, classifyOptions{verb: "apply", dirMode: true})
	require.NoError(t, err)

	assert.Equal(t, []string{`pod "nginx" created`}, res.Meta)
	assert.True(t, res.Changed)
}

// TestStderrNotFound covers the trailing-token test against realistic
// kubectl stderr shapes.
func TestStderrNotFound(t *testing.T) {
	tests := []struct {
		name     string
		stderr   string
		notFound bool
	}{
		{"server not found error", `Error from server (NotFound): pods "nginx" not found`, true},
		{"trailing newline", "pods \"nginx\" not found\n", true},
		{"other error", "connection refused", false},
		{"empty", "", false},
		{"single token", "found", false},
		{"not found mid-sentence", "not found in cache, retrying", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, stderrNotFound(tt.stderr))
		})
	}
}

// TestSplitLines verifies line splitting matches the classified-output
// contract: no phantom trailing entry, interior blanks preserved.
func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		expected []string
	}{
		{"empty", "", []string{}},
		{"single line no newline", "one", []string{"one"}},
		{"single line with newline", "one\n", []string{"one"}},
		{"multiple lines", "one\ntwo\n", []string{"one", "two"}},
		{"interior blank preserved", "one\n\ntwo\n", []string{"one", "", "two"}},
		{"windows endings", "one\r\ntwo\r\n", []string{"one", "two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, splitLines(tt.in))
		})
	}
}
