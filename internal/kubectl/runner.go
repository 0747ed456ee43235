package kubectl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes one kubectl invocation and captures its outcome. The
// error return is reserved for launch-time failures (ProcessError); a
// non-zero exit from a process that ran is reported through the Outcome,
// since exit codes carry domain meaning (probes tolerate some of them).
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (Outcome, error)
}

// ExecRunner runs kubectl through os/exec. It spawns exactly one process
// per call, applies no retries and no timeout of its own, and blocks until
// the process exits or ctx is cancelled.
type ExecRunner struct{}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, binary string, args []string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	outcome := Outcome{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ExitCode = exitErr.ExitCode()
			return outcome, nil
		}
		// The process never ran (binary missing, permissions, I/O) or was
		// killed by context cancellation before producing an exit code.
		return outcome, &ProcessError{Cmd: append([]string{binary}, args...), Err: err}
	}

	return outcome, nil
}
