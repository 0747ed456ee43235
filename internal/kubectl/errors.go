package kubectl

import (
	"errors"
	"fmt"
	"strings"
)

// ConfigError reports an invalid option combination: neither resource nor
// filename given, an unsupported state, or removal requested through the
// verb instead of StateAbsent.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// ProcessError reports that the kubectl binary could not be launched or an
// I/O failure occurred communicating with it. Cmd is the full command line
// including the binary.
type ProcessError struct {
	Cmd []string
	Err error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("error running kubectl (%s) command: %v", strings.Join(e.Cmd, " "), e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// ExecutionError reports that kubectl ran but exited non-zero in a way not
// covered by an exists-tolerant exception. It carries the full command line
// and captured output for diagnosis.
type ExecutionError struct {
	Cmd      []string
	ExitCode int
	Stdout   string
	Stderr   string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("error running kubectl (%s) command (rc=%d), out='%s', err='%s'",
		strings.Join(e.Cmd, " "), e.ExitCode, e.Stdout, e.Stderr)
}

// IsConfigError reports whether err is (or wraps) a ConfigError.
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsProcessError reports whether err is (or wraps) a ProcessError.
func IsProcessError(err error) bool {
	var target *ProcessError
	return errors.As(err, &target)
}

// IsExecutionError reports whether err is (or wraps) an ExecutionError.
func IsExecutionError(err error) bool {
	var target *ExecutionError
	return errors.As(err, &target)
}
