package kubectl

import (
	"context"
	"os"
	"regexp"
	"strings"
)

// Logger is the minimal logging interface the engine needs. The logging
// package's SlogAdapter satisfies it.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// nopLogger discards everything. Used when no logger is configured.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// Manager orchestrates one lifecycle run: it owns a validated copy of the
// Spec, resolves the binary once, and dispatches on the requested State.
// Managers hold no cross-run state; construct one per run.
type Manager struct {
	spec   *Spec
	binary string
	runner Runner
	logger Logger

	// filter is the compiled Spec.Filter, nil when unset.
	filter *regexp.Regexp

	// dirMode is true when the first manifest path is a directory; such
	// runs tolerate non-zero exits (see classify).
	dirMode bool
}

// ManagerOption configures a Manager during construction.
type ManagerOption func(*Manager) error

// WithRunner substitutes the process runner. Tests use this to fake kubectl.
func WithRunner(runner Runner) ManagerOption {
	return func(m *Manager) error {
		if runner == nil {
			return &ConfigError{Reason: "runner must not be nil"}
		}
		m.runner = runner
		return nil
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger Logger) ManagerOption {
	return func(m *Manager) error {
		if logger == nil {
			return &ConfigError{Reason: "logger must not be nil"}
		}
		m.logger = logger
		return nil
	}
}

// WithBinaryPath overrides binary resolution with an explicit path.
func WithBinaryPath(path string) ManagerOption {
	return func(m *Manager) error {
		m.binary = path
		return nil
	}
}

// NewManager validates spec and prepares a Manager for a single Apply. The
// caller's spec is cloned, defaulted, and normalized (StateLatest forces
// Overwrite on) so it stays immutable from the caller's point of view.
// Binary resolution follows the spec's explicit path when set, otherwise
// PATH lookup; a missing binary is a ProcessError at construction time.
func NewManager(spec *Spec, opts ...ManagerOption) (*Manager, error) {
	if spec == nil {
		return nil, &ConfigError{Reason: "spec is required"}
	}

	owned := spec.Clone().ApplyDefaults()
	if owned.State == StateLatest {
		owned.Overwrite = true
	}
	if err := owned.Validate(); err != nil {
		return nil, err
	}

	m := &Manager{
		spec:   owned,
		runner: NewExecRunner(),
		logger: nopLogger{},
	}
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	if m.binary == "" {
		binary, err := ResolveBinary(owned.Binary)
		if err != nil {
			return nil, err
		}
		m.binary = binary
	}

	if owned.Filter != "" {
		filter, err := regexp.Compile(owned.Filter)
		if err != nil {
			return nil, &ConfigError{Reason: "invalid filter pattern: " + err.Error()}
		}
		m.filter = filter
	}

	m.dirMode = isDirTarget(owned.Filenames)

	return m, nil
}

// Spec returns the Manager's owned, normalized spec.
func (m *Manager) Spec() *Spec {
	return m.spec
}

// Binary returns the resolved kubectl path.
func (m *Manager) Binary() string {
	return m.binary
}

// Apply performs the lifecycle run for the spec's State and returns the
// Result Record. At most two processes are spawned: an optional existence
// probe, then the action. Errors are terminal; nothing is retried.
func (m *Manager) Apply(ctx context.Context) (*Result, error) {
	res := NewResult()

	var err error
	switch m.spec.State {
	case StatePresent:
		err = m.ensurePresent(ctx, res)
	case StateAbsent:
		err = m.ensureAbsent(ctx, res)
	case StateLatest:
		err = m.ensureLatest(ctx, res)
	default:
		// Validate already rejected everything else.
		err = &ConfigError{Reason: "Unrecognized state " + string(m.spec.State) + "."}
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Exists probes whether the primary target is present, without running the
// configured verb. The probe's classified output is discarded.
func (m *Manager) Exists(ctx context.Context) (bool, *Result, error) {
	res := NewResult()
	present, err := m.exists(ctx, res)
	if err != nil {
		return false, nil, err
	}
	return present, res, nil
}

// ensurePresent creates the target unless it already exists. Read-only
// verbs skip the probe and always run; requesting removal through the verb
// is rejected so deletes stay visible as StateAbsent.
func (m *Manager) ensurePresent(ctx context.Context, res *Result) error {
	if m.spec.Verb == "delete" {
		return &ConfigError{Reason: "use state=absent instead of command=delete"}
	}

	if !IsSafeVerb(m.spec.Verb) {
		present, err := m.exists(ctx, res)
		if err != nil {
			return err
		}
		if present {
			m.logger.Debug("target already present, no action taken", "verb", m.spec.Verb)
			return nil
		}
	}

	return m.run(ctx, res, m.spec.Verb, false, false)
}

// ensureAbsent deletes the target when it exists. Force skips the probe and
// deletes unconditionally.
func (m *Manager) ensureAbsent(ctx context.Context, res *Result) error {
	if !m.spec.Force {
		present, err := m.exists(ctx, res)
		if err != nil {
			return err
		}
		if !present {
			m.logger.Debug("target already absent, no action taken")
			return nil
		}
	}

	return m.run(ctx, res, "delete", false, false)
}

// ensureLatest always runs the configured verb; Overwrite was forced on at
// construction and kubectl's own semantics make the run idempotent.
func (m *Manager) ensureLatest(ctx context.Context, res *Result) error {
	return m.run(ctx, res, m.spec.Verb, false, false)
}

// exists issues the probe invocation and reports presence as a non-empty
// classified meta. The probe classifies into res, so probe output remains
// visible on no-op paths.
func (m *Manager) exists(ctx context.Context, res *Result) (bool, error) {
	if err := m.run(ctx, res, "get", true, true); err != nil {
		return false, err
	}
	return len(res.Meta) > 0, nil
}

// run assembles, invokes, and classifies one kubectl invocation into res.
func (m *Manager) run(ctx context.Context, res *Result, verb string, probe, existsTolerant bool) error {
	args, err := BuildArgs(m.spec, verb, probe)
	if err != nil {
		return err
	}

	cmd := append([]string{m.binary}, args...)
	m.logger.Debug("running kubectl", "cmd", strings.Join(cmd, " "), "probe", probe)

	out, err := m.runner.Run(ctx, m.binary, args)
	if err != nil {
		if IsProcessError(err) {
			return err
		}
		return &ProcessError{Cmd: cmd, Err: err}
	}

	return classify(res, out, classifyOptions{
		verb:           verb,
		cmd:            cmd,
		filter:         m.filter,
		existsTolerant: existsTolerant,
		dirMode:        m.dirMode,
	})
}

// isDirTarget reports whether the first manifest path names a directory.
func isDirTarget(filenames []string) bool {
	if len(filenames) == 0 {
		return false
	}
	info, err := os.Stat(filenames[0])
	return err == nil && info.IsDir()
}
