package kubectl

import (
	"fmt"
	"regexp"
	"strings"

	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/util/validation"
)

// State is the desired lifecycle state for the targeted resources.
type State string

// Supported lifecycle states.
const (
	// StatePresent creates the target if it does not exist yet; an existing
	// target is a no-op. Read-only verbs run unconditionally.
	StatePresent State = "present"

	// StateAbsent deletes the target if it exists; a missing target is a
	// no-op unless Force is set.
	StateAbsent State = "absent"

	// StateLatest always runs the configured verb with --overwrite, relying
	// on kubectl's own apply/replace semantics for update-or-create.
	StateLatest State = "latest"
)

// Default values applied by ApplyDefaults.
const (
	// DefaultVerb is the kubectl operation used when none is configured.
	DefaultVerb = "apply"

	// DefaultBinaryName is looked up on PATH when no binary path is set.
	DefaultBinaryName = "kubectl"
)

// safeVerbs are read-only kubectl operations that never mutate cluster
// state. Under StatePresent they run directly, without an existence probe.
var safeVerbs = []string{
	"api-versions",
	"cluster-info",
	"describe",
	"explain",
	"get",
	"logs",
	"version",
}

// changedWords is the vocabulary of kubectl's human-readable mutation verbs.
// A stdout token containing one of these marks the run as changed. This is a
// coarse heuristic, not a structured signal: "unmodified" contains
// "modified" and therefore counts as a change.
var changedWords = []string{"created", "deleted", "labeled", "modified"}

// Spec is the full option set for one lifecycle run. It is immutable once
// validated; a Manager owns it for the duration of a single Apply.
type Spec struct {
	// Binary is the path to the kubectl executable. Empty means the binary
	// is resolved from PATH at Manager construction.
	Binary string `json:"kubectl,omitempty"`

	// Verb is the kubectl operation to run (apply, create, get, ...).
	// Defaults to "apply". StateAbsent ignores it and runs "delete".
	Verb string `json:"command,omitempty"`

	// Resources are the resource types to operate on (pods, rc, svc, ...).
	// Mutually exclusive with Filenames.
	Resources []string `json:"resource,omitempty"`

	// Name is the resource name. Mutually exclusive with Filenames.
	Name string `json:"name,omitempty"`

	// KeyVars are key=value pairs passed through as bare tokens (label
	// values, annotation pairs). Never included in existence probes.
	KeyVars []string `json:"keyvars,omitempty"`

	// Filter is a regular expression applied to stdout; when set, the
	// result meta is the ordered list of matches instead of raw lines.
	Filter string `json:"filter,omitempty"`

	// Filenames are manifest files passed as a single comma-joined
	// --filename flag. When the first entry is a directory, non-zero exits
	// are tolerated (directories may contain files kubectl cannot parse).
	Filenames []string `json:"filename,omitempty"`

	// Namespace scopes the operation. Mutually exclusive with All.
	Namespace string `json:"namespace,omitempty"`

	// Selector is a label selector (--selector).
	Selector string `json:"label,omitempty"`

	// Server is the API server URL (--server).
	Server string `json:"server,omitempty"`

	// Kubeconfig is an explicit kubeconfig path (--kubeconfig).
	Kubeconfig string `json:"kubeconfig,omitempty"`

	// IgnoreNotFound adds --ignore-not-found.
	IgnoreNotFound bool `json:"ignore,omitempty"`

	// Overwrite adds --overwrite. Forced on by StateLatest.
	Overwrite bool `json:"overwrite,omitempty"`

	// Force adds --force; under StateAbsent it also skips the existence
	// probe so the delete always runs.
	Force bool `json:"force,omitempty"`

	// All adds --all (delete all, or all namespaces on probes).
	All bool `json:"all,omitempty"`

	// LogLevel sets kubectl's verbosity (--v). Zero emits nothing.
	LogLevel int `json:"log_level,omitempty"`

	// State is the requested lifecycle state. Defaults to present.
	State State `json:"state,omitempty"`
}

// Clone creates a deep copy of the spec.
func (s *Spec) Clone() *Spec {
	if s == nil {
		return nil
	}

	clone := *s

	if s.Resources != nil {
		clone.Resources = make([]string, len(s.Resources))
		copy(clone.Resources, s.Resources)
	}
	if s.KeyVars != nil {
		clone.KeyVars = make([]string, len(s.KeyVars))
		copy(clone.KeyVars, s.KeyVars)
	}
	if s.Filenames != nil {
		clone.Filenames = make([]string, len(s.Filenames))
		copy(clone.Filenames, s.Filenames)
	}

	return &clone
}

// ApplyDefaults fills the defaulted fields (verb, state) and trims list
// entries in place. It returns the receiver for chaining.
func (s *Spec) ApplyDefaults() *Spec {
	if s.Verb == "" {
		s.Verb = DefaultVerb
	}
	if s.State == "" {
		s.State = StatePresent
	}
	s.Resources = trimAll(s.Resources)
	s.KeyVars = trimAll(s.KeyVars)
	s.Filenames = trimAll(s.Filenames)
	return s
}

// Validate checks the option combination. A standalone module has no host
// framework schema layer in front of it, so the constraint set usually
// enforced by the caller is re-checked here: the three mutual exclusions,
// state membership, and the syntax of filter, selector, and namespace.
// All violations are ConfigErrors.
func (s *Spec) Validate() error {
	if len(s.Filenames) > 0 && len(s.Resources) > 0 {
		return &ConfigError{Reason: "filename and resource are mutually exclusive"}
	}
	if len(s.Filenames) > 0 && s.Name != "" {
		return &ConfigError{Reason: "filename and name are mutually exclusive"}
	}
	if s.Namespace != "" && s.All {
		return &ConfigError{Reason: "namespace and all are mutually exclusive"}
	}

	switch s.State {
	case StatePresent, StateAbsent, StateLatest:
	default:
		return &ConfigError{Reason: fmt.Sprintf("Unrecognized state %s.", s.State)}
	}

	if s.Filter != "" {
		if _, err := regexp.Compile(s.Filter); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("invalid filter pattern %q: %v", s.Filter, err)}
		}
	}
	if s.Selector != "" {
		if _, err := labels.Parse(s.Selector); err != nil {
			return &ConfigError{Reason: fmt.Sprintf("invalid label selector %q: %v", s.Selector, err)}
		}
	}
	if s.Namespace != "" {
		if errs := validation.IsDNS1123Label(s.Namespace); len(errs) > 0 {
			return &ConfigError{Reason: fmt.Sprintf("invalid namespace %q: %s", s.Namespace, strings.Join(errs, "; "))}
		}
	}

	return nil
}

// IsSafeVerb reports whether verb belongs to the read-only set that runs
// without an existence probe under StatePresent.
func IsSafeVerb(verb string) bool {
	for _, safe := range safeVerbs {
		if verb == safe {
			return true
		}
	}
	return false
}

// trimAll returns items with surrounding whitespace removed, dropping
// entries that trim to nothing.
func trimAll(items []string) []string {
	if len(items) == 0 {
		return items
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
