// Package kubectl provides declarative lifecycle management for Kubernetes
// resources by driving an external kubectl binary.
//
// The package never talks to the Kubernetes API directly. Every operation is
// translated into a single kubectl invocation whose exit code and textual
// output are interpreted as success/failure/change signals:
//
//   - Spec describes one requested operation: the verb, the target
//     (resource types, name, manifest files), connection flags, and the
//     desired State (present, absent, latest).
//   - BuildArgs converts a Spec into an ordered argument vector. Flag order
//     is fixed because kubectl is positional-argument-sensitive.
//   - Runner executes an argument vector and captures the Outcome
//     (exit code, stdout, stderr). ExecRunner is the os/exec implementation;
//     tests substitute fakes.
//   - Classification turns an Outcome into a Result: the meta lines
//     (optionally narrowed by a regex filter), a changed heuristic over
//     kubectl's human-readable verbs, and a summary message.
//   - Manager orchestrates the above per requested State, probing existence
//     first where that enables idempotent no-ops.
//
// Example usage:
//
//	spec := &kubectl.Spec{
//		Verb:      "apply",
//		Filenames: []string{"/tmp/nginx.yml"},
//		State:     kubectl.StateLatest,
//	}
//	mgr, err := kubectl.NewManager(spec)
//	if err != nil {
//		return err
//	}
//	result, err := mgr.Apply(ctx)
//	if err != nil {
//		return err
//	}
//	fmt.Println(result.Changed, result.Msg)
//
// Each Manager run is stateless and performs at most two sequential process
// invocations (an optional existence probe, then the action). There are no
// retries and no internal timeouts; a hung kubectl blocks the run until the
// caller's context is cancelled.
package kubectl
