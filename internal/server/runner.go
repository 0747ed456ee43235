package server

import (
	"context"
	"strings"
	"time"

	"github.com/giantswarm/mcp-kubectl/internal/instrumentation"
	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
)

// instrumentedRunner decorates a kubectl.Runner with per-invocation metrics
// and tracing: exactly one process invocation maps to one metric sample and
// one span.
//
// Status reflects the raw process outcome; a non-zero exit counts as an
// error here even when the lifecycle layer tolerates it (not-found probes,
// directory manifests). Tolerance is visible in the lifecycle metrics.
type instrumentedRunner struct {
	next     kubectl.Runner
	provider *instrumentation.Provider
}

// newInstrumentedRunner wraps next unless instrumentation is disabled, in
// which case next is returned unchanged.
func newInstrumentedRunner(next kubectl.Runner, provider *instrumentation.Provider) kubectl.Runner {
	if provider == nil || !provider.Enabled() {
		return next
	}
	return &instrumentedRunner{next: next, provider: provider}
}

func (r *instrumentedRunner) Run(ctx context.Context, binary string, args []string) (kubectl.Outcome, error) {
	verb := invocationVerb(args)
	resourceType := invocationResource(args)
	namespace := invocationNamespace(args)

	ctx, span := instrumentation.StartInvocationSpan(ctx, verb, resourceType, namespace)
	defer span.End()

	start := time.Now()
	out, err := r.next.Run(ctx, binary, args)
	duration := time.Since(start)

	status := instrumentation.StatusSuccess
	if err != nil || out.ExitCode != 0 {
		status = instrumentation.StatusError
	}

	if metrics := r.provider.Metrics(); metrics != nil {
		metrics.RecordInvocation(ctx, verb, resourceType, namespace, status, duration)
	}

	if err != nil {
		instrumentation.SetSpanError(span, err)
		return out, err
	}

	span.SetAttributes(instrumentation.NewSpanAttributeBuilder().
		WithExitCode(out.ExitCode).
		Build()...)
	if out.ExitCode == 0 {
		instrumentation.SetSpanSuccess(span)
	}
	return out, nil
}

// invocationVerb extracts the kubectl operation from an argument vector.
// The verb is always the first argument.
func invocationVerb(args []string) string {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "unknown"
	}
	return args[0]
}

// invocationResource extracts the resource type when the invocation names
// one positionally. Manifest-driven invocations have none.
func invocationResource(args []string) string {
	if len(args) < 2 || strings.HasPrefix(args[1], "-") {
		return ""
	}
	return args[1]
}

// invocationNamespace extracts the --namespace flag value, if present.
func invocationNamespace(args []string) string {
	for _, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--namespace="); ok {
			return value
		}
	}
	return ""
}
