package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/server"
)

// CheckMutatingSpec verifies whether a lifecycle run may proceed given the
// current server configuration. Returns an error result if the run is
// blocked, nil if it is allowed.
//
// In read-only mode any run that could mutate cluster state is blocked:
// absent runs, latest runs, and present runs whose verb is not one of the
// read-only kubectl verbs. Existence probes are never routed through this
// check; they only ever issue get.
func CheckMutatingSpec(sc *server.ServerContext, spec *kubectl.Spec) *mcp.CallToolResult {
	config := sc.Config()
	if config == nil || !config.ReadOnlyMode {
		return nil
	}

	state := spec.State
	if state == "" {
		state = kubectl.StatePresent
	}
	verb := spec.Verb
	if verb == "" {
		verb = kubectl.DefaultVerb
	}

	if state == kubectl.StatePresent && kubectl.IsSafeVerb(verb) {
		return nil
	}

	blocked := verb
	if state == kubectl.StateAbsent {
		blocked = "delete"
	}

	return mcp.NewToolResultError(fmt.Sprintf(
		"%s operations are not allowed in read-only mode",
		cases.Title(language.English).String(blocked),
	))
}
