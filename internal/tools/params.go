package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
)

// SpecFromArgs builds a lifecycle Spec from MCP tool arguments. Argument
// names match the Spec's JSON option names, so a playbook-style invocation
// translates one to one. Extraction is lenient: missing or mistyped values
// fall back to zero values, and validation happens when the manager is
// constructed.
//
// The lifecycle state is not read from arguments; each tool fixes it.
func SpecFromArgs(args map[string]interface{}) *kubectl.Spec {
	spec := &kubectl.Spec{}

	spec.Verb, _ = args["command"].(string)
	spec.Name, _ = args["name"].(string)
	spec.Filter, _ = args["filter"].(string)
	spec.Namespace, _ = args["namespace"].(string)
	spec.Selector, _ = args["label"].(string)
	spec.Server, _ = args["server"].(string)
	spec.Kubeconfig, _ = args["kubeconfig"].(string)

	spec.Resources = StringList(args["resource"])
	spec.KeyVars = StringList(args["keyvars"])
	spec.Filenames = StringList(args["filename"])

	spec.IgnoreNotFound = boolArg(args, "ignore")
	spec.Overwrite = boolArg(args, "overwrite")
	spec.Force = boolArg(args, "force")
	spec.All = boolArg(args, "all")

	spec.LogLevel = intArg(args, "log_level")

	return spec
}

// SpecToolOptions returns the parameter declarations shared by every
// lifecycle tool. List-valued options also accept a comma-separated string,
// the way list options are written in playbooks.
func SpecToolOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("filename",
			mcp.Description("Manifest file path(s), comma-separated. Mutually exclusive with resource and name"),
		),
		mcp.WithString("resource",
			mcp.Description("Resource type(s) to operate on (e.g. pods, deployments), comma-separated. Mutually exclusive with filename"),
		),
		mcp.WithString("name",
			mcp.Description("Resource name. Requires resource; mutually exclusive with filename"),
		),
		mcp.WithString("command",
			mcp.Description("kubectl operation to run (default: apply). Ignored when removing; removal always deletes"),
		),
		mcp.WithString("keyvars",
			mcp.Description("key=value pairs appended to the command, comma-separated (e.g. label values)"),
		),
		mcp.WithString("namespace",
			mcp.Description("Namespace to scope the operation to. Mutually exclusive with all"),
		),
		mcp.WithString("label",
			mcp.Description("Label selector (e.g. app=nginx,tier=frontend)"),
		),
		mcp.WithString("filter",
			mcp.Description("Regular expression applied to output; matches replace raw lines in meta"),
		),
		mcp.WithString("server",
			mcp.Description("Kubernetes API server URL (optional)"),
		),
		mcp.WithString("kubeconfig",
			mcp.Description("Explicit kubeconfig path (optional)"),
		),
		mcp.WithBoolean("ignore",
			mcp.Description("Add --ignore-not-found to the invocation"),
		),
		mcp.WithBoolean("overwrite",
			mcp.Description("Add --overwrite to the invocation"),
		),
		mcp.WithBoolean("force",
			mcp.Description("Add --force; when removing, also skip the existence probe"),
		),
		mcp.WithBoolean("all",
			mcp.Description("Operate on all resources (--all). Mutually exclusive with namespace"),
		),
		mcp.WithNumber("log_level",
			mcp.Description("kubectl verbosity (--v). Zero omits the flag"),
		),
	}
}

// StringList coerces a tool argument into a list of strings. It accepts a
// JSON array, a single string, or a comma-separated string. Entries are
// trimmed and empty ones dropped.
func StringList(value interface{}) []string {
	switch v := value.(type) {
	case []string:
		return trimEntries(v)
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return trimEntries(items)
	case string:
		return trimEntries(strings.Split(v, ","))
	default:
		return nil
	}
}

func trimEntries(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// boolArg reads a boolean argument, treating anything malformed as false.
func boolArg(args map[string]interface{}, key string) bool {
	b, _ := args[key].(bool)
	return b
}

// intArg reads a numeric argument. JSON numbers arrive as float64.
func intArg(args map[string]interface{}, key string) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
