package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/giantswarm/mcp-kubectl/internal/kubectl"
	"github.com/giantswarm/mcp-kubectl/internal/tools"
)

// taskFileAliases maps the historical task-file option names onto the
// canonical ones. Playbook tasks written against the original module used
// several spellings for the file and resource lists; all of them still work.
var taskFileAliases = map[string]string{
	"files":     "filename",
	"file":      "filename",
	"filenames": "filename",
	"resources": "resource",
}

// newRunCmd creates the Cobra command for running a single lifecycle
// operation without starting the MCP server. It accepts the same sparse
// option set as the lifecycle tools, either as flags or as a YAML task file.
func newRunCmd() *cobra.Command {
	var (
		taskFile string

		binary         string
		command        string
		resources      []string
		name           string
		keyvars        []string
		filter         string
		filenames      []string
		namespace      string
		label          string
		serverURL      string
		kubeconfig     string
		ignoreNotFound bool
		overwrite      bool
		force          bool
		all            bool
		logLevel       int
		state          string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single kubectl lifecycle operation and print the result",
		Long: `Run one declarative kubectl lifecycle operation from the command line,
without starting the MCP server.

The operation is described either by flags, by a YAML task file (--task),
or both; flags override values from the task file. The result record is
printed to standard output as indented JSON:

  mcp-kubectl run --filename deploy.yaml --state present
  mcp-kubectl run --resource pods --name web --namespace prod --state absent
  mcp-kubectl run --task ./task.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := &kubectl.Spec{}
			if taskFile != "" {
				loaded, err := loadTaskFile(taskFile)
				if err != nil {
					return err
				}
				spec = loaded
			}

			// Flags override task-file values, but only when the user
			// actually set them; defaults never clobber the file.
			flagSet := cmd.Flags()
			if flagSet.Changed("kubectl") {
				spec.Binary = binary
			}
			if flagSet.Changed("command") {
				spec.Verb = command
			}
			if flagSet.Changed("resource") {
				spec.Resources = resources
			}
			if flagSet.Changed("name") {
				spec.Name = name
			}
			if flagSet.Changed("keyvars") {
				spec.KeyVars = keyvars
			}
			if flagSet.Changed("filter") {
				spec.Filter = filter
			}
			if flagSet.Changed("filename") {
				spec.Filenames = filenames
			}
			if flagSet.Changed("namespace") {
				spec.Namespace = namespace
			}
			if flagSet.Changed("label") {
				spec.Selector = label
			}
			if flagSet.Changed("server") {
				spec.Server = serverURL
			}
			if flagSet.Changed("kubeconfig") {
				spec.Kubeconfig = kubeconfig
			}
			if flagSet.Changed("ignore-not-found") {
				spec.IgnoreNotFound = ignoreNotFound
			}
			if flagSet.Changed("overwrite") {
				spec.Overwrite = overwrite
			}
			if flagSet.Changed("force") {
				spec.Force = force
			}
			if flagSet.Changed("all") {
				spec.All = all
			}
			if flagSet.Changed("log-level") {
				spec.LogLevel = logLevel
			}
			if flagSet.Changed("state") {
				spec.State = kubectl.State(state)
			}

			return runOnce(cmd, spec)
		},
	}

	cmd.Flags().StringVar(&taskFile, "task", "", "YAML task file describing the operation (flags override its values)")

	cmd.Flags().StringVar(&binary, "kubectl", "", "Path to the kubectl binary (default: looked up on PATH)")
	cmd.Flags().StringVar(&command, "command", "", "kubectl operation to run (default: apply)")
	cmd.Flags().StringSliceVar(&resources, "resource", nil, "Resource type(s) to operate on, repeatable or comma-separated")
	cmd.Flags().StringVar(&name, "name", "", "Resource name (requires --resource)")
	cmd.Flags().StringSliceVar(&keyvars, "keyvars", nil, "key=value pairs appended to the command, repeatable or comma-separated")
	cmd.Flags().StringVar(&filter, "filter", "", "Regular expression applied to output lines")
	cmd.Flags().StringSliceVar(&filenames, "filename", nil, "Manifest file path(s), repeatable or comma-separated")
	cmd.Flags().StringVar(&namespace, "namespace", "", "Namespace to scope the operation to")
	cmd.Flags().StringVar(&label, "label", "", "Label selector")
	cmd.Flags().StringVar(&serverURL, "server", "", "Kubernetes API server URL")
	cmd.Flags().StringVar(&kubeconfig, "kubeconfig", "", "Explicit kubeconfig path")
	cmd.Flags().BoolVar(&ignoreNotFound, "ignore-not-found", false, "Add --ignore-not-found to the invocation")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Add --overwrite to the invocation")
	cmd.Flags().BoolVar(&force, "force", false, "Add --force; when removing, also skip the existence probe")
	cmd.Flags().BoolVar(&all, "all", false, "Operate on all resources (--all)")
	cmd.Flags().IntVar(&logLevel, "log-level", 0, "kubectl verbosity (--v); zero omits the flag")
	cmd.Flags().StringVar(&state, "state", "", "Desired state: present, absent or latest (default: present)")

	return cmd
}

// loadTaskFile reads a YAML task file into a Spec. The file carries the
// same option names as the lifecycle tools, so the decoded document goes
// through the same argument coercion, after folding aliases onto their
// canonical names.
func loadTaskFile(path string) (*kubectl.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse task file %s: %w", path, err)
	}

	for alias, canonical := range taskFileAliases {
		value, ok := raw[alias]
		if !ok {
			continue
		}
		if _, exists := raw[canonical]; !exists {
			raw[canonical] = value
		}
		delete(raw, alias)
	}

	spec := tools.SpecFromArgs(raw)
	if binary, ok := raw["kubectl"].(string); ok {
		spec.Binary = binary
	}
	if state, ok := raw["state"].(string); ok {
		spec.State = kubectl.State(state)
	}
	return spec, nil
}

// runOnce applies the spec once and prints the result record to stdout.
// The process observes SIGINT/SIGTERM so a stuck kubectl invocation can be
// interrupted cleanly.
func runOnce(cmd *cobra.Command, spec *kubectl.Spec) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	mgr, err := kubectl.NewManager(spec)
	if err != nil {
		return err
	}

	res, err := mgr.Apply(ctx)
	if err != nil {
		return err
	}

	encoded, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return nil
}
