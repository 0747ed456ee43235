package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command. Errors are reported by the commands
// themselves, so usage output on failure is suppressed.
var rootCmd = &cobra.Command{
	Use:   "mcp-kubectl",
	Short: "MCP server for declarative kubectl resource lifecycle management",
	Long: `mcp-kubectl is a Model Context Protocol (MCP) server that manages
Kubernetes resources declaratively by driving the kubectl binary. It exposes
lifecycle tools (present, absent, latest, exists) plus diagnostics, and can
also run a single lifecycle operation from the command line with 'run'.

When run without subcommands, it starts the MCP server (equivalent to 'mcp-kubectl serve').`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		newServeCmd(),
		newRunCmd(),
		newVersionCmd(),
		newSelfUpdateCmd(),
	)
}

// SetVersion injects the build-time version from the main package.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the CLI. A bare invocation becomes "serve" so MCP clients
// can launch the binary without arguments.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "mcp-kubectl version %s\n" .Version}}`)

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
