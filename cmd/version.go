package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd prints the version injected by SetVersion at build time.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the mcp-kubectl version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mcp-kubectl version %s\n", rootCmd.Version)
		},
	}
}
