// Command toolbox-mcp serves the tool, prompt and resource catalogue over MCP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "toolbox-mcp",
		Short:        "MCP server with greeting, math, time, geocoding, weather and image tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Path to a YAML config file (overrides TOOLBOX_CONFIG)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newStdioCmd())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "toolbox-mcp version %s\n", version)
		},
	})
	return root
}
