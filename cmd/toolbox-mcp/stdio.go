package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"toolbox-mcp/internal/mcpserver"
)

func newStdioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve MCP over stdin/stdout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the protocol.
			a, err := newApp(cmd, os.Stderr)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a.log.Info("serving MCP over stdio", "name", a.cfg.ServerName, "version", a.cfg.ServerVersion)
			return mcpserver.Run(ctx, a.mcp)
		},
	}
}
