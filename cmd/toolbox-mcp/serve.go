package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"toolbox-mcp/internal/mcpserver"
	"toolbox-mcp/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "", "Listen port (overrides PORT)")
	cmd.Flags().Duration("shutdown-timeout", 30*time.Second, "Graceful shutdown timeout")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	port := a.cfg.Port
	if p, _ := cmd.Flags().GetString("port"); p != "" {
		port = p
	}
	shutdownTimeout, _ := cmd.Flags().GetDuration("shutdown-timeout")

	if a.cfg.Token == "" {
		a.log.Warn("MCP_TOKEN not set; endpoints will be open. Set MCP_TOKEN to secure.")
	}
	srv := server.New(server.Config{
		Token:    a.cfg.Token,
		Logger:   a.log,
		Gatherer: a.gatherer,
		Stream:   mcpserver.StreamHandler(a.mcp),
	}, a.disp)

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", port),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.log.Info("starting MCP HTTP server", "addr", httpServer.Addr, "tls", a.cfg.TLSEnabled())
		var err error
		if a.cfg.TLSEnabled() {
			err = httpServer.ListenAndServeTLS(a.cfg.TLSCertFile, a.cfg.TLSKeyFile)
		} else {
			err = httpServer.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
