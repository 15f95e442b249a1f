package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"toolbox-mcp/internal/config"
	"toolbox-mcp/internal/dispatch"
	"toolbox-mcp/internal/hfinference"
	"toolbox-mcp/internal/info"
	"toolbox-mcp/internal/logging"
	"toolbox-mcp/internal/mcpserver"
	"toolbox-mcp/internal/nominatim"
	"toolbox-mcp/internal/openmeteo"
	"toolbox-mcp/internal/prompts"
	"toolbox-mcp/internal/registry"
	"toolbox-mcp/internal/telemetry"
	"toolbox-mcp/internal/tools"
)

// app is the wired process shared by the serve and stdio commands.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	disp     *dispatch.Dispatcher
	mcp      *mcp.Server
	gatherer prometheus.Gatherer
	shutdown func(context.Context) error
}

func newApp(cmd *cobra.Command, logOut io.Writer) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, logOut)
	slog.SetDefault(log)

	shutdown, err := telemetry.InitTracing(cmd.Context(), cfg.ServerName, cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(promReg)
	if err != nil {
		return nil, fmt.Errorf("registering metrics: %w", err)
	}

	reg, err := buildRegistry(cfg, time.Now())
	if err != nil {
		return nil, err
	}
	if cfg.HFToken == "" {
		log.Info("HF_TOKEN not set; generate-image will report a missing credential")
	}

	disp := dispatch.New(reg, dispatch.Options{Logger: log, Metrics: metrics, Timeout: cfg.ToolTimeout})
	return &app{
		cfg:      cfg,
		log:      log,
		disp:     disp,
		mcp:      mcpserver.New(disp, mcpserver.Options{Name: cfg.ServerName, Version: cfg.ServerVersion}),
		gatherer: promReg,
		shutdown: shutdown,
	}, nil
}

// buildRegistry registers every tool, prompt and resource and seals the result.
func buildRegistry(cfg config.Config, started time.Time) (*registry.Registry, error) {
	reg := registry.New()
	tb := tools.New(tools.Options{
		Geocoder:      nominatim.New(cfg.NominatimURL, cfg.GeocodeAgent, nil),
		Forecaster:    openmeteo.New(cfg.OpenMeteoURL, nil),
		Images:        hfinference.New(cfg.HFInferenceURL, cfg.HFToken, nil),
		ImagesEnabled: cfg.HFToken != "",
	})
	if err := tb.Register(reg); err != nil {
		return nil, fmt.Errorf("registering tools: %w", err)
	}
	id := info.Identity{Name: cfg.ServerName, Version: cfg.ServerVersion}
	if err := reg.RegisterResource(info.Resource(id, reg, started, time.Now)); err != nil {
		return nil, fmt.Errorf("registering resources: %w", err)
	}
	if err := reg.RegisterPrompt(prompts.CodeReview()); err != nil {
		return nil, fmt.Errorf("registering prompts: %w", err)
	}
	reg.Seal()
	return reg, nil
}

func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.shutdown(ctx); err != nil {
		a.log.Warn("tracing shutdown", "err", err)
	}
}
