package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/radutopala/rickroller/internal/api"
	"github.com/radutopala/rickroller/internal/config"
	"github.com/radutopala/rickroller/internal/logging"
	"github.com/radutopala/rickroller/internal/mcpserver"
	"github.com/radutopala/rickroller/internal/metrics"
)

func newServeCmd() *cobra.Command {
	var addr string
	var strict bool

	cmd := &cobra.Command{
		Use:     "serve",
		Aliases: []string{"s"},
		Short:   "Serve the MCP endpoint over streamable HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(func(cfg *config.Config) {
				if cmd.Flags().Changed("addr") {
					cfg.ListenAddr = addr
				}
				if cmd.Flags().Changed("strict") {
					cfg.StrictArguments = strict
				}
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultListenAddr, "Listen address (overrides listen_addr)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject unknown tool arguments (overrides strict_arguments)")

	return cmd
}

// apiServer is the interface used by serve() to decouple from api.Server for testing.
type apiServer interface {
	Run(ctx context.Context, addr string) error
}

var (
	newMCPServer = mcpserver.New
	newAPIServer = func(handler http.Handler, m *metrics.Metrics, opts api.Options, logger *slog.Logger) apiServer {
		return api.NewServer(handler, m, opts, logger)
	}
	notifyContext = signal.NotifyContext
)

func serve(override func(*config.Config)) error {
	cfg, err := configLoad()
	if err != nil {
		return err
	}
	override(cfg)

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting rickroller", "version", version, "addr", cfg.ListenAddr, "strict_arguments", cfg.StrictArguments)

	var m *metrics.Metrics
	var recorder mcpserver.Recorder
	if cfg.MetricsEnabled {
		m = metrics.New()
		recorder = m
	}

	mcpSrv := newMCPServer(mcpserver.Options{
		Version:         version,
		StrictArguments: cfg.StrictArguments,
	}, recorder, logger)

	apiSrv := newAPIServer(mcpSrv.HTTPHandler(cfg.Stateless, cfg.JSONResponse), m, api.Options{
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ShutdownTimeout:    cfg.ShutdownTimeout,
	}, logger)

	ctx, cancel := notifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := apiSrv.Run(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("running api server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}
