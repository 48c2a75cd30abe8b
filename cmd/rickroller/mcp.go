package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/radutopala/rickroller/internal/logging"
	"github.com/radutopala/rickroller/internal/mcpserver"
)

func newMCPCmd() *cobra.Command {
	var logPath string
	var strict bool

	cmd := &cobra.Command{
		Use:     "mcp",
		Aliases: []string{"m"},
		Short:   "Run as an MCP server over stdio",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runMCP(cmd.Context(), logPath, strict, cmd.Flags().Changed("strict"))
		},
	}

	cmd.Flags().StringVar(&logPath, "log", "", "Path to MCP log file (default: stderr)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject unknown tool arguments (overrides strict_arguments)")

	return cmd
}

var newStdioTransport = func() mcp.Transport {
	return &mcp.StdioTransport{}
}

func runMCP(ctx context.Context, logPath string, strict, strictSet bool) error {
	var w io.Writer = os.Stderr
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening mcp log: %w", err)
		}
		defer f.Close()
		w = f
	}

	// Stdio mode still works without a config file; it only borrows logging
	// and argument strictness from it.
	logLevel, logFormat := "info", "text"
	cfg, cfgErr := configLoad()
	if cfgErr == nil {
		logLevel = cfg.LogLevel
		logFormat = cfg.LogFormat
		if !strictSet {
			strict = cfg.StrictArguments
		}
	}

	logger := logging.NewLoggerWithWriter(logLevel, logFormat, w)
	if cfgErr != nil {
		logger.Warn("using default config", "error", cfgErr)
	}

	srv := newMCPServer(mcpserver.Options{
		Version:         version,
		StrictArguments: strict,
	}, nil, logger)
	return srv.Run(ctx, newStdioTransport())
}
