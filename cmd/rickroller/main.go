package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/radutopala/rickroller/internal/config"
)

func init() {
	cobra.EnablePrefixMatching = true
	version = resolveVersion(version)
}

// resolveVersion uses debug.ReadBuildInfo to replace "dev" with the actual
// module version when installed via `go install`.
var resolveVersion = func(v string) string {
	if v != "dev" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return v
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var osExit = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		osExit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rickroller",
		Short:        "MCP server exposing the rick-roll widget",
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMCPCmd())
	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rickroller %s\n", version)
			if commit != "none" {
				fmt.Fprintf(out, "  commit: %s\n", commit)
			}
			if date != "unknown" {
				fmt.Fprintf(out, "  built:  %s\n", date)
			}
		},
	}
}

// --- Shared testable vars ---

var (
	osStat      = os.Stat
	osMkdirAll  = os.MkdirAll
	osWriteFile = os.WriteFile
	configLoad  = config.Load
	configPath  = config.Path
)
