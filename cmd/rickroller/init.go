package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/radutopala/rickroller/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init",
		Aliases: []string{"setup"},
		Short:   "Write a commented config file to ~/.rickroller/",
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path, err := initConfig(force)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().Bool("force", false, "Overwrite existing config")
	return cmd
}

func initConfig(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}

	if _, err := osStat(path); err == nil && !force {
		return "", fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	if err := osMkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	if err := osWriteFile(path, config.ExampleConfig, 0o644); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}
	return path, nil
}
