package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"unsplashfetch/pkg/auth"
	"unsplashfetch/pkg/config"
	"unsplashfetch/pkg/ui"
)

const defaultConfigFile = ".unsplashfetch.yaml"

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration files",
		Long: `Manage unsplashfetch configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables and .env
  - Configuration file
  - Default values (lowest priority)`,
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default values",
		Long: `Write a configuration file with default values.

The file is created as ` + defaultConfigFile + ` in the current directory
unless a different path is given with --config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runConfigInit(cmd, force)
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration after merging all sources.

The access key is masked.`,
		Args: cobra.NoArgs,
		RunE: a.runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.loadConfig(cmd); err != nil {
				return err
			}
			ui.NewPrinter(cmd.OutOrStdout(), false).Info("Configuration", "valid")
			return nil
		},
	})

	return cmd
}

func (a *app) runConfigInit(cmd *cobra.Command, force bool) error {
	path := a.opts.configFile
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout(), false).Info("Configuration written to", path)
	return nil
}

func (a *app) runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	if cfg.Unsplash.AccessKey != "" {
		cfg.Unsplash.AccessKey = auth.MaskKey(cfg.Unsplash.AccessKey)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
