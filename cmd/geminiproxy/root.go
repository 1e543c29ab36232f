package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/awantoch/geminiproxy/config"
	"github.com/awantoch/geminiproxy/constants"
	"github.com/awantoch/geminiproxy/logger"
)

var (
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'geminiproxy' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           constants.CmdRoot,
		Short:         constants.DescRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")

	rootCmd.AddCommand(
		newServeCmd(),
		newExchangesCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// loadConfig reads the config file, overlays the environment and sets the log level.
// A missing file at the default path falls back to the built-in defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) || configPath != config.DefaultConfigPath {
			return nil, logger.Errorf("failed to load config: %w", err)
		}
		cfg = config.Default()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, logger.Errorf("invalid environment: %w", err)
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	logger.SetLevel(cfg.Log.Level)
	return cfg, nil
}
