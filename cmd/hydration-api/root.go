package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/hydration/backend/internal/config"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:          "hydration-api",
	Short:        "Hydration tracking API server",
	Long:         `A REST API server and toolbox for tracking water intake and hydration analytics.`,
	SilenceUsage: true,
}

var configFile string

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to a config file (default: ./config.yaml or ./config/config.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(remindCmd)
}

// loadConfig loads configuration and installs the process-wide logger
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger.SetDefault(logger.NewSlogLogger(logger.Config{
		Level:     logger.ParseLevel(cfg.Logging.Level),
		Format:    cfg.Logging.Format,
		LogBodies: cfg.Logging.LogBodies,
		Output:    os.Stdout,
	}))

	return cfg, nil
}
