package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexsupply/nexi/internal/config"
	"github.com/nexsupply/nexi/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexi",
	Short: "Nexi is a sourcing intake and landed-cost analysis engine",
	Long: `Nexi walks a buyer through a short sourcing interview, checks the
supplier against a blacklist and asks an estimation service for a
landed-cost analysis.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file loaded before the process environment")
	rootCmd.PersistentFlags().String("log-level", "", "Override NEXI_LOG_LEVEL (debug, info, warn, error)")
}

// setup loads the configuration and builds the logger of a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := config.ParseLevel(lvl); err != nil {
			return nil, nil, err
		}
		cfg.LogLevel = lvl
	}
	return cfg, logging.NewWithFormat(os.Stderr, cfg.Level(), cfg.LogFormat), nil
}
