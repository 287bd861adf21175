package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"jobtrack-engine/internal/config"
	"jobtrack-engine/internal/store"
)

func main() {
	root := &cobra.Command{
		Use:           "engine",
		Short:         "Job discovery and application tracking engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("data-dir", envOr("JOBTRACK_DATA_DIR", "."), "engine data directory")
	root.PersistentFlags().Bool("debug", false, "verbose logging")

	root.AddCommand(newCrawlCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newStatsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// setup loads (bootstrapping on first run) the user config from the data
// dir, builds the logger, and opens the store.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, *store.Store, error) {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	debug, _ := cmd.Flags().GetBool("debug")

	cfgPath, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, nil, nil, fmt.Errorf("config load (%s): %w", cfgPath, err)
	}
	if cfg.App.DataDir == "." {
		cfg.App.DataDir = dataDir
	}

	logger, err := newLogger(debug)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	st, err := store.Open(cfg.App.DataDir)
	if err != nil {
		logger.Sync()
		return config.Config{}, nil, nil, fmt.Errorf("open store: %w", err)
	}
	return cfg, logger, st, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
