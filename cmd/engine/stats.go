package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"jobtrack-engine/internal/analytics"
)

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print dashboard statistics as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, st, err := setup(cmd)
			if err != nil {
				return err
			}
			defer st.Close()
			defer logger.Sync()

			engine := analytics.New(st, cfg.CacheTTL())
			stats, err := engine.DashboardStats(cmd.Context())
			if err != nil {
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		},
	}
}
