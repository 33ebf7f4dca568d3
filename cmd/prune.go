package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/scheduler"
)

// NewPruneCmd returns the "prune" subcommand that deletes old notification
// log entries once and exits.
func NewPruneCmd(cfg *config.AppConfig) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete notification log entries older than the retention period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			retention := cfg.LogRetention()
			if cmd.Flags().Changed("days") {
				retention = time.Duration(days) * 24 * time.Hour
			}
			if retention <= 0 {
				return fmt.Errorf("retention must be positive")
			}

			a, err := newApp(cmd.Context(), cfg, verboseFlag(cmd))
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			sched, err := scheduler.New(scheduler.Config{Store: a.notifs, Retention: retention, Logger: a.logger})
			if err != nil {
				return err
			}
			n, err := sched.PruneNow(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d notification log entries\n", n)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", cfg.LogRetentionDays, "Keep entries newer than this many days")
	return cmd
}
