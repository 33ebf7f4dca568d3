package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cloudcitycakeco/cakeorders/internal/config"
)

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd(cfg *config.AppConfig) *cobra.Command {
	root := &cobra.Command{
		Use:   "cakeorders",
		Short: "Cloud City Cake Co. order service",
		Long: `cakeorders tracks cake orders through their lifecycle and notifies
customers by email and SMS whenever an order changes status.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolP("verbose", "v", false, "Mirror logs to stderr")

	root.AddCommand(
		NewServeCmd(cfg),
		NewRulesCmd(cfg),
		NewOrderCmd(cfg),
		NewPruneCmd(cfg),
		NewVersionCmd(),
	)
	return root
}

// Execute loads the configuration and runs the root command.
func Execute() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := NewRootCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func verboseFlag(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("verbose")
	return v
}
