package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cloudcitycakeco/cakeorders/internal/api"
	"github.com/cloudcitycakeco/cakeorders/internal/build"
	"github.com/cloudcitycakeco/cakeorders/internal/config"
	"github.com/cloudcitycakeco/cakeorders/internal/scheduler"
	"github.com/cloudcitycakeco/cakeorders/internal/server"
)

// NewServeCmd returns the "serve" subcommand that starts the HTTP server and
// the log pruning scheduler.
func NewServeCmd(cfg *config.AppConfig) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the order API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// CLI flags override env config.
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			logFile := filepath.Join(cfg.LogDir(), "system.log")
			fmt.Printf("cakeorders %s listening on http://localhost:%d\n", build.Version, cfg.Port)
			fmt.Printf("Logs: %s\n\n", logFile)

			if err := runServe(cmd.Context(), cfg, verboseFlag(cmd)); err != nil {
				return fmt.Errorf("%w (see %s)", err, logFile)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", cfg.Port, "HTTP server port (overrides PORT env var)")
	return cmd
}

func runServe(parent context.Context, cfg *config.AppConfig, verbose bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx, cfg, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	sched, err := scheduler.New(scheduler.Config{
		Store:     a.notifs,
		Retention: cfg.LogRetention(),
		RunAt:     cfg.PruneAt,
		Logger:    a.logger,
	})
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := sched.Stop(); err != nil {
			a.logger.Warn("stopping scheduler", "error", err)
		}
	}()

	apiSrv := api.New(a.orderSvc, a.userSvc, a.notificationSvc, a.logger)
	srvCfg := server.Config{
		Port:           cfg.Port,
		AllowedOrigins: cfg.AllowedOrigins,
		Metrics:        a.metrics.Handler(),
	}
	if a.telemetry.Enabled() {
		srvCfg.TracerProvider = a.telemetry.TracerProvider()
	}
	srv := server.New(apiSrv, srvCfg, a.logger)

	err = srv.Run(ctx)
	if dropped := a.events.Dropped(); dropped > 0 {
		a.logger.Warn("order events dropped", "count", dropped)
	}
	return err
}
