package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/platform/logger"
	"github.com/phrazzld/roadmap-api/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return fmt.Errorf("failed to set up logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := newApplication(ctx, cfg, log, migrate)
			if err != nil {
				return err
			}
			defer app.cleanup()

			return app.startHTTPServer(ctx, app.setupRouter())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply pending migrations before serving (postgres usage backend)")
	return cmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Manage the usage counter schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			cfg, err := config.LoadUnchecked()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if cfg.Database.URL == "" {
				return config.ErrDatabaseURLRequired
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return err
			}

			db, err := postgres.Open(cmd.Context(), cfg.Database.URL, log)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, command, log)
		},
	}
}

func newUsageCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print today's roadmap request count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadUnchecked()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			log, err := logger.Setup(cfg.Server)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			limiter, closeFn, err := newUsageLimiter(ctx, cfg, log, nil)
			if err != nil {
				return err
			}
			defer closeFn()

			rec, err := limiter.Snapshot(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d requests used (%s)\n",
				rec.Date, rec.Count, limiter.Limit(), cfg.Usage.Timezone)
			return nil
		},
	}
}
