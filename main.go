package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dhcgn/mbox-to-postgres/cmd"
	"github.com/dhcgn/mbox-to-postgres/config"
	"github.com/dhcgn/mbox-to-postgres/metrics"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mbox-to-postgres",
		Short:         "Load sender, domain and date of every mbox message into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cmd)
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			logger, cleanup, err := setupLogger(cfg, runID)
			if err != nil {
				return err
			}
			defer func() {
				_ = cleanup()
			}()

			slog.SetDefault(logger)
			logger.Info("starting mbox-to-postgres", "mbox", cfg.MboxPath)

			return run(cmd.Context(), cfg, logger)
		},
	}

	if err := config.RegisterFlags(rootCmd); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register CLI flags: %v\n", err)
		os.Exit(1)
	}
	rootCmd.AddCommand(cmd.NewStatsCommand())

	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// exitCode maps the run result to the process status.
func exitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	started := time.Now()
	m := metrics.New()

	err := newLoader().load(ctx, cfg, logger, m)

	if cfg.MetricsFile != "" {
		m.Finish(err, time.Now(), time.Since(started))
		if werr := m.WriteTextfile(cfg.MetricsFile); werr != nil {
			logger.Warn("metrics not written", "path", cfg.MetricsFile, "err", werr)
		}
	}
	return err
}
