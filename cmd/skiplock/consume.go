package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/velmie/skiplock"
	"github.com/velmie/skiplock/cmd/internal/config"
)

func consumeCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Claim and complete PENDING items every SKIPLOCK_PERIOD",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsume(cmd.Context(), once)
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")

	return cmd
}

func runConsume(parent context.Context, once bool) (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := app.shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	pass := app.pass(logHandler(logger))
	if once {
		report, err := pass.Run(ctx)
		if err != nil {
			return err
		}
		logger.Info("skiplock consume finished", "report", report.String(), "abandoned", len(report.Abandoned))
		return nil
	}

	app.scheduler = skiplock.NewScheduler(pass,
		skiplock.WithInitialDelay(cfg.InitialDelay),
		skiplock.WithPeriod(cfg.Period),
		skiplock.WithSchedulerLogger(logger),
	)
	logger.Info("skiplock consumer started",
		"driver", cfg.Driver,
		"table", cfg.Table,
		"workers", cfg.Workers,
		"period", cfg.Period,
	)

	if err := app.scheduler.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	logger.Info("skiplock consumer stopping")

	return nil
}

// logHandler stands in for real delivery: it only records the payload.
func logHandler(logger *slog.Logger) skiplock.Handler {
	return skiplock.HandlerFunc(func(_ context.Context, item skiplock.Item) error {
		logger.Debug("skiplock item handled", "id", item.ID, "payload", item.Payload)
		return nil
	})
}
