package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/velmie/skiplock/cmd/internal/config"
)

func schemaCmd() *cobra.Command {
	var apply bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the items table DDL for SKIPLOCK_DRIVER, or apply it with --apply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if !apply {
				ddl, err := schemaFor(cfg)
				if err != nil {
					return err
				}
				fmt.Fprintln(os.Stdout, ddl)
				return nil
			}

			return runApplySchema(cmd.Context(), cfg)
		},
	}
	cmd.Flags().BoolVar(&apply, "apply", false, "execute the DDL against SKIPLOCK_DSN")

	return cmd
}

func runApplySchema(ctx context.Context, cfg *config.Config) (err error) {
	logger := newLogger(cfg)
	slog.SetDefault(logger)

	app, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if shutdownErr := app.shutdown(context.WithoutCancel(ctx)); shutdownErr != nil && err == nil {
			err = shutdownErr
		}
	}()

	if err := app.backend.applySchema(ctx); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	logger.Info("skiplock schema applied", "driver", cfg.Driver, "table", cfg.Table)

	return nil
}
