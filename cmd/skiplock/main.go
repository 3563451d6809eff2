// Command skiplock runs the SKIP LOCKED consumer demo against MySQL or PostgreSQL.
//
// Subcommands:
//
//	consume  run claim/complete passes on a fixed schedule until interrupted
//	produce  interactive prompt inserting PENDING items
//	schema   print or apply the items table DDL
//
// Configuration is read from SKIPLOCK_* environment variables.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/velmie/skiplock/cmd/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skiplock",
		Short:         "Concurrent consumers claiming rows with SELECT ... FOR UPDATE SKIP LOCKED",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	root.AddCommand(
		consumeCmd(),
		produceCmd(),
		schemaCmd(),
	)

	return root
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
