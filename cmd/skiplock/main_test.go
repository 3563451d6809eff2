package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/velmie/skiplock/cmd/internal/config"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"consume", "produce", "schema"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("expected subcommand %s, got %v %v", name, cmd, err)
		}
	}

	consume, _, _ := root.Find([]string{"consume"})
	if consume.Flags().Lookup("once") == nil {
		t.Fatalf("expected --once flag on consume")
	}
	schema, _, _ := root.Find([]string{"schema"})
	if schema.Flags().Lookup("apply") == nil {
		t.Fatalf("expected --apply flag on schema")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for raw, want := range cases {
		logger := newLogger(&config.Config{LogLevel: raw, LogFormat: "json"})
		if !logger.Enabled(context.Background(), want) {
			t.Fatalf("level %q: expected %s enabled", raw, want)
		}
		if want > slog.LevelDebug && logger.Enabled(context.Background(), want-4) {
			t.Fatalf("level %q: expected %s disabled", raw, want-4)
		}
	}
}

func TestSchemaForDriver(t *testing.T) {
	ddl, err := schemaFor(&config.Config{Driver: config.DriverMySQL, Table: "jobs"})
	if err != nil || !strings.Contains(ddl, "BINARY(16)") || !strings.Contains(ddl, "jobs") {
		t.Fatalf("unexpected mysql schema %q: %v", ddl, err)
	}

	ddl, err = schemaFor(&config.Config{Driver: config.DriverPostgres, Table: "jobs"})
	if err != nil || !strings.Contains(ddl, "UUID") {
		t.Fatalf("unexpected postgres schema %q: %v", ddl, err)
	}

	if _, err := schemaFor(&config.Config{Driver: "sqlite", Table: "jobs"}); !errors.Is(err, config.ErrUnknownDriver) {
		t.Fatalf("expected unknown driver, got %v", err)
	}
}
