package mysql

import (
	"errors"
	"strings"
	"testing"
)

func TestSchema(t *testing.T) {
	schema, err := Schema("items")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS items",
		"id BINARY(16) NOT NULL",
		"status VARCHAR(16) NOT NULL DEFAULT 'PENDING'",
		"version BIGINT NOT NULL DEFAULT 0",
		"INDEX idx_status_id (status, id)",
	} {
		if !strings.Contains(schema, want) {
			t.Fatalf("expected %q in schema", want)
		}
	}
}

func TestSchemaInvalidTable(t *testing.T) {
	if _, err := Schema("items`"); !errors.Is(err, ErrInvalidTableName) {
		t.Fatalf("expected invalid table name, got %v", err)
	}
}
