package postgres

import (
	"fmt"

	"github.com/velmie/skiplock/internal/sqlname"
)

func sanitizeTableName(name string) (string, error) {
	if name == "" {
		return "", ErrTableNameRequired
	}
	if !sqlname.Valid(name) {
		return "", fmt.Errorf("%w: %s", ErrInvalidTableName, name)
	}

	return name, nil
}

// indexName derives the status index name from a possibly schema-qualified table.
func indexName(table string) string {
	return "idx_" + sqlname.Flatten(table) + "_status_id"
}
