package postgres

import "fmt"

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id UUID NOT NULL PRIMARY KEY,
	payload TEXT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	version BIGINT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS %s ON %s (status, id);`

// Schema returns the DDL for an items table and its status index.
func Schema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name, indexName(name), name), nil
}
