package mysql

import (
	"fmt"
)

const schemaTemplate = `CREATE TABLE IF NOT EXISTS %s (
	id BINARY(16) NOT NULL,
	payload TEXT NOT NULL,
	status VARCHAR(16) NOT NULL DEFAULT 'PENDING',
	version BIGINT NOT NULL DEFAULT 0,
	PRIMARY KEY (id),
	INDEX idx_status_id (status, id)
);`

// Schema returns the CREATE TABLE statement for an items table.
func Schema(table string) (string, error) {
	name, err := sanitizeTableName(table)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(schemaTemplate, name), nil
}
