package mysql

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
