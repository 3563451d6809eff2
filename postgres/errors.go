package postgres

import "errors"

var (
	// ErrDBRequired is returned when a nil pool is provided.
	ErrDBRequired = errors.New("skiplock postgres: db is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("skiplock postgres: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("skiplock postgres: invalid table name")
)
