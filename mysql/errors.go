package mysql

import "errors"

var (
	// ErrDBRequired is returned when a nil *sql.DB is provided.
	ErrDBRequired = errors.New("skiplock mysql: db is required")
	// ErrExecutorRequired is returned when InsertWith is called with a nil executor.
	ErrExecutorRequired = errors.New("skiplock mysql: executor is required")
	// ErrTableNameRequired is returned when the table name is empty.
	ErrTableNameRequired = errors.New("skiplock mysql: table name is required")
	// ErrInvalidTableName is returned when the table name has disallowed characters.
	ErrInvalidTableName = errors.New("skiplock mysql: invalid table name")
)
