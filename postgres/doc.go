// Package postgres provides a PostgreSQL store for skiplock built on pgx.
//
// Claims run in a READ COMMITTED transaction with SELECT ... FOR UPDATE SKIP LOCKED.
// Batched versioned updates and inserts are pipelined with pgx.Batch.
package postgres
