// Package mysql provides a MySQL 8.0+ store for skiplock.
//
// Claims use:
//   - READ COMMITTED isolation (to avoid gap locks)
//   - SELECT ... FOR UPDATE SKIP LOCKED
//   - ORDER BY id ASC unless disabled with WithOrdered(false)
//   - an optional LIMIT
//
// Every status change is a compare-and-swap on the version column. See Schema for the table layout.
package mysql
