package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velmie/skiplock"
)

// Executor allows inserting within an existing transaction.
type Executor interface {
	// ExecContext executes a statement with the provided context.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store implements skiplock.Store on MySQL using SKIP LOCKED claims and versioned updates.
type Store struct {
	db      *sql.DB
	cfg     Config
	queries queries
	table   string
}

var _ skiplock.Store[*sql.Tx] = (*Store)(nil)
var _ skiplock.StatusCounter = (*Store)(nil)

// NewStore constructs a MySQL store with validated configuration.
func NewStore(db *sql.DB, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, ErrDBRequired
	}

	var cfg Config
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	table, err := sanitizeTableName(cfg.Table)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		cfg:     cfg,
		queries: newQueries(table, cfg.Ordered),
		table:   table,
	}, nil
}

// MustNewStore constructs a MySQL store or panics on error.
func MustNewStore(db *sql.DB, opts ...Option) *Store {
	store, err := NewStore(db, opts...)
	if err != nil {
		panic(err)
	}

	return store
}

// Table returns the sanitized table name.
func (s *Store) Table() string {
	return s.table
}

// WithTx runs fn in a READ COMMITTED transaction.
func (s *Store) WithTx(ctx context.Context, fn skiplock.TxFunc[*sql.Tx]) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return wrapErr("begin tx", err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback()
			panic(rec)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return rollbackWith(tx, err)
	}
	if err := tx.Commit(); err != nil {
		return wrapErr("commit", err)
	}

	return nil
}

// ClaimPending locks PENDING rows not locked by another transaction.
func (s *Store) ClaimPending(ctx context.Context, tx *sql.Tx, limit int) ([]skiplock.Item, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = tx.QueryContext(ctx, s.queries.selectPendingLimit, skiplock.StatusPending, limit)
	} else {
		rows, err = tx.QueryContext(ctx, s.queries.selectPending, skiplock.StatusPending)
	}
	if err != nil {
		return nil, wrapErr("select pending", err)
	}
	defer rows.Close()

	items := make([]skiplock.Item, 0)
	for rows.Next() {
		var item skiplock.Item
		if err := rows.Scan(&item.ID, &item.Payload, &item.Status, &item.Version); err != nil {
			return nil, fmt.Errorf("skiplock mysql: scan failed: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows", err)
	}

	return items, nil
}

// PersistBatch applies one versioned update per item on tx. Rows whose version moved are
// collected into a *skiplock.ConsistencyError after every statement has run.
func (s *Store) PersistBatch(ctx context.Context, tx *sql.Tx, items []skiplock.Item, to skiplock.Status) ([]skiplock.Item, error) {
	next, err := skiplock.Transition(items, to)
	if err != nil {
		return nil, err
	}

	var failed []skiplock.ID
	for i, item := range items {
		ok, err := s.updateVersioned(ctx, tx, item, next[i])
		if err != nil {
			return nil, wrapErr("persist batch", err)
		}
		if !ok {
			failed = append(failed, item.ID)
		}
	}
	if len(failed) > 0 {
		return nil, &skiplock.ConsistencyError{IDs: failed}
	}

	return next, nil
}

// PersistOne applies a single autocommitted versioned update.
func (s *Store) PersistOne(ctx context.Context, item skiplock.Item, to skiplock.Status) (skiplock.Item, bool, error) {
	next, err := item.Transition(to)
	if err != nil {
		return item, false, err
	}

	ok, err := s.updateVersioned(ctx, s.db, item, next)
	if err != nil {
		return item, false, wrapErr("persist one", err)
	}
	if !ok {
		return item, false, nil
	}

	return next, true, nil
}

// InsertBatch stores fresh PENDING items in one transaction.
func (s *Store) InsertBatch(ctx context.Context, items []skiplock.Item) error {
	if len(items) == 0 {
		return nil
	}

	return s.WithTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.InsertWith(ctx, tx, items)
	})
}

// InsertWith inserts items using the provided executor (transaction preferred).
func (s *Store) InsertWith(ctx context.Context, exec Executor, items []skiplock.Item) error {
	if exec == nil {
		return ErrExecutorRequired
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}

	for start := 0; start < len(items); start += s.cfg.MaxInsertRows {
		end := min(start+s.cfg.MaxInsertRows, len(items))
		chunk := items[start:end]

		args := make([]any, 0, len(chunk)*insertColumns)
		for _, item := range chunk {
			args = append(args, item.ID, item.Payload, item.Status, item.Version)
		}
		if _, err := exec.ExecContext(ctx, s.queries.insert(len(chunk)), args...); err != nil {
			return wrapErr("insert", err)
		}
	}

	return nil
}

// CountByStatus returns item counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[skiplock.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.countByStatus)
	if err != nil {
		return nil, wrapErr("count by status", err)
	}
	defer rows.Close()

	counts := make(map[skiplock.Status]int, len(skiplock.Statuses))
	for rows.Next() {
		var (
			status skiplock.Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("skiplock mysql: scan failed: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows", err)
	}

	return counts, nil
}

func (s *Store) updateVersioned(ctx context.Context, exec Executor, current, next skiplock.Item) (bool, error) {
	res, err := exec.ExecContext(ctx, s.queries.updateVersioned, next.Payload, next.Status, current.ID, current.Version)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected == 1, nil
}

func rollbackWith(tx *sql.Tx, err error) error {
	rollbackErr := tx.Rollback()
	if rollbackErr == nil || errors.Is(rollbackErr, sql.ErrTxDone) {
		return err
	}

	return errors.Join(err, fmt.Errorf("skiplock mysql: rollback failed: %w", rollbackErr))
}
