package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/velmie/skiplock"
)

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store implements skiplock.Store on PostgreSQL using SKIP LOCKED claims and versioned updates.
type Store struct {
	db      DB
	cfg     Config
	queries queries
	table   string
}

var _ skiplock.Store[pgx.Tx] = (*Store)(nil)
var _ skiplock.StatusCounter = (*Store)(nil)

// NewStore constructs a PostgreSQL store. db is usually a *pgxpool.Pool.
func NewStore(db DB, opts ...Option) (*Store, error) {
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

// Table returns the sanitized table name.
func (s *Store) Table() string {
	return s.table
}

// WithTx runs fn in a READ COMMITTED transaction.
func (s *Store) WithTx(ctx context.Context, fn skiplock.TxFunc[pgx.Tx]) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return wrapErr("begin tx", err)
	}
	defer func() {
		if rec := recover(); rec != nil {
			_ = tx.Rollback(context.WithoutCancel(ctx))
			panic(rec)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return rollbackWith(ctx, tx, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit", err)
	}

	return nil
}

// ClaimPending locks PENDING rows not locked by another transaction.
func (s *Store) ClaimPending(ctx context.Context, tx pgx.Tx, limit int) ([]skiplock.Item, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if limit > 0 {
		rows, err = tx.Query(ctx, s.queries.selectPendingLimit, skiplock.StatusPending.String(), limit)
	} else {
		rows, err = tx.Query(ctx, s.queries.selectPending, skiplock.StatusPending.String())
	}
	if err != nil {
		return nil, wrapErr("select pending", err)
	}
	defer rows.Close()

	items := make([]skiplock.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows", err)
	}

	return items, nil
}

// PersistBatch pipelines one versioned update per item on tx. Rows whose version moved are
// collected into a *skiplock.ConsistencyError.
func (s *Store) PersistBatch(ctx context.Context, tx pgx.Tx, items []skiplock.Item, to skiplock.Status) ([]skiplock.Item, error) {
	next, err := skiplock.Transition(items, to)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return next, nil
	}

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(s.queries.updateVersioned, next[i].Payload, next[i].Status.String(), uuid.UUID(item.ID), item.Version)
	}

	results := tx.SendBatch(ctx, batch)
	var failed []skiplock.ID
	for _, item := range items {
		tag, err := results.Exec()
		if err != nil {
			return nil, errors.Join(wrapErr("persist batch", err), results.Close())
		}
		if tag.RowsAffected() != 1 {
			failed = append(failed, item.ID)
		}
	}
	if err := results.Close(); err != nil {
		return nil, wrapErr("persist batch", err)
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

	tag, err := s.db.Exec(ctx, s.queries.updateVersioned, next.Payload, next.Status.String(), uuid.UUID(item.ID), item.Version)
	if err != nil {
		return item, false, wrapErr("persist one", err)
	}
	if tag.RowsAffected() != 1 {
		return item, false, nil
	}

	return next, true, nil
}

// InsertBatch stores fresh PENDING items in one transaction.
func (s *Store) InsertBatch(ctx context.Context, items []skiplock.Item) error {
	if len(items) == 0 {
		return nil
	}

	return s.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return s.InsertTx(ctx, tx, items)
	})
}

// InsertTx inserts items within the caller's transaction.
func (s *Store) InsertTx(ctx context.Context, tx pgx.Tx, items []skiplock.Item) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
		batch.Queue(s.queries.insert, uuid.UUID(item.ID), item.Payload, item.Status.String(), item.Version)
	}
	if batch.Len() == 0 {
		return nil
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return wrapErr("insert", err)
	}

	return nil
}

// CountByStatus returns item counts grouped by status.
func (s *Store) CountByStatus(ctx context.Context) (map[skiplock.Status]int, error) {
	rows, err := s.db.Query(ctx, s.queries.countByStatus)
	if err != nil {
		return nil, wrapErr("count by status", err)
	}
	defer rows.Close()

	counts := make(map[skiplock.Status]int, len(skiplock.Statuses))
	for rows.Next() {
		var (
			raw   string
			count int
		)
		if err := rows.Scan(&raw, &count); err != nil {
			return nil, fmt.Errorf("skiplock postgres: scan failed: %w", err)
		}
		status, err := skiplock.ParseStatus(raw)
		if err != nil {
			return nil, err
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("rows", err)
	}

	return counts, nil
}

func scanItem(rows pgx.Rows) (skiplock.Item, error) {
	var (
		id      uuid.UUID
		payload string
		status  string
		version int64
	)
	if err := rows.Scan(&id, &payload, &status, &version); err != nil {
		return skiplock.Item{}, fmt.Errorf("skiplock postgres: scan failed: %w", err)
	}
	parsed, err := skiplock.ParseStatus(status)
	if err != nil {
		return skiplock.Item{}, err
	}

	return skiplock.Item{ID: skiplock.ID(id), Payload: payload, Status: parsed, Version: version}, nil
}

func rollbackWith(ctx context.Context, tx pgx.Tx, err error) error {
	rollbackErr := tx.Rollback(context.WithoutCancel(ctx))
	if rollbackErr == nil || errors.Is(rollbackErr, pgx.ErrTxClosed) {
		return err
	}

	return errors.Join(err, fmt.Errorf("skiplock postgres: rollback failed: %w", rollbackErr))
}
