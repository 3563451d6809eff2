package skiplock

import "context"

// TxFunc is a unit of work run inside a transaction scope.
type TxFunc[T any] func(ctx context.Context, tx T) error

// Store persists items. T is the backend transaction handle, such as *sql.Tx or pgx.Tx.
//
// Claim and batch operations run inside a caller-owned scope opened by WithTx.
// PersistOne and InsertBatch manage their own short transactions.
type Store[T any] interface {
	// WithTx runs fn in a transaction. It commits when fn returns nil and rolls back when fn
	// returns an error or panics. The connection is released on every path.
	WithTx(ctx context.Context, fn TxFunc[T]) error
	// ClaimPending locks PENDING rows, skipping rows locked by other transactions.
	// A limit <= 0 selects every unlocked PENDING row. Callers must not assume an order.
	ClaimPending(ctx context.Context, tx T, limit int) ([]Item, error)
	// PersistBatch moves every item one step to status `to`, each update guarded by the item's
	// current version. If any row does not match, it returns a *ConsistencyError naming them.
	PersistBatch(ctx context.Context, tx T, items []Item, to Status) ([]Item, error)
	// PersistOne moves a single item to status `to` under the same version guard. A version
	// mismatch returns ok=false with a nil error and leaves the stored row unchanged.
	PersistOne(ctx context.Context, item Item, to Status) (updated Item, ok bool, err error)
	// InsertBatch stores fresh PENDING items at version 0.
	InsertBatch(ctx context.Context, items []Item) error
}

// StatusCounter reports how many stored items are in each status.
type StatusCounter interface {
	// CountByStatus returns item counts keyed by status. Missing keys mean zero.
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// Transition applies to to every item, stopping at the first invalid step.
// Backends use it to compute the rows a batched update writes.
func Transition(items []Item, to Status) ([]Item, error) {
	out := make([]Item, len(items))
	for i, item := range items {
		next, err := item.Transition(to)
		if err != nil {
			return nil, err
		}
		out[i] = next
	}

	return out, nil
}
