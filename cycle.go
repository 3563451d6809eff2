package skiplock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Cycle runs claim-dispatch-complete passes against a Store using a shared Pool.
// T is the store's transaction handle.
type Cycle[T any] struct {
	store Store[T]
	pool  *Pool
	cfg   CycleConfig

	backlogMu sync.Mutex
	backlogAt time.Time
}

// NewCycle constructs a Cycle with defaults and optional settings.
// The pool is borrowed: closing it stays the caller's responsibility.
func NewCycle[T any](store Store[T], pool *Pool, opts ...CycleOption) *Cycle[T] {
	if store == nil {
		panic("skiplock: nil Store")
	}
	if pool == nil {
		panic("skiplock: nil Pool")
	}

	var cfg CycleConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Cycle[T]{
		store: store,
		pool:  pool,
		cfg:   cfg,
	}
}

// Run executes one pass. Items are claimed in a single transaction that commits before any
// completion starts, then each item is completed on the pool in its own short transaction.
//
// A claim-phase failure aborts the pass before dispatch and is returned. Per-item completion
// failures never fail the pass: they are logged and listed in Report.Abandoned, and the item
// stays CLAIMED.
func (c *Cycle[T]) Run(ctx context.Context) (Report, error) {
	start := c.cfg.Clock.Now()
	report := Report{StartedAt: start}
	defer func() {
		c.cfg.Metrics.ObservePassDuration(c.cfg.Clock.Now().Sub(start))
	}()

	claimed, err := c.claim(ctx)
	if err != nil {
		c.cfg.Metrics.AddPassFailures(1)

		return report, fmt.Errorf("skiplock claim phase failed: %w", err)
	}
	c.maybeRecordBacklog(ctx)

	if len(claimed) == 0 {
		report.Duration = c.cfg.Clock.Now().Sub(start)
		c.cfg.Logger.Debug("skiplock no pending items")

		return report, nil
	}
	c.cfg.Metrics.AddClaimed(len(claimed))

	outcomes := Dispatch(ctx, c.pool, claimed, c.complete)

	report.Total = len(claimed)
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			if errors.Is(outcome.Err, ErrTaskPanic) {
				c.cfg.Logger.Error("skiplock completion panic", "id", claimed[i].ID, "err", outcome.Err)
			}
			report.Abandoned = append(report.Abandoned, Failure{ID: claimed[i].ID, Err: outcome.Err})

			continue
		}
		report.Succeeded++
	}
	report.Duration = c.cfg.Clock.Now().Sub(start)

	c.cfg.Metrics.AddCompleted(report.Succeeded)
	c.cfg.Metrics.AddAbandoned(len(report.Abandoned))
	c.cfg.Logger.Info("skiplock pass completed",
		"report", report.String(),
		"succeeded", report.Succeeded,
		"total", report.Total,
		"duration", report.Duration,
	)

	return report, nil
}

func (c *Cycle[T]) claim(ctx context.Context) ([]Item, error) {
	var claimed []Item
	err := c.store.WithTx(ctx, func(ctx context.Context, tx T) error {
		pending, err := c.store.ClaimPending(ctx, tx, c.cfg.ClaimLimit)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		claimed, err = c.store.PersistBatch(ctx, tx, pending, StatusClaimed)

		return err
	})
	if err != nil {
		return nil, err
	}

	return claimed, nil
}

// complete runs the handler for one claimed item and moves it to DONE under its version guard.
func (c *Cycle[T]) complete(ctx context.Context, item Item) (Item, error) {
	if err := c.cfg.Handler.Handle(ctx, item); err != nil {
		c.cfg.Logger.Error("skiplock item handler failed", "id", item.ID, "err", err)

		return item, fmt.Errorf("skiplock handle %s: %w", item.ID, err)
	}

	done, ok, err := c.store.PersistOne(ctx, item, StatusDone)
	if err != nil {
		c.cfg.Logger.Error("skiplock item completion failed", "id", item.ID, "err", err)

		return item, fmt.Errorf("skiplock complete %s: %w", item.ID, err)
	}
	if !ok {
		c.cfg.Logger.Warn("skiplock item version changed before completion", "id", item.ID, "version", item.Version)

		return item, fmt.Errorf("skiplock complete %s at version %d: %w", item.ID, item.Version, ErrVersionConflict)
	}
	c.cfg.Logger.Debug("skiplock item completed", "id", done.ID, "version", done.Version)

	return done, nil
}

func (c *Cycle[T]) maybeRecordBacklog(ctx context.Context) {
	counter, ok := c.store.(StatusCounter)
	if !ok {
		return
	}
	if c.cfg.BacklogInterval <= 0 {
		return
	}
	if ctx.Err() != nil {
		return
	}

	now := c.cfg.Clock.Now()
	c.backlogMu.Lock()
	nextAllowed := c.backlogAt.Add(c.cfg.BacklogInterval)
	if !c.backlogAt.IsZero() && now.Before(nextAllowed) {
		c.backlogMu.Unlock()

		return
	}
	c.backlogAt = now
	c.backlogMu.Unlock()

	counts, err := counter.CountByStatus(ctx)
	if err != nil {
		c.cfg.Logger.Warn("skiplock backlog count failed", "err", err)

		return
	}

	for _, status := range Statuses {
		c.cfg.Metrics.SetBacklog(status, counts[status])
	}
}
