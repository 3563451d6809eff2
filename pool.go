package skiplock

import (
	"context"
	"fmt"
	"sync"
)

// Pool is a fixed set of worker goroutines shared by every pass of a Cycle.
// Its size never changes after NewPool.
type Pool struct {
	workers int
	tasks   chan func()
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// Outcome is the typed result of one dispatched unit of work.
type Outcome[R any] struct {
	Value R
	Err   error
}

// NewPool starts a pool with the given number of workers. Values below one start a single worker.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func()),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.workers
}

// Close stops accepting work, lets running tasks finish and waits for every worker to exit.
// It is safe to call more than once.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()

		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
	}
}

// submit hands task to an idle worker, blocking while all workers are busy.
func (p *Pool) submit(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch runs fn once per input on the pool and waits for all of them.
// The returned outcomes are in input order. A panicking fn yields an ErrTaskPanic outcome,
// and inputs that could not be submitted carry the submission error.
func Dispatch[T, R any](ctx context.Context, p *Pool, inputs []T, fn func(context.Context, T) (R, error)) []Outcome[R] {
	outcomes := make([]Outcome[R], len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					outcomes[i] = Outcome[R]{Err: fmt.Errorf("%w: %v", ErrTaskPanic, rec)}
				}
			}()

			value, err := fn(ctx, input)
			outcomes[i] = Outcome[R]{Value: value, Err: err}
		}

		if err := p.submit(ctx, task); err != nil {
			outcomes[i] = Outcome[R]{Err: err}
			wg.Done()
		}
	}
	wg.Wait()

	return outcomes
}
