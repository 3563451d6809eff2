package skiplock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Pass is one unit of scheduled work. *Cycle satisfies it.
type Pass interface {
	Run(ctx context.Context) (Report, error)
}

// PassFunc adapts a function to Pass.
type PassFunc func(ctx context.Context) (Report, error)

// Run implements Pass.
func (fn PassFunc) Run(ctx context.Context) (Report, error) {
	return fn(ctx)
}

// Scheduler fires a Pass after an initial delay and then at a fixed rate.
// Passes never overlap: a pass that overruns its period delays the next one,
// and missed ticks collapse into a single late pass.
type Scheduler struct {
	pass Pass
	cfg  SchedulerConfig

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a Scheduler with defaults and optional settings.
func NewScheduler(pass Pass, opts ...SchedulerOption) *Scheduler {
	if pass == nil {
		panic("skiplock: nil Pass")
	}

	cfg := SchedulerConfig{InitialDelay: defaultInitialDelay, Period: defaultPeriod}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg = cfg.withDefaults()

	return &Scheduler{pass: pass, cfg: cfg}
}

// Run blocks, firing passes until ctx is canceled. A pass already running when ctx is canceled
// is allowed to finish. Pass errors are logged and do not stop the schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.sleep(ctx, s.cfg.InitialDelay); err != nil {
		return cancelErr(err)
	}

	ticker := time.NewTicker(s.cfg.Period)
	defer ticker.Stop()

	for {
		if err := ctx.Err(); err != nil {
			return cancelErr(err)
		}
		s.fire(ctx)

		select {
		case <-ctx.Done():
			return cancelErr(ctx.Err())
		case <-ticker.C:
		}
	}
}

// Start runs the scheduler in a background goroutine.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return ErrSchedulerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	s.cancel = cancel
	s.done = done

	go func() {
		defer close(done)
		if err := s.Run(ctx); err != nil {
			s.cfg.Logger.Error("skiplock scheduler stopped", "err", err)
		}
	}()

	return nil
}

// Stop prevents further passes and waits for the in-flight pass, if any, to finish.
// It is a no-op when the scheduler was never started.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	if done == nil {
		return
	}
	cancel()
	<-done
}

func (s *Scheduler) fire(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.cfg.Logger.Error("skiplock pass panic", "err", fmt.Errorf("%w: %v", ErrTaskPanic, rec))
		}
	}()

	report, err := s.pass.Run(context.WithoutCancel(ctx))
	if err != nil {
		s.cfg.Logger.Error("skiplock pass failed", "err", err)

		return
	}
	s.cfg.Logger.Debug("skiplock pass finished", "report", report.String())
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func cancelErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}
