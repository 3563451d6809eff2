package skiplock

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestSchedulerPassesNeverOverlap(t *testing.T) {
	var active, peak, fired int32
	pass := PassFunc(func(context.Context) (Report, error) {
		if n := atomic.AddInt32(&active, 1); n > atomic.LoadInt32(&peak) {
			atomic.StoreInt32(&peak, n)
		}
		atomic.AddInt32(&fired, 1)
		time.Sleep(15 * time.Millisecond)
		atomic.AddInt32(&active, -1)

		return Report{}, nil
	})

	scheduler := NewScheduler(pass, WithInitialDelay(0), WithPeriod(time.Millisecond))
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := scheduler.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if atomic.LoadInt32(&peak) != 1 {
		t.Fatalf("expected serialized passes, peak %d", peak)
	}
	if atomic.LoadInt32(&fired) < 2 {
		t.Fatalf("expected several passes, got %d", fired)
	}
}

func TestSchedulerWaitsInitialDelay(t *testing.T) {
	fired := make(chan time.Time, 1)
	pass := PassFunc(func(context.Context) (Report, error) {
		select {
		case fired <- time.Now():
		default:
		}
		return Report{}, nil
	})

	scheduler := NewScheduler(pass, WithInitialDelay(40*time.Millisecond), WithPeriod(time.Hour))
	start := time.Now()
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer scheduler.Stop()

	select {
	case at := <-fired:
		if at.Sub(start) < 40*time.Millisecond {
			t.Fatalf("pass fired after %s, before the initial delay", at.Sub(start))
		}
	case <-time.After(time.Second):
		t.Fatalf("pass never fired")
	}
}

func TestSchedulerCanceledDuringInitialDelay(t *testing.T) {
	var fired int32
	pass := PassFunc(func(context.Context) (Report, error) {
		atomic.AddInt32(&fired, 1)
		return Report{}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewScheduler(pass).Run(ctx); err != nil {
		t.Fatalf("expected nil on cancel, got %v", err)
	}
	if atomic.LoadInt32(&fired) != 0 {
		t.Fatalf("expected no pass, got %d", fired)
	}
}

func TestSchedulerStopWaitsForInFlightPass(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var passCanceled atomic.Bool
	pass := PassFunc(func(ctx context.Context) (Report, error) {
		close(started)
		<-release
		passCanceled.Store(ctx.Err() != nil)

		return Report{}, nil
	})

	scheduler := NewScheduler(pass, WithInitialDelay(0), WithPeriod(time.Hour))
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-started

	stopped := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatalf("stop returned while a pass was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("stop did not return after the pass finished")
	}
	if passCanceled.Load() {
		t.Fatalf("expected pass context to stay live during stop")
	}
}

func TestSchedulerContinuesAfterFailures(t *testing.T) {
	var fired int32
	logger := &captureLogger{}
	pass := PassFunc(func(context.Context) (Report, error) {
		if atomic.AddInt32(&fired, 1) == 2 {
			panic("boom")
		}
		return Report{}, errors.New("claim failed")
	})

	scheduler := NewScheduler(pass, WithInitialDelay(0), WithPeriod(2*time.Millisecond), WithSchedulerLogger(logger))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_ = scheduler.Run(ctx)

	if atomic.LoadInt32(&fired) < 3 {
		t.Fatalf("expected the schedule to survive failures, got %d passes", fired)
	}
	if _, ok := logger.find("skiplock pass failed"); !ok {
		t.Fatalf("expected pass failure to be logged")
	}
	if _, ok := logger.find("skiplock pass panic"); !ok {
		t.Fatalf("expected pass panic to be logged")
	}
}

func TestSchedulerStartTwice(t *testing.T) {
	scheduler := NewScheduler(PassFunc(func(context.Context) (Report, error) { return Report{}, nil }), WithPeriod(time.Hour))
	if err := scheduler.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer scheduler.Stop()

	if err := scheduler.Start(context.Background()); !errors.Is(err, ErrSchedulerRunning) {
		t.Fatalf("expected already running, got %v", err)
	}
}

func TestSchedulerStopWithoutStart(_ *testing.T) {
	NewScheduler(PassFunc(func(context.Context) (Report, error) { return Report{}, nil })).Stop()
}

func TestNewSchedulerPanicsOnNilPass(t *testing.T) {
	assertPanics(t, func() { NewScheduler(nil) })
}
