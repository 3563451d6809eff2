package skiplock

import "time"

// Metrics captures cycle-level telemetry.
type Metrics interface {
	// ObservePassDuration records the time a full pass took, claim through join.
	ObservePassDuration(duration time.Duration)
	// AddClaimed increments the count of items moved to CLAIMED.
	AddClaimed(count int)
	// AddCompleted increments the count of items moved to DONE.
	AddCompleted(count int)
	// AddAbandoned increments the count of claimed items whose completion failed.
	AddAbandoned(count int)
	// AddPassFailures increments the count of passes aborted in the claim phase.
	AddPassFailures(count int)
	// SetBacklog updates the number of stored items in the given status.
	SetBacklog(status Status, count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObservePassDuration implements Metrics.
func (NopMetrics) ObservePassDuration(time.Duration) {}

// AddClaimed implements Metrics.
func (NopMetrics) AddClaimed(int) {}

// AddCompleted implements Metrics.
func (NopMetrics) AddCompleted(int) {}

// AddAbandoned implements Metrics.
func (NopMetrics) AddAbandoned(int) {}

// AddPassFailures implements Metrics.
func (NopMetrics) AddPassFailures(int) {}

// SetBacklog implements Metrics.
func (NopMetrics) SetBacklog(Status, int) {}
