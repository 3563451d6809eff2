package skiplock

import "time"

const (
	defaultInitialDelay = 2 * time.Second
	defaultPeriod       = 3 * time.Second
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock uses the system time in UTC.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// CycleConfig defines how a Cycle claims and completes items.
type CycleConfig struct {
	// ClaimLimit caps the rows locked per pass. Zero or less claims every unlocked PENDING row.
	ClaimLimit      int
	Handler         Handler
	Clock           Clock
	Logger          Logger
	Metrics         Metrics
	BacklogInterval time.Duration
}

func (c CycleConfig) withDefaults() CycleConfig {
	if c.ClaimLimit < 0 {
		c.ClaimLimit = 0
	}
	if c.Handler == nil {
		c.Handler = HandlerFunc(nopHandler)
	}
	if c.Clock == nil {
		c.Clock = SystemClock{}
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}
	if c.Metrics == nil {
		c.Metrics = NopMetrics{}
	}

	return c
}

// CycleOption configures Cycle behavior.
type CycleOption func(*CycleConfig)

// WithClaimLimit caps the number of rows one pass locks.
func WithClaimLimit(limit int) CycleOption {
	return func(c *CycleConfig) {
		c.ClaimLimit = limit
	}
}

// WithHandler sets the work performed for each claimed item before it is marked DONE.
func WithHandler(handler Handler) CycleOption {
	return func(c *CycleConfig) {
		c.Handler = handler
	}
}

// WithClock sets the Cycle clock.
func WithClock(clock Clock) CycleOption {
	return func(c *CycleConfig) {
		c.Clock = clock
	}
}

// WithLogger sets the cycle logger.
func WithLogger(logger Logger) CycleOption {
	return func(c *CycleConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the cycle metrics recorder.
func WithMetrics(metrics Metrics) CycleOption {
	return func(c *CycleConfig) {
		c.Metrics = metrics
	}
}

// WithBacklogInterval sets the minimum interval between backlog samples.
// Sampling needs a store implementing StatusCounter and is disabled by default.
func WithBacklogInterval(interval time.Duration) CycleOption {
	return func(c *CycleConfig) {
		c.BacklogInterval = interval
	}
}

// SchedulerConfig defines when a Scheduler fires its pass.
type SchedulerConfig struct {
	InitialDelay time.Duration
	Period       time.Duration
	Logger       Logger
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.Period <= 0 {
		c.Period = defaultPeriod
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}

	return c
}

// SchedulerOption configures Scheduler behavior.
type SchedulerOption func(*SchedulerConfig)

// WithInitialDelay sets the wait before the first pass. Zero fires immediately.
func WithInitialDelay(delay time.Duration) SchedulerOption {
	return func(c *SchedulerConfig) {
		c.InitialDelay = delay
	}
}

// WithPeriod sets the interval between pass starts.
func WithPeriod(period time.Duration) SchedulerOption {
	return func(c *SchedulerConfig) {
		c.Period = period
	}
}

// WithSchedulerLogger sets the scheduler logger.
func WithSchedulerLogger(logger Logger) SchedulerOption {
	return func(c *SchedulerConfig) {
		c.Logger = logger
	}
}
