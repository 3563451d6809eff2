package skiplock

import (
	"fmt"
	"time"
)

// Failure describes a claimed item whose completion did not persist.
type Failure struct {
	ID  ID
	Err error
}

// Report summarizes one pass.
type Report struct {
	// Total is the number of items the pass claimed.
	Total int
	// Succeeded is the number of claimed items that reached DONE.
	Succeeded int
	// Abandoned lists the claimed items left in CLAIMED.
	Abandoned []Failure
	StartedAt time.Time
	Duration  time.Duration
}

// String renders the report as "succeeded/total".
func (r Report) String() string {
	return fmt.Sprintf("%d/%d", r.Succeeded, r.Total)
}

// Empty reports whether the pass claimed nothing.
func (r Report) Empty() bool {
	return r.Total == 0
}
