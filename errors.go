package skiplock

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidID is returned when parsing or scanning an ID fails.
	ErrInvalidID = errors.New("skiplock id is invalid")
	// ErrInvalidStatus is returned when a stored status is not a known lifecycle state.
	ErrInvalidStatus = errors.New("skiplock status is invalid")
	// ErrInvalidTransition is returned when an item is asked to move anywhere but one step forward.
	ErrInvalidTransition = errors.New("skiplock status transition is invalid")
	// ErrInvalidItem is returned when an item cannot be inserted as a fresh row.
	ErrInvalidItem = errors.New("skiplock item is invalid")
	// ErrVersionConflict signals that a compare-and-swap update matched no row.
	ErrVersionConflict = errors.New("skiplock version conflict")
	// ErrTransient marks connectivity, timeout and lock-contention failures of the store.
	ErrTransient = errors.New("skiplock store temporarily unavailable")
	// ErrPoolClosed is returned when work is submitted to a closed Pool.
	ErrPoolClosed = errors.New("skiplock pool is closed")
	// ErrTaskPanic indicates a pool task panicked.
	ErrTaskPanic = errors.New("skiplock task panic")
	// ErrSchedulerRunning is returned when Start is called twice.
	ErrSchedulerRunning = errors.New("skiplock scheduler is already running")
)

// ConsistencyError reports the items of a batched compare-and-swap update whose stored version no
// longer matched. The transaction that issued the update must be rolled back.
type ConsistencyError struct {
	IDs []ID
}

// Error implements error.
func (e *ConsistencyError) Error() string {
	ids := make([]string, 0, len(e.IDs))
	for _, id := range e.IDs {
		ids = append(ids, id.String())
	}

	return fmt.Sprintf("skiplock: could not update items, ids: [%s]", strings.Join(ids, ", "))
}

// Unwrap makes errors.Is(err, ErrVersionConflict) hold.
func (e *ConsistencyError) Unwrap() error {
	return ErrVersionConflict
}

// TransientError wraps a store failure that may succeed when retried later,
// such as a dropped connection, a timeout or a lock wait timeout.
type TransientError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransientError) Error() string {
	return fmt.Sprintf("skiplock: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying driver error.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrTransient) hold.
func (e *TransientError) Is(target error) bool {
	return target == ErrTransient
}
