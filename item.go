package skiplock

import "fmt"

// Item is a unit of queued work. It is a value: transitions return a new Item and leave the
// receiver untouched, so the version a caller holds is always the one it read from the store.
type Item struct {
	ID      ID
	Payload string
	Status  Status
	// Version starts at 0 and grows by one with every persisted mutation.
	Version int64
}

// NewItem returns a PENDING item at version 0.
func NewItem(id ID, payload string) Item {
	return Item{ID: id, Payload: payload, Status: StatusPending}
}

// Claim moves a PENDING item to CLAIMED.
func (it Item) Claim() (Item, error) {
	if it.Status != StatusPending {
		return it, it.transitionErr(StatusClaimed)
	}

	return it.Transition(StatusClaimed)
}

// Complete moves a CLAIMED item to DONE.
func (it Item) Complete() (Item, error) {
	if it.Status != StatusClaimed {
		return it, it.transitionErr(StatusDone)
	}

	return it.Transition(StatusDone)
}

// Transition advances the item by exactly one lifecycle step and bumps the version.
func (it Item) Transition(to Status) (Item, error) {
	next, ok := it.Status.next()
	if !ok || next != to {
		return it, it.transitionErr(to)
	}

	it.Status = to
	it.Version++

	return it, nil
}

// Validate reports whether a freshly produced item can be inserted.
func (it Item) Validate() error {
	if it.ID.IsZero() {
		return fmt.Errorf("%w: id is required", ErrInvalidItem)
	}
	if it.Status != StatusPending {
		return fmt.Errorf("%w: status must be %s, got %q", ErrInvalidItem, StatusPending, it.Status)
	}
	if it.Version != 0 {
		return fmt.Errorf("%w: version must be 0, got %d", ErrInvalidItem, it.Version)
	}

	return nil
}

func (it Item) transitionErr(to Status) error {
	return fmt.Errorf("%w: %s -> %s (id %s)", ErrInvalidTransition, it.Status, to, it.ID)
}
