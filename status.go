package skiplock

import (
	"database/sql/driver"
	"fmt"
)

// Status represents the lifecycle state of an item.
//
//nolint:recvcheck // Scan requires a pointer receiver, Value uses value receiver for driver.Valuer.
type Status string

const (
	// StatusPending indicates the item waits to be claimed.
	StatusPending Status = "PENDING"
	// StatusClaimed indicates a consumer reserved the item and owns its completion.
	StatusClaimed Status = "CLAIMED"
	// StatusDone indicates the item was processed. It is terminal.
	StatusDone Status = "DONE"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusClaimed, StatusDone}

// ParseStatus converts a stored value into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(value) {
	case StatusPending, StatusClaimed, StatusDone:
		return Status(value), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, value)
	}
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// next returns the only status s may move to.
func (s Status) next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusClaimed, true
	case StatusClaimed:
		return StatusDone, true
	default:
		return "", false
	}
}

// Scan implements sql.Scanner.
func (s *Status) Scan(src any) error {
	switch value := src.(type) {
	case string:
		parsed, err := ParseStatus(value)
		if err != nil {
			return err
		}
		*s = parsed

		return nil
	case []byte:
		parsed, err := ParseStatus(string(value))
		if err != nil {
			return err
		}
		*s = parsed

		return nil
	default:
		return fmt.Errorf("skiplock: unsupported status type %T: %w", src, ErrInvalidStatus)
	}
}

// Value implements driver.Valuer.
func (s Status) Value() (driver.Value, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return nil, err
	}

	return string(s), nil
}
