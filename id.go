package skiplock

import (
	"crypto/rand"
	"database/sql/driver"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ID identifies an item. It is a UUID v7 held as 16 raw bytes: the leading 48 bits are a
// millisecond timestamp, so ids sort by creation time.
//
// MySQL stores it as BINARY(16) through Value; PostgreSQL stores it as UUID through UUID().
type ID [16]byte

// IsZero reports whether the ID was never assigned.
func (id ID) IsZero() bool {
	return id == ID{}
}

func (id ID) String() string {
	return uuid.UUID(id).String()
}

// UUID converts the ID for drivers that encode uuid.UUID natively.
func (id ID) UUID() uuid.UUID {
	return uuid.UUID(id)
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed

	return nil
}

// Scan accepts raw 16-byte columns and any textual form ParseID accepts. NULL is ErrInvalidID.
func (id *ID) Scan(src any) error {
	var (
		parsed uuid.UUID
		err    error
	)
	switch value := src.(type) {
	case [16]byte:
		*id = value
		return nil
	case []byte:
		if len(value) == len(id) {
			copy(id[:], value)
			return nil
		}
		parsed, err = uuid.ParseBytes(value)
	case string:
		parsed, err = uuid.Parse(value)
	case nil:
		return ErrInvalidID
	default:
		return fmt.Errorf("skiplock: unsupported id type %T: %w", src, ErrInvalidID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	*id = ID(parsed)

	return nil
}

// Value writes the raw bytes.
func (id ID) Value() (driver.Value, error) {
	return id[:], nil
}

// ParseID parses the canonical dashed form, 32 bare hex digits, the braced form or a urn:uuid: URN.
func ParseID(value string) (ID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q", ErrInvalidID, value)
	}

	return ID(parsed), nil
}

// IDGenerator creates new identifiers.
type IDGenerator interface {
	New() (ID, error)
}

// UUIDv7Generator produces UUID v7 identifiers. Within one process the generated IDs are
// strictly increasing: google/uuid spends the 12 sub-millisecond bits as a counter.
type UUIDv7Generator struct {
	rand io.Reader
}

// NewUUIDv7Generator creates a generator reading randomness from crypto/rand.
func NewUUIDv7Generator() *UUIDv7Generator {
	return &UUIDv7Generator{rand: rand.Reader}
}

func (g *UUIDv7Generator) New() (ID, error) {
	next, err := uuid.NewV7FromReader(g.rand)
	if err != nil {
		return ID{}, fmt.Errorf("skiplock: generate id failed: %w", err)
	}

	return ID(next), nil
}
