package mysql

const (
	defaultTable         = "items"
	defaultMaxInsertRows = 500
)

// Config defines MySQL store behavior.
type Config struct {
	Table string
	// Ordered adds ORDER BY id to the claim query. Claims follow primary key order when set,
	// which for UUID v7 ids approximates insertion order. Callers still must not rely on FIFO.
	Ordered    bool
	orderedSet bool
	// MaxInsertRows caps the rows of one multi-row INSERT statement.
	MaxInsertRows int
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if !c.orderedSet {
		c.Ordered = true
	}
	if c.MaxInsertRows <= 0 {
		c.MaxInsertRows = defaultMaxInsertRows
	}

	return c
}

// Option configures the MySQL store.
type Option func(*Config)

// WithTable sets the items table name.
func WithTable(name string) Option {
	return func(c *Config) {
		c.Table = name
	}
}

// WithOrdered enables or disables ordering claims by id.
func WithOrdered(enabled bool) Option {
	return func(c *Config) {
		c.Ordered = enabled
		c.orderedSet = true
	}
}

// WithMaxInsertRows sets how many rows a single INSERT statement carries.
func WithMaxInsertRows(rows int) Option {
	return func(c *Config) {
		c.MaxInsertRows = rows
	}
}
