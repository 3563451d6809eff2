package postgres

const defaultTable = "items"

// Config defines PostgreSQL store behavior.
type Config struct {
	Table string
	// Ordered adds ORDER BY id to the claim query.
	Ordered    bool
	orderedSet bool
}

func (c Config) withDefaults() Config {
	if c.Table == "" {
		c.Table = defaultTable
	}
	if !c.orderedSet {
		c.Ordered = true
	}

	return c
}

// Option configures the PostgreSQL store.
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
