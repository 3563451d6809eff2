// Package config loads skiplock command configuration from SKIPLOCK_* environment variables
// using caarlos0/env/v11.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	// DriverMySQL selects the MySQL store.
	DriverMySQL = "mysql"
	// DriverPostgres selects the PostgreSQL store.
	DriverPostgres = "postgres"
)

var (
	// ErrUnknownDriver is returned when SKIPLOCK_DRIVER names an unsupported backend.
	ErrUnknownDriver = errors.New("config: unknown driver")
	// ErrInvalidValue is returned when a numeric or duration setting is out of range.
	ErrInvalidValue = errors.New("config: invalid value")
)

// Config holds command configuration.
type Config struct {
	// ── Database ─────────────────────────────────────────────────────────────────
	Driver     string `env:"DRIVER"       envDefault:"mysql"`
	DSN        string `env:"DSN,required"`
	Table      string `env:"TABLE"        envDefault:"items"`
	DBMaxConns int32  `env:"DB_MAX_CONNS" envDefault:"20"`

	// ── Consumer ─────────────────────────────────────────────────────────────────
	Workers         int           `env:"WORKERS"          envDefault:"10"`
	InitialDelay    time.Duration `env:"INITIAL_DELAY"    envDefault:"2s"`
	Period          time.Duration `env:"PERIOD"           envDefault:"3s"`
	ClaimLimit      int           `env:"CLAIM_LIMIT"      envDefault:"0"`
	BacklogInterval time.Duration `env:"BACKLOG_INTERVAL" envDefault:"30s"`

	// ── Observability ────────────────────────────────────────────────────────────
	// MetricsAddr enables the Prometheus /metrics endpoint when set, e.g. ":9090".
	MetricsAddr string `env:"METRICS_ADDR"`
	LogLevel    string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
}

// Load parses Config from SKIPLOCK_* environment variables and validates it.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: "SKIPLOCK_"})
}

// LoadFrom parses Config from the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: "SKIPLOCK_", Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: SKIPLOCK_WORKERS must be positive, got %d", ErrInvalidValue, c.Workers)
	}
	if c.Period <= 0 {
		return fmt.Errorf("%w: SKIPLOCK_PERIOD must be positive, got %s", ErrInvalidValue, c.Period)
	}
	if c.InitialDelay < 0 {
		return fmt.Errorf("%w: SKIPLOCK_INITIAL_DELAY must not be negative, got %s", ErrInvalidValue, c.InitialDelay)
	}
	if c.ClaimLimit < 0 {
		return fmt.Errorf("%w: SKIPLOCK_CLAIM_LIMIT must not be negative, got %d", ErrInvalidValue, c.ClaimLimit)
	}

	return nil
}
