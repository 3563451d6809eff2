package skiplock

import (
	"context"
	"fmt"
)

// Inserter stores fresh items. Every Store satisfies it.
type Inserter interface {
	InsertBatch(ctx context.Context, items []Item) error
}

// Producer generates PENDING items and stores them in one batch.
type Producer struct {
	store Inserter
	ids   IDGenerator
	cfg   ProducerConfig
}

// ProducerConfig defines how a Producer names and logs items.
type ProducerConfig struct {
	// Payload renders the payload for the i-th item of a batch.
	Payload func(i int) string
	Logger  Logger
}

func (c ProducerConfig) withDefaults() ProducerConfig {
	if c.Payload == nil {
		c.Payload = defaultPayload
	}
	if c.Logger == nil {
		c.Logger = NopLogger{}
	}

	return c
}

// ProducerOption configures Producer behavior.
type ProducerOption func(*ProducerConfig)

// WithPayload sets the payload renderer.
func WithPayload(payload func(i int) string) ProducerOption {
	return func(c *ProducerConfig) {
		c.Payload = payload
	}
}

// WithProducerLogger sets the producer logger.
func WithProducerLogger(logger Logger) ProducerOption {
	return func(c *ProducerConfig) {
		c.Logger = logger
	}
}

// NewProducer constructs a Producer. A nil generator falls back to UUID v7.
func NewProducer(store Inserter, ids IDGenerator, opts ...ProducerOption) *Producer {
	if store == nil {
		panic("skiplock: nil Inserter")
	}
	if ids == nil {
		ids = NewUUIDv7Generator()
	}

	var cfg ProducerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Producer{store: store, ids: ids, cfg: cfg.withDefaults()}
}

// Produce inserts n new PENDING items and returns them. n <= 0 is a no-op.
func (p *Producer) Produce(ctx context.Context, n int) ([]Item, error) {
	if n <= 0 {
		return nil, nil
	}

	items := make([]Item, 0, n)
	for i := 0; i < n; i++ {
		id, err := p.ids.New()
		if err != nil {
			return nil, err
		}
		items = append(items, NewItem(id, p.cfg.Payload(i)))
	}

	if err := p.store.InsertBatch(ctx, items); err != nil {
		return nil, fmt.Errorf("skiplock produce failed: %w", err)
	}
	p.cfg.Logger.Info("skiplock items produced", "count", len(items))

	return items, nil
}

func defaultPayload(i int) string {
	return fmt.Sprintf("Message %d", i)
}
