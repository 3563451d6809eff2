// Package prom records skiplock cycle metrics with the Prometheus client.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/velmie/skiplock"
)

const defaultNamespace = "skiplock"

// Metrics implements skiplock.Metrics with Prometheus collectors.
type Metrics struct {
	passDuration prometheus.Histogram
	claimed      prometheus.Counter
	completed    prometheus.Counter
	abandoned    prometheus.Counter
	passFailures prometheus.Counter
	backlog      *prometheus.GaugeVec
}

var _ skiplock.Metrics = (*Metrics)(nil)

// Option configures Metrics.
type Option func(*options)

type options struct {
	namespace string
	labels    prometheus.Labels
}

// WithNamespace overrides the metric namespace.
func WithNamespace(namespace string) Option {
	return func(o *options) {
		o.namespace = namespace
	}
}

// WithConstLabels attaches constant labels to every collector, such as the table name.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) {
		o.labels = labels
	}
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, opts ...Option) (*Metrics, error) {
	o := options{namespace: defaultNamespace}
	for _, opt := range opts {
		opt(&o)
	}

	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   o.namespace,
			Name:        name,
			Help:        help,
			ConstLabels: o.labels,
		})
	}

	m := &Metrics{
		passDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   o.namespace,
			Name:        "pass_duration_seconds",
			Help:        "Duration of a claim, dispatch and join pass.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: o.labels,
		}),
		claimed:      counter("items_claimed_total", "Items moved to CLAIMED."),
		completed:    counter("items_completed_total", "Items moved to DONE."),
		abandoned:    counter("items_abandoned_total", "Claimed items whose completion failed."),
		passFailures: counter("pass_failures_total", "Passes aborted in the claim phase."),
		backlog: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   o.namespace,
			Name:        "items",
			Help:        "Stored items by status.",
			ConstLabels: o.labels,
		}, []string{"status"}),
	}

	for _, c := range []prometheus.Collector{m.passDuration, m.claimed, m.completed, m.abandoned, m.passFailures, m.backlog} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObservePassDuration implements skiplock.Metrics.
func (m *Metrics) ObservePassDuration(d time.Duration) {
	m.passDuration.Observe(d.Seconds())
}

// AddClaimed implements skiplock.Metrics.
func (m *Metrics) AddClaimed(count int) {
	m.claimed.Add(float64(count))
}

// AddCompleted implements skiplock.Metrics.
func (m *Metrics) AddCompleted(count int) {
	m.completed.Add(float64(count))
}

// AddAbandoned implements skiplock.Metrics.
func (m *Metrics) AddAbandoned(count int) {
	m.abandoned.Add(float64(count))
}

// AddPassFailures implements skiplock.Metrics.
func (m *Metrics) AddPassFailures(count int) {
	m.passFailures.Add(float64(count))
}

// SetBacklog implements skiplock.Metrics.
func (m *Metrics) SetBacklog(status skiplock.Status, count int) {
	m.backlog.WithLabelValues(status.String()).Set(float64(count))
}
