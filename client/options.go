package client

import (
	"log/slog"
	"time"

	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/metric"
)

// Option configures a Client at construction time.
type Option func(*Client) error

// WithLogger replaces the default slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Client", "WithLogger", "nil logger")
		}
		c.logger = logger
		return nil
	}
}

// WithMetricsRegistry wires the client and its bus connection into a metric
// registry. The registry's core metrics record query outcomes, reply drops,
// and connection health.
func WithMetricsRegistry(registry *metric.MetricsRegistry) Option {
	return func(c *Client) error {
		if registry == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Client", "WithMetricsRegistry", "nil registry")
		}
		c.metricsRegistry = registry
		c.metrics = registry.CoreMetrics()
		return nil
	}
}

// WithBus injects a transport instead of dialing NATS. Used by tests and by
// callers that manage their own bus connection.
func WithBus(bus Bus) Option {
	return func(c *Client) error {
		if bus == nil {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Client", "WithBus", "nil bus")
		}
		c.transport = bus
		return nil
	}
}

// querySettings are the per-query knobs, seeded from the client defaults.
type querySettings struct {
	timeout    time.Duration
	expected   int
	minReplies int
}

func (c *Client) querySettings(opts []QueryOption) querySettings {
	settings := querySettings{timeout: c.defaultTimeout}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.timeout <= 0 {
		settings.timeout = c.defaultTimeout
	}
	return settings
}

// QueryOption adjusts a single query.
type QueryOption func(*querySettings)

// WithTimeout overrides the collection window for this query.
func WithTimeout(d time.Duration) QueryOption {
	return func(s *querySettings) {
		s.timeout = d
	}
}

// WithExpectedReplies stops the query as soon as n distinct responders have
// answered.
func WithExpectedReplies(n int) QueryOption {
	return func(s *querySettings) {
		s.expected = n
	}
}

// WithMinReplies fails the query unless at least n distinct responders
// answered inside the window.
func WithMinReplies(n int) QueryOption {
	return func(s *querySettings) {
		s.minReplies = n
	}
}
