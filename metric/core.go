package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all client-level metrics (not query-specific)
type Metrics struct {
	// Query metrics
	QueriesTotal    *prometheus.CounterVec
	RepliesReceived *prometheus.CounterVec
	RepliesDropped  *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec
	HostsDiscovered *prometheus.GaugeVec

	// Bus connection metrics
	BusConnected  prometheus.Gauge
	BusRTT        prometheus.Gauge
	BusReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all client metrics
func NewMetrics() *Metrics {
	return &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Subsystem: "query",
				Name:      "total",
				Help:      "Total number of queries by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),

		RepliesReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Subsystem: "query",
				Name:      "replies_received_total",
				Help:      "Total number of decoded replies accepted into a query window",
			},
			[]string{"kind"},
		),

		RepliesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Subsystem: "query",
				Name:      "replies_dropped_total",
				Help:      "Total number of replies dropped by reason (decode_error, correlation_mismatch, late)",
			},
			[]string{"reason"},
		),

		DecodeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Subsystem: "decode",
				Name:      "errors_total",
				Help:      "Total number of reply decode failures by kind",
			},
			[]string{"kind"},
		),

		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "lattice",
				Subsystem: "query",
				Name:      "duration_seconds",
				Help:      "Query collection window duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),

		HostsDiscovered: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "lattice",
				Subsystem: "query",
				Name:      "hosts_discovered",
				Help:      "Number of distinct hosts in the most recent snapshot",
			},
			[]string{"kind"},
		),

		BusConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lattice",
				Subsystem: "bus",
				Name:      "connected",
				Help:      "Bus connection status (0=disconnected, 1=connected)",
			},
		),

		BusRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "lattice",
				Subsystem: "bus",
				Name:      "rtt_milliseconds",
				Help:      "Bus round-trip time in milliseconds",
			},
		),

		BusReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "lattice",
				Subsystem: "bus",
				Name:      "reconnects_total",
				Help:      "Total number of bus reconnections",
			},
		),
	}
}

// RecordQuery increments the query counter for a kind and outcome
func (c *Metrics) RecordQuery(kind, outcome string) {
	c.QueriesTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordReplyReceived increments the accepted reply counter
func (c *Metrics) RecordReplyReceived(kind string) {
	c.RepliesReceived.WithLabelValues(kind).Inc()
}

// RecordReplyDropped increments the dropped reply counter
func (c *Metrics) RecordReplyDropped(reason string) {
	c.RepliesDropped.WithLabelValues(reason).Inc()
}

// RecordDecodeError increments the decode error counter
func (c *Metrics) RecordDecodeError(kind string) {
	c.DecodeErrors.WithLabelValues(kind).Inc()
}

// RecordQueryDuration records how long a collection window stayed open
func (c *Metrics) RecordQueryDuration(kind string, duration time.Duration) {
	c.QueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordHostsDiscovered records the host count of the latest snapshot
func (c *Metrics) RecordHostsDiscovered(kind string, count int) {
	c.HostsDiscovered.WithLabelValues(kind).Set(float64(count))
}

// RecordBusStatus updates the bus connection status
func (c *Metrics) RecordBusStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	c.BusConnected.Set(value)
}

// RecordBusRTT updates the bus round-trip time
func (c *Metrics) RecordBusRTT(rtt time.Duration) {
	c.BusRTT.Set(float64(rtt.Milliseconds()))
}

// RecordBusReconnect increments the reconnection counter
func (c *Metrics) RecordBusReconnect() {
	c.BusReconnects.Inc()
}
