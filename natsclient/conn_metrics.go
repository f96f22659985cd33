package natsclient

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wascc/lattice-client/metric"
)

// connectionMetrics holds Prometheus metrics for the bus connection. Core
// connection gauges (status, RTT, reconnects) live in the shared metrics
// registry; publish counters are registered here per client.
type connectionMetrics struct {
	registry *metric.MetricsRegistry

	publishes *prometheus.CounterVec // Published messages by subject
}

// newConnectionMetrics creates and registers connection metrics with the provided registry.
func newConnectionMetrics(registry *metric.MetricsRegistry) (*connectionMetrics, error) {
	if registry == nil {
		return nil, nil // Metrics disabled
	}

	m := &connectionMetrics{
		registry: registry,
		publishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Subsystem: "bus",
			Name:      "published_total",
			Help:      "Total messages published to the bus by subject",
		}, []string{"subject"}),
	}

	if err := registry.RegisterCounterVec("bus", "published_total", m.publishes); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *connectionMetrics) recordPublish(subject string) {
	if m == nil {
		return
	}
	m.publishes.WithLabelValues(subject).Inc()
}

func (m *connectionMetrics) recordReconnect() {
	if m == nil {
		return
	}
	m.registry.CoreMetrics().RecordBusReconnect()
}

func (m *connectionMetrics) recordStatus(status ConnectionStatus) {
	if m == nil {
		return
	}
	m.registry.CoreMetrics().RecordBusStatus(status == StatusConnected)
}

// startPoller polls connection RTT on the given interval until the returned
// cancel function is called.
func (m *connectionMetrics) startPoller(ctx context.Context, client *Client, interval time.Duration) context.CancelFunc {
	if m == nil {
		return func() {}
	}

	pollCtx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				if rtt, err := client.RTT(); err == nil {
					m.registry.CoreMetrics().RecordBusRTT(rtt)
				}
			}
		}
	}()

	return cancel
}
