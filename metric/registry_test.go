package metric

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wascc/lattice-client/errors"
)

func TestNewMetricsRegistry(t *testing.T) {
	registry := NewMetricsRegistry()

	require.NotNil(t, registry)
	assert.NotNil(t, registry.PrometheusRegistry())
	assert.NotNil(t, registry.CoreMetrics())
}

func TestMetricsRegistry_RegisterCounter(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter_total",
		Help: "Test counter",
	})

	err := registry.RegisterCounter("collector", "test_counter", counter)
	assert.NoError(t, err)

	// Duplicate registration under the same key is rejected
	counter2 := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_counter2_total",
		Help: "Test counter 2",
	})
	err = registry.RegisterCounter("collector", "test_counter", counter2)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestMetricsRegistry_RegisterGaugeVec(t *testing.T) {
	registry := NewMetricsRegistry()

	gaugeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "test_gauge",
		Help: "Test gauge",
	}, []string{"label"})

	err := registry.RegisterGaugeVec("collector", "test_gauge", gaugeVec)
	assert.NoError(t, err)

	gaugeVec.WithLabelValues("a").Set(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(gaugeVec.WithLabelValues("a")))
}

func TestMetricsRegistry_Unregister(t *testing.T) {
	registry := NewMetricsRegistry()

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "unregister_test_total",
		Help: "Test counter",
	})

	require.NoError(t, registry.RegisterCounter("collector", "unregister_test", counter))
	assert.True(t, registry.Unregister("collector", "unregister_test"))

	// Second unregister is a no-op
	assert.False(t, registry.Unregister("collector", "unregister_test"))

	// Re-registration after unregister succeeds
	assert.NoError(t, registry.RegisterCounter("collector", "unregister_test", counter))
}

func TestMetrics_RecordQuery(t *testing.T) {
	m := NewMetrics()

	m.RecordQuery("hosts", "ok")
	m.RecordQuery("hosts", "ok")
	m.RecordQuery("hosts", "transport_error")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("hosts", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("hosts", "transport_error")))
}

func TestMetrics_RecordReplies(t *testing.T) {
	m := NewMetrics()

	m.RecordReplyReceived("hosts")
	m.RecordReplyDropped("correlation_mismatch")
	m.RecordReplyDropped("correlation_mismatch")
	m.RecordDecodeError("malformed_encoding")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RepliesReceived.WithLabelValues("hosts")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RepliesDropped.WithLabelValues("correlation_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("malformed_encoding")))
}

func TestMetrics_RecordBusStatus(t *testing.T) {
	m := NewMetrics()

	m.RecordBusStatus(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BusConnected))

	m.RecordBusStatus(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.BusConnected))

	m.RecordBusRTT(5 * time.Millisecond)
	assert.Equal(t, 5.0, testutil.ToFloat64(m.BusRTT))

	m.RecordBusReconnect()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BusReconnects))
}

func TestMetrics_RecordHostsDiscovered(t *testing.T) {
	m := NewMetrics()

	m.RecordHostsDiscovered("hosts", 3)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.HostsDiscovered.WithLabelValues("hosts")))
}
