// Package metric provides Prometheus-based metrics collection for the
// lattice client.
//
// The package offers a centralized metrics registry managing both core
// client metrics (query outcomes, reply counts, decode errors, bus
// connection health) and custom caller-specific metrics, plus an optional
// HTTP server exposing metrics in Prometheus format.
//
// # Basic Usage
//
// Setting up metrics collection:
//
//	registry := metric.NewMetricsRegistry()
//	client, err := natsclient.NewClient(url, natsclient.WithMetrics(registry))
//
// Recording from query code:
//
//	registry.CoreMetrics().RecordQuery("hosts", "ok")
//	registry.CoreMetrics().RecordDecodeError("schema_mismatch")
//
// Exposing the registry over HTTP:
//
//	server := metric.NewServer(9090, "/metrics", registry)
//	if err := server.Start(); err != nil {
//	    // handle
//	}
//	defer server.Stop()
//
// Registering caller-specific metrics:
//
//	counter := prometheus.NewCounter(prometheus.CounterOpts{
//	    Name: "probes_scheduled_total",
//	    Help: "Probes scheduled by the supervisor",
//	})
//	if err := registry.RegisterCounter("supervisor", "probes_scheduled", counter); err != nil {
//	    // duplicate registration is reported as an invalid error
//	}
//
// All registration and record operations are safe for concurrent use.
package metric
