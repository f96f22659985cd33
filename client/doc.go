// Package client is the high-level lattice API: connect once, then probe
// host inventories, query workloads and link bindings, watch the event
// stream, and drive the control plane. Each query is one scatter-gather
// round under the hood; see the probe package for the collection semantics.
package client
