// Package latticeclient is the Go client for the waSCC lattice: a
// self-forming cluster of WebAssembly hosts joined by a NATS message bus.
//
// # What a lattice looks like
//
// Every host on the lattice answers inventory queries, emits lifecycle
// events, and accepts control commands, all over plain NATS subjects:
//
//	┌──────────┐   ┌──────────┐   ┌──────────┐
//	│  Host A  │   │  Host B  │   │  Host C  │
//	└────┬─────┘   └────┬─────┘   └────┬─────┘
//	     │              │              │
//	     └──────────────┼──────────────┘
//	            NATS (wasmbus.*)
//	                    │
//	              lattice client
//
// The number of hosts is never known in advance. Discovery is therefore a
// scatter-gather: the client broadcasts a query, opens an ephemeral reply
// inbox, and collects whatever answers arrive inside a timed window. Each
// responder is deduplicated by host identity and the surviving replies are
// merged into a deterministic snapshot sorted by host.
//
// # Packages
//
// The module is layered so each concern can be used on its own:
//
//   - client: the high-level entry point. Probes, queries, event watches,
//     auctions, and workload commands behind one connected Client.
//   - probe: the scatter-gather collector. Single-use, subscribe before
//     publish, replace-on-duplicate, deterministic aggregation.
//   - protocol: wire types, subject names, and the schema-validating
//     reply decoder.
//   - events: lattice lifecycle events and their CloudEvents envelope.
//   - control: launch auctions and start/stop commands for workloads.
//   - natsclient: the bus connection with circuit breaker and ephemeral
//     subscriptions.
//   - config: environment and file configuration (LATTICE_* variables).
//   - metric: Prometheus instrumentation for queries and the bus.
//   - testutil: a simulated lattice host for integration tests.
//
// # A first query
//
//	cfg := config.Default()
//	cfg.BusURL = "nats://localhost:4222"
//
//	c, err := client.New(cfg)
//	if err != nil {
//		return err
//	}
//	if err := c.Connect(ctx); err != nil {
//		return err
//	}
//	defer c.Close(ctx)
//
//	snapshot, err := c.ProbeAll(ctx)
//	if err != nil {
//		return err
//	}
//	for _, host := range snapshot.Hosts {
//		fmt.Println(host.ID, host.WorkloadCount())
//	}
//
// The latticectl command under cmd/latticectl wraps the same surface for
// interactive use.
package latticeclient
