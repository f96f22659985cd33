// Package testutil provides a simulated lattice host for integration tests.
//
// A SimulatedHost connects to a real NATS server and answers inventory
// queries, auctions, and control commands exactly the way a waSCC host
// would: it subscribes to the broadcast subjects, decodes each request, and
// replies to the query's reply inbox with its configured inventory. Tests
// point any number of simulated hosts at a throwaway NATS container (see
// natsclient.NewTestClient) and run real scatter-gather rounds against
// them.
//
//	tc := natsclient.NewTestClient(t)
//	host := testutil.NewSimulatedHost(t, tc.URL, "NHOST1",
//	    testutil.WithWorkloads(protocol.WorkloadDescriptor{ID: "MACTOR1", Kind: protocol.WorkloadActor}),
//	)
//	defer host.Close()
//
// There are no transport mocks here; every reply travels over the wire.
package testutil
