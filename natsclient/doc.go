// Package natsclient provides the lattice bus connection: a NATS client
// with circuit breaker protection, automatic reconnection, and the
// ephemeral-subscription primitive the scatter-gather protocol is built on.
//
// The client is the only component in the module that touches the wire.
// Queries publish through it and collectors receive raw inbound messages
// through ephemeral subscriptions it creates; the connection itself is
// shared by any number of concurrent queries.
//
// # Circuit Breaker
//
// Connection failures are counted, and after a threshold (default: 5) the
// circuit opens: further connect attempts fail fast with ErrCircuitOpen
// while backoff doubles up to a maximum (default: 1 minute). After each
// backoff period the circuit is tested and, if the bus is reachable again,
// closed.
//
// # Basic Usage
//
//	client, err := natsclient.NewClient("nats://localhost:4222")
//	if err != nil {
//	    return err
//	}
//
//	ctx := context.Background()
//	if err := client.Connect(ctx); err != nil {
//	    return err
//	}
//	defer client.Close(ctx)
//
//	// Broadcast a request that names a reply inbox
//	inbox := client.NewReplyInbox()
//	sub, err := client.SubscribeEphemeral(inbox)
//	if err != nil {
//	    return err
//	}
//	defer sub.Close()
//	err = client.PublishRequest(ctx, "wasmbus.inventory.hosts", inbox, payload)
//
// # Ephemeral Subscriptions
//
// SubscribeEphemeral opens a subscription whose messages are delivered on a
// buffered channel. One query owns one subscription exclusively: the
// subscription is created before the query is published and closed when the
// collection window ends, so replies can never outlive or predate their
// query. Deliveries race Close safely; a message arriving after Close is
// dropped, never sent on a closed channel.
//
// # Connection Status and Health
//
//	status := client.Status()
//	switch status {
//	case natsclient.StatusConnected:
//	case natsclient.StatusReconnecting:
//	case natsclient.StatusCircuitOpen:
//	case natsclient.StatusDisconnected:
//	}
//
// A background health monitor (default interval: 10s) keeps the status in
// sync with the underlying connection and fires the health change callback
// on transitions.
//
// # Authentication
//
// The lattice supports the same credential forms NATS does:
//
//	natsclient.WithCredsFile("/etc/lattice/user.creds")
//	natsclient.WithToken("s3cr3t")
//	natsclient.WithCredentials("user", "pass")
//	natsclient.WithTLS("client.crt", "client.key", "ca.crt")
//
// Credentials are cleared from memory when the client is closed.
//
// # Testing
//
// Integration tests run against a real NATS server via testcontainers:
//
//	func TestSomething(t *testing.T) {
//	    tc := natsclient.NewTestClient(t)
//	    // tc.Client is connected to a throwaway NATS container
//	}
//
// # Thread Safety
//
// All public methods are safe for concurrent use. Close is idempotent.
package natsclient
