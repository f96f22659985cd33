package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wascc/lattice-client/config"
	"github.com/wascc/lattice-client/control"
	"github.com/wascc/lattice-client/events"
	"github.com/wascc/lattice-client/natsclient"
	"github.com/wascc/lattice-client/protocol"
	"github.com/wascc/lattice-client/testutil"
)

// TestIntegration_Lattice exercises the full client surface against a real
// NATS server with simulated hosts answering on the other side. One
// container serves all the subtests.
func TestIntegration_Lattice(t *testing.T) {
	ctx := context.Background()
	tc := natsclient.NewTestClient(t)

	actor := protocol.WorkloadDescriptor{ID: "MACTOR1", Kind: protocol.WorkloadActor, Revision: 2}
	provider := protocol.WorkloadDescriptor{ID: "VPROV1", Kind: protocol.WorkloadProvider, Revision: 1}
	binding := protocol.LinkBinding{
		WorkloadID: "MACTOR1",
		ProviderID: "VPROV1",
		ContractID: "wascc:http_server",
	}

	bidder := testutil.NewSimulatedHost(t, tc.URL, "NHOST1",
		testutil.WithWorkloads(actor, provider),
		testutil.WithLinks(binding),
		testutil.WithBidding(),
	)
	testutil.NewSimulatedHost(t, tc.URL, "NHOST2")

	cfg := config.Default()
	cfg.BusURL = tc.URL
	cfg.RPCTimeoutMillis = 1000

	c, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { _ = c.Close(context.Background()) })

	t.Run("ProbeAll", func(t *testing.T) {
		snapshot, err := c.ProbeAll(ctx)
		require.NoError(t, err)
		require.Equal(t, 2, snapshot.HostCount())
		assert.True(t, snapshot.Complete)
		assert.Equal(t, "NHOST1", snapshot.Hosts[0].ID)
		assert.Equal(t, "NHOST2", snapshot.Hosts[1].ID)
		assert.Equal(t, 2, snapshot.TotalWorkloads())
		assert.Equal(t, 1, snapshot.TotalLinks())
	})

	t.Run("ProbeHost", func(t *testing.T) {
		start := time.Now()
		inv, err := c.ProbeHost(ctx, "NHOST1")
		require.NoError(t, err)
		assert.Equal(t, "NHOST1", inv.ID)
		assert.Equal(t, 2, inv.WorkloadCount())
		// Scoped single-host probes stop on the reply, not the window.
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("QueryWorkloads", func(t *testing.T) {
		snapshot, err := c.QueryWorkloads(ctx, protocol.AllHosts())
		require.NoError(t, err)
		assert.Equal(t, 2, snapshot.HostCount())
		assert.Equal(t, 2, snapshot.TotalWorkloads())
	})

	t.Run("QueryLinks", func(t *testing.T) {
		links, err := c.QueryLinks(ctx)
		require.NoError(t, err)
		require.Len(t, links, 1)
		require.Len(t, links["NHOST1"], 1)
		assert.Equal(t, "wascc:http_server", links["NHOST1"][0].ContractID)
	})

	t.Run("AuctionLaunch", func(t *testing.T) {
		bids, err := c.AuctionLaunch(ctx, control.NewLaunchAuctionRequest("MACTOR9", 1, nil))
		require.NoError(t, err)
		require.Len(t, bids, 1)
		assert.Equal(t, "NHOST1", bids[0].HostID)
	})

	t.Run("LaunchAndTerminate", func(t *testing.T) {
		ack, err := c.LaunchWorkload(ctx, "NHOST1", &control.LaunchCommand{WorkloadID: "MACTOR9", Revision: 1})
		require.NoError(t, err)
		assert.Equal(t, "NHOST1", ack.Host)
		assert.Equal(t, "MACTOR9", ack.WorkloadID)

		ack, err = c.TerminateWorkload(ctx, "NHOST1", &control.TerminateCommand{WorkloadID: "MACTOR9"})
		require.NoError(t, err)
		assert.Equal(t, "NHOST1", ack.Host)
	})

	t.Run("WatchEvents", func(t *testing.T) {
		watchCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		stream, err := c.WatchEvents(watchCtx)
		require.NoError(t, err)

		// Give the subscription a moment to register on the server.
		time.Sleep(100 * time.Millisecond)

		envelope, err := events.NewCloudEvent(events.BusEvent{Type: events.HostStarted, Host: "NHOST1"})
		require.NoError(t, err)
		payload, err := envelope.Encode()
		require.NoError(t, err)
		require.NoError(t, bidder.PublishEvent(payload))

		select {
		case event := <-stream:
			assert.Equal(t, events.HostStarted, event.Type)
			assert.Equal(t, "NHOST1", event.Host)
		case <-time.After(3 * time.Second):
			t.Fatal("no event received")
		}

		cancel()
		select {
		case _, open := <-stream:
			assert.False(t, open)
		case <-time.After(time.Second):
			t.Fatal("stream not closed after cancel")
		}
	})
}
