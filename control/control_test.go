package control

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/natsclient"
	"github.com/wascc/lattice-client/probe"
	"github.com/wascc/lattice-client/protocol"
)

type fakeSubscription struct {
	msgs chan natsclient.InboundMessage

	mu     sync.Mutex
	closed bool
}

func newFakeSubscription() *fakeSubscription {
	return &fakeSubscription{msgs: make(chan natsclient.InboundMessage, 16)}
}

func (f *fakeSubscription) Messages() <-chan natsclient.InboundMessage { return f.msgs }

func (f *fakeSubscription) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.msgs)
	}
	return nil
}

func (f *fakeSubscription) push(data []byte) {
	f.msgs <- natsclient.InboundMessage{Subject: "_INBOX.fake", Data: data, ReceivedAt: time.Now()}
}

type fakeTransport struct {
	sub *fakeSubscription

	mu        sync.Mutex
	subject   string
	payload   []byte
	onPublish func()
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{sub: newFakeSubscription()}
}

func (f *fakeTransport) NewReplyInbox() string { return "_INBOX.fake" }

func (f *fakeTransport) SubscribeReplies(_ string) (probe.ReplySubscription, error) {
	return f.sub, nil
}

func (f *fakeTransport) PublishRequest(_ context.Context, subject, _ string, data []byte) error {
	f.mu.Lock()
	f.subject = subject
	f.payload = data
	onPublish := f.onPublish
	f.mu.Unlock()
	if onPublish != nil {
		onPublish()
	}
	return nil
}

func bid(t *testing.T, hostID string) []byte {
	t.Helper()
	data, err := json.Marshal(LaunchAuctionResponse{HostID: hostID})
	require.NoError(t, err)
	return data
}

func TestRunAuction_CollectsAndSortsBids(t *testing.T) {
	transport := newFakeTransport()
	transport.onPublish = func() {
		transport.sub.push(bid(t, "h3"))
		transport.sub.push(bid(t, "h1"))
		transport.sub.push(bid(t, "h1")) // duplicate bid, one entry
		transport.sub.push([]byte(`not json`))
	}

	req := NewLaunchAuctionRequest("MACTOR1", 2, map[string]string{"arch": "arm64"})
	bids, err := RunAuction(context.Background(), transport, req, 100*time.Millisecond)
	require.NoError(t, err)

	require.Len(t, bids, 2)
	assert.Equal(t, "h1", bids[0].HostID)
	assert.Equal(t, "h3", bids[1].HostID)
	assert.Equal(t, protocol.AuctionSubject, transport.subject)

	var sent LaunchAuctionRequest
	require.NoError(t, json.Unmarshal(transport.payload, &sent))
	assert.Equal(t, "MACTOR1", sent.WorkloadID)
	assert.Equal(t, uint32(2), sent.Revision)
	assert.Equal(t, "arm64", sent.Constraints["arch"])
}

func TestRunAuction_NoBidsIsNotAnError(t *testing.T) {
	transport := newFakeTransport()

	req := NewLaunchAuctionRequest("MACTOR1", 1, nil)
	bids, err := RunAuction(context.Background(), transport, req, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestRunAuction_Validation(t *testing.T) {
	transport := newFakeTransport()

	_, err := RunAuction(context.Background(), nil, NewLaunchAuctionRequest("m", 1, nil), time.Second)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = RunAuction(context.Background(), transport, nil, time.Second)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = RunAuction(context.Background(), transport, NewLaunchAuctionRequest("m", 1, nil), 0)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestRunAuction_Cancelled(t *testing.T) {
	transport := newFakeTransport()
	ctx, cancel := context.WithCancel(context.Background())
	transport.onPublish = func() {
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
	}

	_, err := RunAuction(ctx, transport, NewLaunchAuctionRequest("MACTOR1", 1, nil), 5*time.Second)
	assert.ErrorIs(t, err, errors.ErrQueryCancelled)
}

func TestLaunch_ReturnsAck(t *testing.T) {
	transport := newFakeTransport()
	transport.onPublish = func() {
		ack, _ := json.Marshal(CommandAck{WorkloadID: "MACTOR1", Host: "NHOST1"})
		transport.sub.push(ack)
	}

	ack, err := Launch(context.Background(), transport, "NHOST1",
		&LaunchCommand{WorkloadID: "MACTOR1", Revision: 3}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "NHOST1", ack.Host)
	assert.Equal(t, "MACTOR1", ack.WorkloadID)
	assert.Equal(t, "wasmbus.control.NHOST1.workload.start", transport.subject)
}

func TestTerminate_ReturnsAck(t *testing.T) {
	transport := newFakeTransport()
	transport.onPublish = func() {
		ack, _ := json.Marshal(CommandAck{WorkloadID: "MACTOR1", Host: "NHOST1"})
		transport.sub.push(ack)
	}

	ack, err := Terminate(context.Background(), transport, "NHOST1",
		&TerminateCommand{WorkloadID: "MACTOR1"}, time.Second)
	require.NoError(t, err)

	assert.Equal(t, "NHOST1", ack.Host)
	assert.Equal(t, "wasmbus.control.NHOST1.workload.stop", transport.subject)
}

func TestLaunch_TimesOutWithoutAck(t *testing.T) {
	transport := newFakeTransport()

	_, err := Launch(context.Background(), transport, "NHOST1",
		&LaunchCommand{WorkloadID: "MACTOR1"}, 50*time.Millisecond)
	assert.ErrorIs(t, err, errors.ErrConnectionTimeout)
}

func TestLaunch_Validation(t *testing.T) {
	transport := newFakeTransport()

	_, err := Launch(context.Background(), transport, "NHOST1", nil, time.Second)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)

	_, err = Terminate(context.Background(), transport, "NHOST1", &TerminateCommand{}, time.Second)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}
