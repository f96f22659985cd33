package testutil

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wascc/lattice-client/control"
	"github.com/wascc/lattice-client/protocol"
)

// SimulatedHost answers lattice queries on a real NATS connection the way a
// waSCC host would.
type SimulatedHost struct {
	id      string
	conn    *nats.Conn
	started time.Time

	labels    map[string]string
	workloads []protocol.WorkloadDescriptor
	links     []protocol.LinkBinding

	replyDelay time.Duration
	bidding    bool
}

// HostOption configures a simulated host.
type HostOption func(*SimulatedHost)

// WithWorkloads sets the workloads the host reports.
func WithWorkloads(workloads ...protocol.WorkloadDescriptor) HostOption {
	return func(h *SimulatedHost) {
		h.workloads = append(h.workloads, workloads...)
	}
}

// WithLinks sets the link bindings the host reports.
func WithLinks(links ...protocol.LinkBinding) HostOption {
	return func(h *SimulatedHost) {
		h.links = append(h.links, links...)
	}
}

// WithLabels sets the host's labels.
func WithLabels(labels map[string]string) HostOption {
	return func(h *SimulatedHost) {
		h.labels = labels
	}
}

// WithReplyDelay makes the host wait before answering, for tests that need
// slow responders.
func WithReplyDelay(d time.Duration) HostOption {
	return func(h *SimulatedHost) {
		h.replyDelay = d
	}
}

// WithBidding makes the host answer launch auctions.
func WithBidding() HostOption {
	return func(h *SimulatedHost) {
		h.bidding = true
	}
}

// NewSimulatedHost connects a simulated host to the given NATS URL and
// starts answering queries. Cleanup is registered with the test.
func NewSimulatedHost(t testing.TB, url, hostID string, opts ...HostOption) *SimulatedHost {
	t.Helper()

	h := &SimulatedHost{
		id:      hostID,
		started: time.Now(),
		labels:  map[string]string{"hostcore.os": "linux"},
	}
	for _, opt := range opts {
		opt(h)
	}

	conn, err := nats.Connect(url, nats.Name("simulated-host-"+hostID))
	if err != nil {
		t.Fatalf("simulated host %s: connect: %v", hostID, err)
	}
	h.conn = conn

	if err := h.subscribeAll(); err != nil {
		conn.Close()
		t.Fatalf("simulated host %s: subscribe: %v", hostID, err)
	}
	if err := conn.Flush(); err != nil {
		conn.Close()
		t.Fatalf("simulated host %s: flush: %v", hostID, err)
	}

	t.Cleanup(h.Close)
	return h
}

// Close disconnects the host from the bus.
func (h *SimulatedHost) Close() {
	if h.conn != nil && !h.conn.IsClosed() {
		h.conn.Close()
	}
}

// ID returns the host's identity.
func (h *SimulatedHost) ID() string {
	return h.id
}

// PublishEvent emits a bus event from this host, for watch tests. The
// payload must already be a CloudEvent envelope.
func (h *SimulatedHost) PublishEvent(payload []byte) error {
	return h.conn.Publish(protocol.EventsSubject, payload)
}

func (h *SimulatedHost) subscribeAll() error {
	// A real host listens on both the broadcast subject and its own scoped
	// variant for each query kind.
	handlers := []struct {
		subject string
		build   func() *protocol.ReplyRecord
	}{
		{protocol.InventoryHosts, h.hostsReply},
		{protocol.InventoryHosts + "." + h.id, h.hostsReply},
		{protocol.InventoryWorkloads, h.workloadsReply},
		{protocol.InventoryWorkloads + "." + h.id, h.workloadsReply},
		{protocol.InventoryLinks, h.linksReply},
		{protocol.InventoryLinks + "." + h.id, h.linksReply},
	}

	for _, handler := range handlers {
		build := handler.build
		if _, err := h.conn.Subscribe(handler.subject, func(msg *nats.Msg) {
			h.respond(msg, build())
		}); err != nil {
			return fmt.Errorf("subscribe %s: %w", handler.subject, err)
		}
	}

	if h.bidding {
		if _, err := h.conn.Subscribe(protocol.AuctionSubject, func(msg *nats.Msg) {
			if msg.Reply == "" {
				return
			}
			bid, _ := json.Marshal(control.LaunchAuctionResponse{HostID: h.id})
			_ = h.conn.Publish(msg.Reply, bid)
		}); err != nil {
			return fmt.Errorf("subscribe auction: %w", err)
		}
	}

	if _, err := h.conn.Subscribe(protocol.LaunchSubject(h.id), h.ackCommand); err != nil {
		return fmt.Errorf("subscribe launch: %w", err)
	}
	if _, err := h.conn.Subscribe(protocol.TerminateSubject(h.id), h.ackCommand); err != nil {
		return fmt.Errorf("subscribe terminate: %w", err)
	}
	return nil
}

func (h *SimulatedHost) respond(msg *nats.Msg, rec *protocol.ReplyRecord) {
	if msg.Reply == "" {
		return
	}

	var req protocol.QueryRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.CorrelationID == "" {
		return
	}
	rec.CorrelationID = req.CorrelationID

	if h.replyDelay > 0 {
		time.Sleep(h.replyDelay)
	}

	data, err := protocol.EncodeReply(rec)
	if err != nil {
		return
	}
	_ = h.conn.Publish(msg.Reply, data)
}

func (h *SimulatedHost) hostsReply() *protocol.ReplyRecord {
	return &protocol.ReplyRecord{
		HostID: h.id,
		Inventory: &protocol.HostInventory{
			ID:        h.id,
			UptimeMS:  time.Since(h.started).Milliseconds(),
			Labels:    h.labels,
			Workloads: h.workloads,
			Links:     h.links,
		},
	}
}

func (h *SimulatedHost) workloadsReply() *protocol.ReplyRecord {
	return &protocol.ReplyRecord{HostID: h.id, Workloads: h.workloads}
}

func (h *SimulatedHost) linksReply() *protocol.ReplyRecord {
	return &protocol.ReplyRecord{HostID: h.id, Links: h.links}
}

func (h *SimulatedHost) ackCommand(msg *nats.Msg) {
	if msg.Reply == "" {
		return
	}
	var cmd struct {
		WorkloadID string `json:"workload_id"`
	}
	if err := json.Unmarshal(msg.Data, &cmd); err != nil {
		return
	}
	ack, _ := json.Marshal(control.CommandAck{WorkloadID: cmd.WorkloadID, Host: h.id})
	_ = h.conn.Publish(msg.Reply, ack)
}
