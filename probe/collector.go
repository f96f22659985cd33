package probe

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/metric"
	"github.com/wascc/lattice-client/natsclient"
	"github.com/wascc/lattice-client/protocol"
)

// State tracks where a Collector is in its single query lifecycle.
type State int32

// Collector lifecycle states
const (
	// StateIdle means Run has not been called yet.
	StateIdle State = iota
	// StatePublishing means the reply inbox is being opened and the
	// request broadcast.
	StatePublishing
	// StateCollecting means the window is open and replies are accepted.
	StateCollecting
	// StateDraining means the window has closed and the subscription is
	// being torn down.
	StateDraining
	// StateClosed is terminal; the Collector cannot be reused.
	StateClosed
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePublishing:
		return "publishing"
	case StateCollecting:
		return "collecting"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Drop reasons recorded against the replies_dropped_total counter.
const (
	dropCorrelationMismatch = "correlation_mismatch"
	dropDecodeError         = "decode_error"
	dropSuperseded          = "superseded"
)

// Query outcomes recorded against the queries_total counter.
const (
	outcomeSuccess      = "success"
	outcomeCancelled    = "cancelled"
	outcomeInsufficient = "insufficient_replies"
	outcomeError        = "error"
)

// Collector runs exactly one scatter-gather query and aggregates the
// replies. Create one per query; Run returns ErrCollectorReused on a second
// call.
type Collector struct {
	transport Transport
	req       *protocol.QueryRequest
	subject   string

	expected   int
	minReplies int
	logger     natsclient.Logger
	metrics    *metric.Metrics

	state atomic.Int32
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithExpectedReplies stops collecting as soon as n distinct responders have
// answered, instead of waiting out the full window. Zero means collect until
// the window closes.
func WithExpectedReplies(n int) CollectorOption {
	return func(c *Collector) {
		c.expected = n
	}
}

// WithMinReplies makes Run fail with ErrInsufficientReplies when fewer than
// n distinct responders answered before the window closed.
func WithMinReplies(n int) CollectorOption {
	return func(c *Collector) {
		c.minReplies = n
	}
}

// WithLogger sets the collector's logger.
func WithLogger(logger natsclient.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics wires the collector to the core metric set.
func WithMetrics(metrics *metric.Metrics) CollectorOption {
	return func(c *Collector) {
		c.metrics = metrics
	}
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
func (nopLogger) Errorf(string, ...any) {}
func (nopLogger) Debugf(string, ...any) {}

// NewCollector prepares a single-use collector for the given request. The
// request must carry a correlation identifier and a positive window.
func NewCollector(transport Transport, req *protocol.QueryRequest, opts ...CollectorOption) (*Collector, error) {
	if transport == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Collector", "NewCollector", "nil transport")
	}
	if req == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Collector", "NewCollector", "nil request")
	}
	if req.CorrelationID == "" {
		return nil, errors.WrapInvalid(errors.ErrCorrelationMissing, "Collector", "NewCollector", "validate request")
	}
	if req.TimeoutMillis <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Collector", "NewCollector", "non-positive query window")
	}

	c := &Collector{
		transport: transport,
		req:       req,
		subject:   protocol.RequestSubject(req.Kind, req.Scope),
		logger:    nopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.expected < 0 || c.minReplies < 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Collector", "NewCollector", "negative reply bound")
	}
	return c, nil
}

// State returns the collector's current lifecycle state.
func (c *Collector) State() State {
	return State(c.state.Load())
}

// Subject returns the bus subject the request is broadcast on.
func (c *Collector) Subject() string {
	return c.subject
}

// Run executes the query: subscribe to a fresh reply inbox, broadcast the
// request, collect replies until the window closes (or the expected count is
// reached, or ctx is cancelled), then aggregate. Cancellation discards all
// partial results. A window that closes with zero replies is not an error;
// it yields an empty snapshot with Complete=false.
func (c *Collector) Run(ctx context.Context) (*protocol.AggregatedSnapshot, error) {
	if !c.state.CompareAndSwap(int32(StateIdle), int32(StatePublishing)) {
		return nil, errors.WrapInvalid(errors.ErrCollectorReused, "Collector", "Run", "start query")
	}
	defer c.state.Store(int32(StateClosed))

	started := time.Now()

	// Subscribe before publishing so a responder that answers immediately
	// cannot race the inbox into existence.
	inbox := c.transport.NewReplyInbox()
	sub, err := c.transport.SubscribeReplies(inbox)
	if err != nil {
		c.recordQuery(outcomeError, started)
		return nil, errors.WrapTransient(err, "Collector", "Run", "subscribe reply inbox")
	}
	defer sub.Close()

	payload, err := protocol.EncodeRequest(c.req)
	if err != nil {
		c.recordQuery(outcomeError, started)
		return nil, err
	}
	if err := c.transport.PublishRequest(ctx, c.subject, inbox, payload); err != nil {
		c.recordQuery(outcomeError, started)
		return nil, errors.WrapTransient(err, "Collector", "Run", "broadcast query")
	}

	c.state.Store(int32(StateCollecting))
	c.logger.Debugf("collector: query %s broadcast on %s, window %s",
		c.req.CorrelationID, c.subject, c.req.Timeout())

	replies := make(map[string]*protocol.ReplyRecord)
	timer := time.NewTimer(c.req.Timeout())
	defer timer.Stop()

	complete := false
collect:
	for {
		select {
		case <-ctx.Done():
			c.state.Store(int32(StateDraining))
			c.recordQuery(outcomeCancelled, started)
			return nil, errors.WrapTransient(errors.ErrQueryCancelled, "Collector", "Run", "collect replies")

		case <-timer.C:
			complete = len(replies) > 0
			break collect

		case msg, ok := <-sub.Messages():
			if !ok {
				// Subscription torn down under us (connection loss);
				// settle for what arrived before the window closed.
				complete = len(replies) > 0
				break collect
			}
			c.accept(replies, msg)
			if c.expected > 0 && len(replies) >= c.expected {
				complete = true
				break collect
			}
		}
	}

	c.state.Store(int32(StateDraining))
	if err := sub.Close(); err != nil {
		c.logger.Errorf("collector: reply inbox close: %v", err)
	}

	if len(replies) < c.minReplies {
		c.recordQuery(outcomeInsufficient, started)
		return nil, errors.WrapTransient(errors.ErrInsufficientReplies, "Collector", "Run", "collect replies")
	}

	snapshot := &protocol.AggregatedSnapshot{
		Hosts:      Aggregate(replies),
		Complete:   complete,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}

	c.recordQuery(outcomeSuccess, started)
	if c.metrics != nil {
		c.metrics.RecordHostsDiscovered(string(c.req.Kind), snapshot.HostCount())
	}
	c.logger.Debugf("collector: query %s done, %d hosts, complete=%v",
		c.req.CorrelationID, snapshot.HostCount(), snapshot.Complete)
	return snapshot, nil
}

// accept decodes one inbound payload and folds it into the reply set.
// Undecodable and foreign-correlation payloads are dropped; the query keeps
// going. A second reply from a responder already in the set replaces the
// earlier one wholesale.
func (c *Collector) accept(replies map[string]*protocol.ReplyRecord, msg natsclient.InboundMessage) {
	rec, err := protocol.Decode(msg.Data)
	if err != nil {
		kind := "unknown"
		var de *protocol.DecodeError
		if stderrors.As(err, &de) {
			kind = string(de.Kind)
		}
		if c.metrics != nil {
			c.metrics.RecordDecodeError(kind)
			c.metrics.RecordReplyDropped(dropDecodeError)
		}
		c.logger.Errorf("collector: dropped undecodable reply on %s: %v", msg.Subject, err)
		return
	}

	if rec.CorrelationID != c.req.CorrelationID {
		if c.metrics != nil {
			c.metrics.RecordReplyDropped(dropCorrelationMismatch)
		}
		c.logger.Debugf("collector: dropped reply for foreign query %s", rec.CorrelationID)
		return
	}

	rec.ReceivedAt = msg.ReceivedAt
	if rec.ReceivedAt.IsZero() {
		rec.ReceivedAt = time.Now()
	}

	if _, seen := replies[rec.HostID]; seen {
		if c.metrics != nil {
			c.metrics.RecordReplyDropped(dropSuperseded)
		}
		c.logger.Debugf("collector: host %s answered again, keeping latest", rec.HostID)
	}
	if c.metrics != nil {
		c.metrics.RecordReplyReceived(string(c.req.Kind))
	}
	replies[rec.HostID] = rec
}

func (c *Collector) recordQuery(outcome string, started time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordQuery(string(c.req.Kind), outcome)
	c.metrics.RecordQueryDuration(string(c.req.Kind), time.Since(started))
}
