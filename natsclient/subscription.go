package natsclient

import (
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/wascc/lattice-client/errors"
)

// InboundMessage is one raw message delivered on an ephemeral subscription.
type InboundMessage struct {
	Subject    string
	Data       []byte
	ReceivedAt time.Time
}

// EphemeralSubscription is a transient delivery channel for the replies of
// one query. It is exclusively owned by the query that created it and must
// be closed when the query's collection window ends. Close is idempotent.
type EphemeralSubscription struct {
	subject string
	msgs    chan InboundMessage
	sub     *nats.Subscription

	mu     sync.Mutex
	closed bool
}

// Subject returns the subject the subscription listens on.
func (s *EphemeralSubscription) Subject() string {
	return s.subject
}

// Messages returns the inbound message channel. The channel is closed when
// the subscription is closed; a receive loop should treat channel close as
// end of delivery.
func (s *EphemeralSubscription) Messages() <-chan InboundMessage {
	return s.msgs
}

// deliver hands one message to the channel without blocking the transport's
// delivery goroutine. Messages arriving after Close, or while the buffer is
// full, are dropped; a lost reply is equivalent to one that never arrived,
// which the scatter-gather protocol already tolerates.
func (s *EphemeralSubscription) deliver(msg InboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	select {
	case s.msgs <- msg:
	default:
	}
}

// Close tears down the subscription and releases transport resources.
// Safe to call more than once and safe to call concurrently with delivery.
func (s *EphemeralSubscription) Close() error {
	var err error
	if s.sub != nil && s.sub.IsValid() {
		err = s.sub.Unsubscribe()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.msgs)
	}
	return err
}

// SubscribeEphemeral creates a transient subscription on the given subject,
// delivering raw inbound messages on a buffered channel until Close is
// called. The caller owns the subscription; the client does not track it and
// will not clean it up on Close.
func (m *Client) SubscribeEphemeral(subject string) (*EphemeralSubscription, error) {
	m.mu.RLock()
	conn := m.conn
	m.mu.RUnlock()

	if conn == nil || !conn.IsConnected() {
		return nil, ErrNotConnected
	}

	es := &EphemeralSubscription{
		subject: subject,
		msgs:    make(chan InboundMessage, 256),
	}

	sub, err := conn.Subscribe(subject, func(msg *nats.Msg) {
		es.deliver(InboundMessage{
			Subject:    msg.Subject,
			Data:       msg.Data,
			ReceivedAt: time.Now(),
		})
	})
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "SubscribeEphemeral", "subscribe")
	}

	es.sub = sub
	return es, nil
}
