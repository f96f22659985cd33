package probe

import (
	"context"

	"github.com/wascc/lattice-client/natsclient"
)

// ReplySubscription is the read side of an ephemeral reply inbox.
type ReplySubscription interface {
	// Messages delivers inbound replies until the subscription is closed.
	Messages() <-chan natsclient.InboundMessage

	// Close tears down the subscription. Safe to call more than once.
	Close() error
}

// Transport is the slice of the bus a Collector needs: mint a unique reply
// inbox, subscribe to it, and publish a request that names it.
type Transport interface {
	NewReplyInbox() string
	SubscribeReplies(subject string) (ReplySubscription, error)
	PublishRequest(ctx context.Context, subject, reply string, data []byte) error
}

type busTransport struct {
	client *natsclient.Client
}

// NewBusTransport adapts a connected bus client to the Transport interface.
func NewBusTransport(client *natsclient.Client) Transport {
	return &busTransport{client: client}
}

func (b *busTransport) NewReplyInbox() string {
	return b.client.NewReplyInbox()
}

func (b *busTransport) SubscribeReplies(subject string) (ReplySubscription, error) {
	return b.client.SubscribeEphemeral(subject)
}

func (b *busTransport) PublishRequest(ctx context.Context, subject, reply string, data []byte) error {
	return b.client.PublishRequest(ctx, subject, reply, data)
}
