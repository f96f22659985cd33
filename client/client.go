package client

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wascc/lattice-client/config"
	"github.com/wascc/lattice-client/control"
	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/events"
	"github.com/wascc/lattice-client/metric"
	"github.com/wascc/lattice-client/natsclient"
	"github.com/wascc/lattice-client/pkg/retry"
	"github.com/wascc/lattice-client/probe"
	"github.com/wascc/lattice-client/protocol"
)

// Bus is the transport surface the client needs: scatter-gather plumbing
// plus long-lived stream subscriptions for the event watch.
type Bus interface {
	probe.Transport

	// SubscribeStream opens a subscription that lives until closed, for
	// continuous feeds rather than per-query inboxes.
	SubscribeStream(subject string) (probe.ReplySubscription, error)
}

type natsBus struct {
	c *natsclient.Client
}

func (b *natsBus) NewReplyInbox() string {
	return b.c.NewReplyInbox()
}

func (b *natsBus) SubscribeReplies(subject string) (probe.ReplySubscription, error) {
	return b.c.SubscribeEphemeral(subject)
}

func (b *natsBus) PublishRequest(ctx context.Context, subject, reply string, data []byte) error {
	return b.c.PublishRequest(ctx, subject, reply, data)
}

func (b *natsBus) SubscribeStream(subject string) (probe.ReplySubscription, error) {
	return b.c.SubscribeEphemeral(subject)
}

// Client is a connected lattice control client. Create with New, call
// Connect before the first query, and Close when done. All query methods
// are safe for concurrent use; each runs its own collector on its own
// reply inbox.
type Client struct {
	cfg             *config.Config
	bus             *natsclient.Client
	transport       Bus
	logger          *slog.Logger
	metrics         *metric.Metrics
	metricsRegistry *metric.MetricsRegistry
	metricsServer   *metric.Server

	defaultTimeout time.Duration
}

// New builds a client from configuration. The bus connection is not opened
// until Connect.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:            cfg,
		logger:         slog.Default(),
		defaultTimeout: cfg.RPCTimeout(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if cfg.MetricsPort > 0 {
		if c.metricsRegistry == nil {
			c.metricsRegistry = metric.NewMetricsRegistry()
			c.metrics = c.metricsRegistry.CoreMetrics()
		}
		c.metricsServer = metric.NewServer(cfg.MetricsPort, "/metrics", c.metricsRegistry)
	}

	if c.transport == nil {
		busOpts := []natsclient.ClientOption{
			natsclient.WithName(cfg.ClientName),
		}
		switch {
		case cfg.CredsFile != "":
			busOpts = append(busOpts, natsclient.WithCredsFile(cfg.CredsFile))
		case cfg.Token != "":
			busOpts = append(busOpts, natsclient.WithToken(cfg.Token))
		case cfg.Username != "":
			busOpts = append(busOpts, natsclient.WithCredentials(cfg.Username, cfg.Password))
		}
		if c.metricsRegistry != nil {
			busOpts = append(busOpts, natsclient.WithMetrics(c.metricsRegistry))
		}

		bus, err := natsclient.NewClient(cfg.BusURL, busOpts...)
		if err != nil {
			return nil, errors.WrapInvalid(err, "Client", "New", "build bus client")
		}
		c.bus = bus
		c.transport = &natsBus{c: bus}
	}
	return c, nil
}

// Connect opens the bus connection, retrying transient dial failures with
// backoff. No-op when the client was built around an injected transport.
func (c *Client) Connect(ctx context.Context) error {
	if c.metricsServer != nil {
		if err := c.metricsServer.Start(); err != nil {
			return err
		}
		c.logger.Info("metrics endpoint listening", "addr", c.metricsServer.Addr())
	}
	if c.bus == nil {
		return nil
	}
	err := retry.Do(ctx, retry.Quick(), func() error {
		connectErr := c.bus.Connect(ctx)
		if connectErr != nil && errors.IsInvalid(connectErr) {
			return retry.NonRetryable(connectErr)
		}
		return connectErr
	})
	if err != nil {
		if errors.IsInvalid(err) {
			return errors.WrapInvalid(err, "Client", "Connect", "connect to lattice bus")
		}
		return errors.WrapTransient(err, "Client", "Connect", "connect to lattice bus")
	}
	c.logger.Info("connected to lattice bus", "url", c.cfg.BusURL)
	return nil
}

// Close drains and closes the bus connection and stops the metrics
// endpoint if one was started.
func (c *Client) Close(ctx context.Context) error {
	if c.metricsServer != nil {
		if err := c.metricsServer.Stop(); err != nil {
			c.logger.Warn("metrics endpoint shutdown", "error", err)
		}
	}
	if c.bus == nil {
		return nil
	}
	return c.bus.Close(ctx)
}

// ProbeAll broadcasts a host inventory query to every host and aggregates
// the replies into a snapshot sorted by host identity.
func (c *Client) ProbeAll(ctx context.Context, opts ...QueryOption) (*protocol.AggregatedSnapshot, error) {
	return c.runQuery(ctx, protocol.QueryHosts, protocol.AllHosts(), opts)
}

// ProbeHost queries exactly one host for its inventory. The query stops as
// soon as that host answers; no answer inside the window is an
// ErrInsufficientReplies.
func (c *Client) ProbeHost(ctx context.Context, hostID string, opts ...QueryOption) (*protocol.HostInventory, error) {
	if hostID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Client", "ProbeHost", "empty host identity")
	}

	opts = append(opts, WithExpectedReplies(1), WithMinReplies(1))
	snapshot, err := c.runQuery(ctx, protocol.QueryHosts, protocol.HostScope(hostID), opts)
	if err != nil {
		return nil, err
	}
	inv, ok := snapshot.Host(hostID)
	if !ok {
		// A different responder answered a host-scoped query.
		return nil, errors.WrapTransient(errors.ErrInsufficientReplies, "Client", "ProbeHost", "await host reply")
	}
	return inv, nil
}

// QueryWorkloads broadcasts a workload query under the given scope.
func (c *Client) QueryWorkloads(ctx context.Context, scope protocol.Scope, opts ...QueryOption) (*protocol.AggregatedSnapshot, error) {
	return c.runQuery(ctx, protocol.QueryWorkloads, scope, opts)
}

// QueryLinks collects the link bindings known across the lattice, grouped
// by the host that reported them.
func (c *Client) QueryLinks(ctx context.Context, opts ...QueryOption) (map[string][]protocol.LinkBinding, error) {
	snapshot, err := c.runQuery(ctx, protocol.QueryLinks, protocol.AllHosts(), opts)
	if err != nil {
		return nil, err
	}
	links := make(map[string][]protocol.LinkBinding, snapshot.HostCount())
	for i := range snapshot.Hosts {
		host := &snapshot.Hosts[i]
		if len(host.Links) > 0 {
			links[host.ID] = host.Links
		}
	}
	return links, nil
}

func (c *Client) runQuery(ctx context.Context, kind protocol.QueryKind, scope protocol.Scope, opts []QueryOption) (*protocol.AggregatedSnapshot, error) {
	settings := c.querySettings(opts)
	req := protocol.NewQueryRequest(kind, scope, settings.timeout)

	collectorOpts := []probe.CollectorOption{
		probe.WithLogger(slogAdapter{c.logger}),
	}
	if settings.expected > 0 {
		collectorOpts = append(collectorOpts, probe.WithExpectedReplies(settings.expected))
	}
	if settings.minReplies > 0 {
		collectorOpts = append(collectorOpts, probe.WithMinReplies(settings.minReplies))
	}
	if c.metrics != nil {
		collectorOpts = append(collectorOpts, probe.WithMetrics(c.metrics))
	}

	collector, err := probe.NewCollector(c.transport, req, collectorOpts...)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("lattice query", "kind", kind, "subject", collector.Subject(), "window", settings.timeout)
	return collector.Run(ctx)
}

// WatchEvents subscribes to the lattice event stream and delivers decoded
// events until ctx is cancelled. Undecodable payloads are dropped with a
// log line. The returned channel is closed when the watch ends.
func (c *Client) WatchEvents(ctx context.Context) (<-chan events.BusEvent, error) {
	sub, err := c.transport.SubscribeStream(protocol.EventsSubject)
	if err != nil {
		return nil, errors.WrapTransient(err, "Client", "WatchEvents", "subscribe event stream")
	}

	out := make(chan events.BusEvent, 64)
	go func() {
		<-ctx.Done()
		sub.Close()
	}()
	go func() {
		defer close(out)
		for msg := range sub.Messages() {
			event, err := events.DecodeEvent(msg.Data)
			if err != nil {
				c.logger.Warn("dropped undecodable lattice event", "error", err)
				continue
			}
			select {
			case out <- *event:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// AuctionLaunch broadcasts a launch auction and returns the bidding hosts,
// sorted by host identity.
func (c *Client) AuctionLaunch(ctx context.Context, req *control.LaunchAuctionRequest, opts ...QueryOption) ([]control.LaunchAuctionResponse, error) {
	settings := c.querySettings(opts)
	return control.RunAuction(ctx, c.transport, req, settings.timeout)
}

// LaunchWorkload commands one host to start a workload and waits for its
// acknowledgement.
func (c *Client) LaunchWorkload(ctx context.Context, hostID string, cmd *control.LaunchCommand, opts ...QueryOption) (*control.CommandAck, error) {
	settings := c.querySettings(opts)
	return control.Launch(ctx, c.transport, hostID, cmd, settings.timeout)
}

// TerminateWorkload commands one host to stop a workload and waits for its
// acknowledgement.
func (c *Client) TerminateWorkload(ctx context.Context, hostID string, cmd *control.TerminateCommand, opts ...QueryOption) (*control.CommandAck, error) {
	settings := c.querySettings(opts)
	return control.Terminate(ctx, c.transport, hostID, cmd, settings.timeout)
}

// slogAdapter lets the collector's printf-style logger speak slog.
type slogAdapter struct {
	logger *slog.Logger
}

func (a slogAdapter) Printf(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

func (a slogAdapter) Debugf(format string, v ...any) {
	a.logger.Debug(fmt.Sprintf(format, v...))
}
