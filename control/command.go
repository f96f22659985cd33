package control

import (
	"context"
	"encoding/json"
	"time"

	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/probe"
	"github.com/wascc/lattice-client/protocol"
)

// Launch commands one specific host to load and start a workload, and waits
// for the host's acknowledgement. The ack means the host accepted the
// command, not that the workload is running.
func Launch(ctx context.Context, transport probe.Transport, hostID string, cmd *LaunchCommand, timeout time.Duration) (*CommandAck, error) {
	if cmd == nil || cmd.WorkloadID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", "Launch", "command needs a workload")
	}
	payload, err := encode(cmd, "Launch")
	if err != nil {
		return nil, err
	}
	return awaitAck(ctx, transport, "Launch", protocol.LaunchSubject(hostID), payload, timeout)
}

// Terminate commands one specific host to stop a workload, and waits for
// the host's acknowledgement.
func Terminate(ctx context.Context, transport probe.Transport, hostID string, cmd *TerminateCommand, timeout time.Duration) (*CommandAck, error) {
	if cmd == nil || cmd.WorkloadID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", "Terminate", "command needs a workload")
	}
	payload, err := encode(cmd, "Terminate")
	if err != nil {
		return nil, err
	}
	return awaitAck(ctx, transport, "Terminate", protocol.TerminateSubject(hostID), payload, timeout)
}

// awaitAck performs a point request: one subject, one expected reply. The
// same subscribe-then-publish ordering as a probe applies, so a host that
// acks instantly cannot race the inbox.
func awaitAck(ctx context.Context, transport probe.Transport, method, subject string, payload []byte, timeout time.Duration) (*CommandAck, error) {
	if transport == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", method, "nil transport")
	}
	if timeout <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", method, "non-positive timeout")
	}

	inbox := transport.NewReplyInbox()
	sub, err := transport.SubscribeReplies(inbox)
	if err != nil {
		return nil, errors.WrapTransient(err, "Control", method, "subscribe ack inbox")
	}
	defer sub.Close()

	if err := transport.PublishRequest(ctx, subject, inbox, payload); err != nil {
		return nil, errors.WrapTransient(err, "Control", method, "send command")
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, errors.WrapTransient(errors.ErrQueryCancelled, "Control", method, "await ack")
		case <-timer.C:
			return nil, errors.WrapTransient(errors.ErrConnectionTimeout, "Control", method, "await ack")
		case msg, ok := <-sub.Messages():
			if !ok {
				return nil, errors.WrapTransient(errors.ErrConnectionLost, "Control", method, "await ack")
			}
			var ack CommandAck
			if err := json.Unmarshal(msg.Data, &ack); err != nil || ack.Host == "" {
				// Not an ack; keep waiting out the timeout.
				continue
			}
			return &ack, nil
		}
	}
}
