package control

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/wascc/lattice-client/errors"
	"github.com/wascc/lattice-client/probe"
	"github.com/wascc/lattice-client/protocol"
)

// RunAuction broadcasts a launch auction and collects bids for the given
// window. Like an inventory probe, the reply inbox is subscribed before the
// request goes out, bids are deduplicated by host, and the result is sorted
// ascending by host identity. Zero bids is not an error; it means no host
// can satisfy the constraints right now.
func RunAuction(ctx context.Context, transport probe.Transport, req *LaunchAuctionRequest, window time.Duration) ([]LaunchAuctionResponse, error) {
	if transport == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", "RunAuction", "nil transport")
	}
	if req == nil || req.WorkloadID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", "RunAuction", "auction needs a workload")
	}
	if window <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Control", "RunAuction", "non-positive auction window")
	}

	inbox := transport.NewReplyInbox()
	sub, err := transport.SubscribeReplies(inbox)
	if err != nil {
		return nil, errors.WrapTransient(err, "Control", "RunAuction", "subscribe bid inbox")
	}
	defer sub.Close()

	payload, err := encode(req, "RunAuction")
	if err != nil {
		return nil, err
	}
	if err := transport.PublishRequest(ctx, protocol.AuctionSubject, inbox, payload); err != nil {
		return nil, errors.WrapTransient(err, "Control", "RunAuction", "broadcast auction")
	}

	bids := make(map[string]LaunchAuctionResponse)
	timer := time.NewTimer(window)
	defer timer.Stop()

collect:
	for {
		select {
		case <-ctx.Done():
			return nil, errors.WrapTransient(errors.ErrQueryCancelled, "Control", "RunAuction", "collect bids")
		case <-timer.C:
			break collect
		case msg, ok := <-sub.Messages():
			if !ok {
				break collect
			}
			var bid LaunchAuctionResponse
			if err := json.Unmarshal(msg.Data, &bid); err != nil || bid.HostID == "" {
				continue
			}
			bids[bid.HostID] = bid
		}
	}

	out := make([]LaunchAuctionResponse, 0, len(bids))
	for _, bid := range bids {
		out = append(out, bid)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].HostID < out[j].HostID
	})
	return out, nil
}
