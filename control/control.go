// Package control implements the lattice control plane interactions: launch
// auctions broadcast to every host, and point commands that start or stop a
// workload on one specific host.
package control

import (
	"encoding/json"

	"github.com/wascc/lattice-client/errors"
)

// LaunchAuctionRequest is broadcast to every host on the bus, asking who is
// willing and able to run a workload under the given constraints.
type LaunchAuctionRequest struct {
	WorkloadID  string            `json:"workload_id"`
	Revision    uint32            `json:"revision"`
	Constraints map[string]string `json:"constraints"`
}

// NewLaunchAuctionRequest builds an auction request. A nil constraints map
// is normalized to empty so the wire form always carries an object.
func NewLaunchAuctionRequest(workloadID string, revision uint32, constraints map[string]string) *LaunchAuctionRequest {
	if constraints == nil {
		constraints = map[string]string{}
	}
	return &LaunchAuctionRequest{
		WorkloadID:  workloadID,
		Revision:    revision,
		Constraints: constraints,
	}
}

// LaunchAuctionResponse is one host's bid: it confirms the host meets the
// constraints and has capacity for the workload.
type LaunchAuctionResponse struct {
	HostID string `json:"host_id"`
}

// LaunchCommand instructs one specific host to load and start a workload.
type LaunchCommand struct {
	WorkloadID string `json:"workload_id"`
	Revision   uint32 `json:"revision"`
}

// TerminateCommand instructs one specific host to stop a workload.
type TerminateCommand struct {
	WorkloadID string `json:"workload_id"`
}

// CommandAck is a host's confirmation that it accepted a launch or
// terminate command. Acceptance is not completion; watch the event stream
// for the workload lifecycle events that follow.
type CommandAck struct {
	WorkloadID string `json:"workload_id"`
	Host       string `json:"host"`
}

func encode(v any, method string) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Control", method, "marshal payload")
	}
	return data, nil
}
