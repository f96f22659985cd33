package probe

import (
	"sort"

	"github.com/wascc/lattice-client/protocol"
)

// Aggregate merges the final reply set into a host list sorted ascending by
// host identity. It is a pure function: the same reply set always produces
// the same list, regardless of map iteration or arrival order.
func Aggregate(replies map[string]*protocol.ReplyRecord) []protocol.HostInventory {
	hosts := make([]protocol.HostInventory, 0, len(replies))
	for hostID, rec := range replies {
		hosts = append(hosts, inventoryFromReply(hostID, rec))
	}
	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].ID < hosts[j].ID
	})
	return hosts
}

// inventoryFromReply normalizes the three reply shapes into one inventory.
// Hosts queries carry a full inventory; workloads and links queries carry
// bare lists that get wrapped in a minimal inventory for the host.
func inventoryFromReply(hostID string, rec *protocol.ReplyRecord) protocol.HostInventory {
	if rec.Inventory != nil {
		inv := *rec.Inventory
		if inv.ID == "" {
			inv.ID = hostID
		}
		return inv
	}
	return protocol.HostInventory{
		ID:        hostID,
		Workloads: rec.Workloads,
		Links:     rec.Links,
	}
}
