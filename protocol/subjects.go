package protocol

import "fmt"

// Bus subject layout. The wasmbus prefix is shared with the hosts
// themselves; the client must publish where hosts listen and listen where
// hosts reply.
const (
	// SubjectPrefix is the root of all lattice subjects.
	SubjectPrefix = "wasmbus"

	// InventoryHosts is the broadcast probe subject for host discovery.
	InventoryHosts = "wasmbus.inventory.hosts"
	// InventoryWorkloads is the broadcast probe subject for workload listings.
	InventoryWorkloads = "wasmbus.inventory.workloads"
	// InventoryLinks is the broadcast probe subject for link binding listings.
	InventoryLinks = "wasmbus.inventory.links"

	// EventsSubject carries lattice bus events wrapped in CloudEvent envelopes.
	EventsSubject = "wasmbus.events"

	// controlPrefix roots the control-plane subjects.
	controlPrefix = "wasmbus.control"

	// AuctionSubject is the broadcast subject for launch auctions.
	AuctionSubject = "wasmbus.control.auction.request"
)

// RequestSubject derives the broadcast subject for a query from its kind and
// scope. Scoped queries narrow the subject so only the targeted host's
// responder sees them; every host subscribes to its own scoped variants.
func RequestSubject(kind QueryKind, scope Scope) string {
	var base string
	switch kind {
	case QueryWorkloads:
		base = InventoryWorkloads
	case QueryLinks:
		base = InventoryLinks
	default:
		base = InventoryHosts
	}

	switch scope.Kind {
	case ScopeHost:
		return fmt.Sprintf("%s.%s", base, scope.Target)
	case ScopeWorkload:
		return fmt.Sprintf("%s.workload.%s", base, scope.Target)
	default:
		return base
	}
}

// LaunchSubject returns the subject commanding a specific host to start a
// workload, e.g. wasmbus.control.Nxxxx.workload.start.
func LaunchSubject(hostID string) string {
	return fmt.Sprintf("%s.%s.workload.start", controlPrefix, hostID)
}

// TerminateSubject returns the subject commanding a specific host to stop a
// workload, e.g. wasmbus.control.Nxxxx.workload.stop.
func TerminateSubject(hostID string) string {
	return fmt.Sprintf("%s.%s.workload.stop", controlPrefix, hostID)
}
