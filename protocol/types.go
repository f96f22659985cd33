// Package protocol defines the wire-level data model for the lattice
// inventory protocol: query requests, reply records, host inventories, and
// the decoder that turns raw bus payloads into typed records.
package protocol

import (
	"time"

	"github.com/google/uuid"
)

// ScopeKind discriminates what a query targets.
type ScopeKind string

// Query scope kinds
const (
	ScopeAllHosts ScopeKind = "all"
	ScopeHost     ScopeKind = "host"
	ScopeWorkload ScopeKind = "workload"
)

// Scope selects the target of a query: every host on the lattice, a single
// host, or a single workload wherever it runs.
type Scope struct {
	Kind   ScopeKind `json:"kind"`
	Target string    `json:"target,omitempty"`
}

// AllHosts returns a scope covering every host on the lattice.
func AllHosts() Scope {
	return Scope{Kind: ScopeAllHosts}
}

// HostScope returns a scope targeting a single host by identity.
func HostScope(hostID string) Scope {
	return Scope{Kind: ScopeHost, Target: hostID}
}

// WorkloadScope returns a scope targeting a single workload by identity.
func WorkloadScope(workloadID string) Scope {
	return Scope{Kind: ScopeWorkload, Target: workloadID}
}

// QueryKind names the reply schema a query expects.
type QueryKind string

// Query kinds
const (
	QueryHosts     QueryKind = "hosts"
	QueryWorkloads QueryKind = "workloads"
	QueryLinks     QueryKind = "links"
)

// QueryRequest is the broadcast half of one scatter-gather query. The
// correlation identifier binds replies to this specific request; it is
// generated fresh per query and never reused.
type QueryRequest struct {
	CorrelationID string    `json:"correlation_id"`
	Kind          QueryKind `json:"kind"`
	Scope         Scope     `json:"scope"`
	TimeoutMillis int64     `json:"timeout_ms"`
}

// NewQueryRequest creates a request with a fresh correlation identifier.
func NewQueryRequest(kind QueryKind, scope Scope, timeout time.Duration) *QueryRequest {
	return &QueryRequest{
		CorrelationID: uuid.New().String(),
		Kind:          kind,
		Scope:         scope,
		TimeoutMillis: timeout.Milliseconds(),
	}
}

// Timeout returns the request's collection window as a duration.
func (q *QueryRequest) Timeout() time.Duration {
	return time.Duration(q.TimeoutMillis) * time.Millisecond
}

// WorkloadKind discriminates workload descriptors.
type WorkloadKind string

// Workload kinds. Anything a host reports outside the known set is carried
// through verbatim rather than rejected.
const (
	WorkloadActor    WorkloadKind = "actor"
	WorkloadProvider WorkloadKind = "capability-provider"
)

// WorkloadDescriptor describes one workload running on a host.
type WorkloadDescriptor struct {
	ID       string       `json:"id"`
	Kind     WorkloadKind `json:"kind"`
	Revision uint32       `json:"revision,omitempty"`
	ImageRef string       `json:"image_ref,omitempty"`
}

// LinkBinding is a configured association between a workload and a
// capability provider, with the configuration values applied at bind time.
type LinkBinding struct {
	WorkloadID    string            `json:"workload_id"`
	ProviderID    string            `json:"provider_id"`
	ContractID    string            `json:"contract_id"`
	BindingName   string            `json:"binding_name,omitempty"`
	Configuration map[string]string `json:"configuration,omitempty"`
}

// HostInventory is one host's snapshot of itself: identity, running
// workloads, active link bindings, and free-form labels. Inventories are
// created fresh from each decoded reply and never mutated afterwards; a
// later reply from the same host replaces the earlier inventory wholesale.
type HostInventory struct {
	ID        string               `json:"id"`
	UptimeMS  int64                `json:"uptime_ms,omitempty"`
	Labels    map[string]string    `json:"labels,omitempty"`
	Workloads []WorkloadDescriptor `json:"workloads,omitempty"`
	Links     []LinkBinding        `json:"links,omitempty"`
}

// WorkloadCount returns the number of workloads in the inventory.
func (h *HostInventory) WorkloadCount() int {
	return len(h.Workloads)
}

// ReplyRecord is one decoded reply from one responder. Exactly one of the
// payload fields is populated depending on the query kind; HostID is always
// present and is the dedup key within a query window.
type ReplyRecord struct {
	CorrelationID string               `json:"correlation_id"`
	HostID        string               `json:"host"`
	Inventory     *HostInventory       `json:"inventory,omitempty"`
	Workloads     []WorkloadDescriptor `json:"workloads,omitempty"`
	Links         []LinkBinding        `json:"links,omitempty"`

	// ReceivedAt is stamped by the transport on arrival, not carried on the
	// wire.
	ReceivedAt time.Time `json:"-"`
}

// AggregatedSnapshot is the merged result of one scatter-gather query.
// Hosts are sorted ascending by identity so two snapshots built from the
// same reply set compare equal regardless of arrival order.
type AggregatedSnapshot struct {
	Hosts []HostInventory `json:"hosts"`

	// Complete is a best-effort flag: true when at least one reply arrived
	// inside the window, false for an empty snapshot. It never claims that
	// every host on the lattice was heard from.
	Complete bool `json:"complete"`

	// Collection window bounds (wall clock).
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// HostCount returns the number of distinct hosts in the snapshot.
func (s *AggregatedSnapshot) HostCount() int {
	return len(s.Hosts)
}

// TotalWorkloads returns the sum of workload counts across all hosts.
func (s *AggregatedSnapshot) TotalWorkloads() int {
	total := 0
	for i := range s.Hosts {
		total += len(s.Hosts[i].Workloads)
	}
	return total
}

// TotalLinks returns the sum of link binding counts across all hosts.
func (s *AggregatedSnapshot) TotalLinks() int {
	total := 0
	for i := range s.Hosts {
		total += len(s.Hosts[i].Links)
	}
	return total
}

// Host returns the inventory for the given host identity, if present.
func (s *AggregatedSnapshot) Host(id string) (*HostInventory, bool) {
	for i := range s.Hosts {
		if s.Hosts[i].ID == id {
			return &s.Hosts[i], true
		}
	}
	return nil, false
}
