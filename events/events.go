// Package events defines the lattice bus event taxonomy and the CloudEvents
// 1.0 envelope the bus wraps them in. The client only consumes events; it
// never emits them, but the envelope constructor exists so responder
// implementations and tests can produce wire-faithful payloads.
package events

import "fmt"

// EventType names a kind of lattice occurrence.
type EventType string

// Bus event types. Hosts publish lifecycle events for themselves, their
// workloads, their capability providers, and link bindings. The health
// transition events are higher-order: they are synthesized by observers, not
// by hosts.
const (
	HostStarted             EventType = "host_started"
	HostStopped             EventType = "host_stopped"
	WorkloadStarting        EventType = "workload_starting"
	WorkloadStarted         EventType = "workload_started"
	WorkloadStopped         EventType = "workload_stopped"
	WorkloadUpdating        EventType = "workload_updating"
	WorkloadUpdateComplete  EventType = "workload_update_complete"
	ProviderLoaded          EventType = "provider_loaded"
	ProviderRemoved         EventType = "provider_removed"
	LinkCreated             EventType = "link_created"
	LinkRemoved             EventType = "link_removed"
	WorkloadBecameHealthy   EventType = "workload_became_healthy"
	WorkloadBecameUnhealthy EventType = "workload_became_unhealthy"
)

// eventTypePrefix namespaces event types inside CloudEvent envelopes.
const eventTypePrefix = "wasmbus.events"

// BusEvent is one occurrence on the lattice. Which fields are populated
// depends on Type; Host is always set.
type BusEvent struct {
	Type EventType `json:"type"`
	Host string    `json:"host"`

	// Workload lifecycle and link events.
	WorkloadID string `json:"workload_id,omitempty"`

	// Provider and link events.
	ProviderID  string `json:"provider_id,omitempty"`
	BindingName string `json:"binding_name,omitempty"`

	// Update completion only.
	Success *bool `json:"success,omitempty"`
}

// TypeURI returns the namespaced event type carried in the envelope, e.g.
// wasmbus.events.host_started.
func (e BusEvent) TypeURI() string {
	return fmt.Sprintf("%s.%s", eventTypePrefix, e.Type)
}

// Subject returns the envelope subject: the entity the event is about.
func (e BusEvent) Subject() string {
	switch e.Type {
	case HostStarted, HostStopped:
		return e.Host
	case ProviderLoaded, ProviderRemoved:
		return fmt.Sprintf("%s.%s", e.ProviderID, e.BindingName)
	case LinkCreated, LinkRemoved:
		return fmt.Sprintf("%s.%s.%s", e.WorkloadID, e.ProviderID, e.BindingName)
	default:
		return e.WorkloadID
	}
}

// String renders the event for human consumption, one line per event.
func (e BusEvent) String() string {
	switch e.Type {
	case HostStarted:
		return fmt.Sprintf("[%s] Host started", e.Host)
	case HostStopped:
		return fmt.Sprintf("[%s] Host stopped", e.Host)
	case WorkloadStarting:
		return fmt.Sprintf("[%s] Workload %s starting", e.Host, e.WorkloadID)
	case WorkloadStarted:
		return fmt.Sprintf("[%s] Workload %s started", e.Host, e.WorkloadID)
	case WorkloadStopped:
		return fmt.Sprintf("[%s] Workload %s stopped", e.Host, e.WorkloadID)
	case WorkloadUpdating:
		return fmt.Sprintf("[%s] Workload %s updating", e.Host, e.WorkloadID)
	case WorkloadUpdateComplete:
		outcome := "failed"
		if e.Success != nil && *e.Success {
			outcome = "succeeded"
		}
		return fmt.Sprintf("[%s] Workload %s update %s", e.Host, e.WorkloadID, outcome)
	case ProviderLoaded:
		return fmt.Sprintf("[%s] Provider %s,%s loaded", e.Host, e.ProviderID, e.BindingName)
	case ProviderRemoved:
		return fmt.Sprintf("[%s] Provider %s,%s removed", e.Host, e.ProviderID, e.BindingName)
	case LinkCreated:
		return fmt.Sprintf("[%s] Workload %s bound to %s,%s", e.Host, e.WorkloadID, e.ProviderID, e.BindingName)
	case LinkRemoved:
		return fmt.Sprintf("[%s] Workload %s un-bound from %s,%s", e.Host, e.WorkloadID, e.ProviderID, e.BindingName)
	case WorkloadBecameHealthy:
		return fmt.Sprintf("[%s] Workload %s became healthy", e.Host, e.WorkloadID)
	case WorkloadBecameUnhealthy:
		return fmt.Sprintf("[%s] Workload %s became unhealthy", e.Host, e.WorkloadID)
	default:
		return fmt.Sprintf("[%s] %s", e.Host, e.Type)
	}
}
