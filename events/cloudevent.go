package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/wascc/lattice-client/errors"
)

// Envelope constants. Hosts on the lattice publish events with these exact
// values; the version fields exist for forward compatibility, not
// negotiation.
const (
	specVersion      = "1.0"
	typeVersion      = "0.1"
	eventSource      = "https://wascc.dev/lattice/events"
	eventContentType = "application/json"
)

// CloudEvent is the CloudEvents 1.0 envelope events travel in on the bus.
// Data carries the JSON-encoded BusEvent; some publishers double-encode it
// as a JSON string, which DecodeEvent tolerates.
type CloudEvent struct {
	SpecVersion string          `json:"specversion"`
	Type        string          `json:"type"`
	TypeVersion string          `json:"typeversion"`
	Source      string          `json:"source"`
	ID          string          `json:"id"`
	Time        time.Time       `json:"time"`
	ContentType string          `json:"datacontenttype"`
	Subject     string          `json:"subject,omitempty"`
	Data        json.RawMessage `json:"data"`
}

// NewCloudEvent wraps a bus event in a fresh envelope with a unique event
// identifier and the current time.
func NewCloudEvent(event BusEvent) (*CloudEvent, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.WrapInvalid(err, "CloudEvent", "NewCloudEvent", "marshal event")
	}
	return &CloudEvent{
		SpecVersion: specVersion,
		Type:        event.TypeURI(),
		TypeVersion: typeVersion,
		Source:      eventSource,
		ID:          uuid.NewString(),
		Time:        time.Now().UTC(),
		ContentType: eventContentType,
		Subject:     event.Subject(),
		Data:        data,
	}, nil
}

// Encode serializes the envelope for publication.
func (ce *CloudEvent) Encode() ([]byte, error) {
	data, err := json.Marshal(ce)
	if err != nil {
		return nil, errors.WrapInvalid(err, "CloudEvent", "Encode", "marshal envelope")
	}
	return data, nil
}

// DecodeEvent parses a raw bus payload into the event it carries. The data
// field may be a JSON object or a doubly-encoded JSON string; both forms
// appear in the wild.
func DecodeEvent(payload []byte) (*BusEvent, error) {
	var envelope CloudEvent
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.WrapInvalid(err, "CloudEvent", "DecodeEvent", "unmarshal envelope")
	}
	if len(envelope.Data) == 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "CloudEvent", "DecodeEvent", "empty event data")
	}

	raw := []byte(envelope.Data)
	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, errors.WrapInvalid(err, "CloudEvent", "DecodeEvent", "unquote event data")
		}
		raw = []byte(inner)
	}

	var event BusEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, errors.WrapInvalid(err, "CloudEvent", "DecodeEvent", "unmarshal event data")
	}
	if event.Type == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "CloudEvent", "DecodeEvent", "event has no type")
	}
	return &event, nil
}
