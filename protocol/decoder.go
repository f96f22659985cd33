package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/wascc/lattice-client/errors"
)

// DecodeErrorKind classifies why a raw payload could not become a ReplyRecord.
type DecodeErrorKind string

// Decode failure kinds
const (
	// MalformedEncoding means the payload was not valid JSON at all.
	MalformedEncoding DecodeErrorKind = "malformed_encoding"
	// SchemaMismatch means the payload was JSON but did not match the reply schema.
	SchemaMismatch DecodeErrorKind = "schema_mismatch"
	// CorrelationMissing means the reply carried no correlation identifier.
	CorrelationMissing DecodeErrorKind = "correlation_missing"
)

// DecodeError reports a single undecodable reply. Decode failures are always
// per-message: the caller drops the offending payload and the query
// continues unaffected.
type DecodeError struct {
	Kind   DecodeErrorKind
	Detail string
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("reply decode failed (%s): %s", e.Kind, e.Detail)
}

// Unwrap maps the decode kind onto the package-level sentinel errors so
// callers can use errors.Is without inspecting Kind.
func (e *DecodeError) Unwrap() error {
	switch e.Kind {
	case MalformedEncoding:
		return errors.ErrMalformedEncoding
	case CorrelationMissing:
		return errors.ErrCorrelationMissing
	default:
		return errors.ErrSchemaMismatch
	}
}

// replySchema constrains inbound replies before unmarshalling. Responders on
// an open lattice are not under our control; validating first keeps a
// responder with a divergent schema from being silently half-decoded.
const replySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["correlation_id", "host"],
  "properties": {
    "correlation_id": {"type": "string"},
    "host": {"type": "string", "minLength": 1},
    "inventory": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "uptime_ms": {"type": "integer", "minimum": 0},
        "labels": {"type": "object", "additionalProperties": {"type": "string"}},
        "workloads": {"type": "array", "items": {"$ref": "#/definitions/workload"}},
        "links": {"type": "array", "items": {"$ref": "#/definitions/link"}}
      }
    },
    "workloads": {"type": "array", "items": {"$ref": "#/definitions/workload"}},
    "links": {"type": "array", "items": {"$ref": "#/definitions/link"}}
  },
  "definitions": {
    "workload": {
      "type": "object",
      "required": ["id", "kind"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "kind": {"type": "string", "minLength": 1},
        "revision": {"type": "integer", "minimum": 0},
        "image_ref": {"type": "string"}
      }
    },
    "link": {
      "type": "object",
      "required": ["workload_id", "provider_id", "contract_id"],
      "properties": {
        "workload_id": {"type": "string", "minLength": 1},
        "provider_id": {"type": "string", "minLength": 1},
        "contract_id": {"type": "string", "minLength": 1},
        "binding_name": {"type": "string"},
        "configuration": {"type": "object", "additionalProperties": {"type": "string"}}
      }
    }
  }
}`

// Compiled once at package init; the schema is a constant.
var compiledReplySchema = func() *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(replySchema))
	if err != nil {
		panic(fmt.Sprintf("protocol: reply schema does not compile: %v", err))
	}
	return schema
}()

// Decode parses one raw inbound payload into a typed reply record. It never
// panics; every failure mode is reported as a *DecodeError so the collector
// can drop the message and keep collecting.
func Decode(data []byte) (*ReplyRecord, error) {
	if !json.Valid(data) {
		return nil, &DecodeError{Kind: MalformedEncoding, Detail: "payload is not valid JSON"}
	}

	result, err := compiledReplySchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, &DecodeError{Kind: MalformedEncoding, Detail: err.Error()}
	}
	if !result.Valid() {
		detail := "schema validation failed"
		if errs := result.Errors(); len(errs) > 0 {
			detail = fmt.Sprintf("%s: %s", errs[0].Field(), errs[0].Description())
		}
		return nil, &DecodeError{Kind: SchemaMismatch, Detail: detail}
	}

	var rec ReplyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		// Schema passed but Go-level unmarshal did not (e.g. a numeric
		// overflow). Treat as a schema divergence rather than corruption.
		return nil, &DecodeError{Kind: SchemaMismatch, Detail: err.Error()}
	}

	if rec.CorrelationID == "" {
		return nil, &DecodeError{Kind: CorrelationMissing, Detail: "reply has no correlation identifier"}
	}

	return &rec, nil
}
