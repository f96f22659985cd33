package protocol

import (
	"encoding/json"

	"github.com/wascc/lattice-client/errors"
)

// EncodeRequest serializes a query request for broadcast.
func EncodeRequest(req *QueryRequest) ([]byte, error) {
	if req == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Codec", "EncodeRequest", "nil request")
	}
	if req.CorrelationID == "" {
		return nil, errors.WrapInvalid(errors.ErrCorrelationMissing, "Codec", "EncodeRequest", "validate request")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Codec", "EncodeRequest", "marshal request")
	}
	return data, nil
}

// DecodeRequest parses a query request. Responders use this; the client
// itself only needs it in tests, but the codec stays symmetric so the
// correlation identifier provably round-trips.
func DecodeRequest(data []byte) (*QueryRequest, error) {
	var req QueryRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, errors.WrapInvalid(err, "Codec", "DecodeRequest", "unmarshal request")
	}
	if req.CorrelationID == "" {
		return nil, errors.WrapInvalid(errors.ErrCorrelationMissing, "Codec", "DecodeRequest", "validate request")
	}
	return &req, nil
}

// EncodeReply serializes a reply record. The client never sends replies;
// this exists for responder implementations and test fixtures.
func EncodeReply(rec *ReplyRecord) ([]byte, error) {
	if rec == nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "Codec", "EncodeReply", "nil record")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.WrapInvalid(err, "Codec", "EncodeReply", "marshal reply")
	}
	return data, nil
}
