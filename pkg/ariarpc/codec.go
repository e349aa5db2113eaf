package ariarpc

import (
	"encoding/json"
	"fmt"

	"github.com/creachadair/jrpc2"
)

const protocolVersion = "2.0"

// Request is one outbound JSON-RPC call. A nil Params leaves the member out
// of the encoded message, which the daemon treats differently from [].
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
	ID      ID     `json:"id"`
}

// Message is a decoded inbound message: exactly one of *Notification,
// *Result, *ErrorResponse or *Malformed.
type Message interface {
	message()
}

// Notification is a server push that answers no request.
type Notification struct {
	Method string
	Params json.RawMessage
}

// Result is a successful response to the request with the same ID.
type Result struct {
	ID     ID
	Result json.RawMessage
}

// ErrorResponse is a failed response to the request with the same ID.
type ErrorResponse struct {
	ID  ID
	Err *jrpc2.Error
}

// Malformed is anything that could not be classified.
type Malformed struct {
	Raw    []byte
	Reason error
}

func (*Notification) message()  {}
func (*Result) message()        {}
func (*ErrorResponse) message() {}
func (*Malformed) message()     {}

// Codec converts requests to wire frames and wire frames to messages.
type Codec interface {
	Encode(req *Request) ([]byte, error)
	Decode(buf []byte) Message
}

// JSONCodec is the Codec for aria2's JSON text frames.
type JSONCodec struct{}

func (JSONCodec) Encode(req *Request) ([]byte, error) {
	return json.Marshal(req)
}

// Decode classifies buf in one pass. Which members are present decides the
// variant, in this order: method, then id with result or error.
func (JSONCodec) Decode(buf []byte) Message {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(buf, &fields); err != nil {
		return &Malformed{Raw: buf, Reason: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	if _, ok := fields["jsonrpc"]; !ok {
		return &Malformed{Raw: buf, Reason: ErrMissingVersion}
	}
	if raw, ok := fields["method"]; ok {
		var method string
		if err := json.Unmarshal(raw, &method); err != nil {
			return &Malformed{Raw: buf, Reason: fmt.Errorf("%w: method is not a string", ErrMalformed)}
		}
		return &Notification{Method: method, Params: fields["params"]}
	}
	rawID, ok := fields["id"]
	if !ok {
		return &Malformed{Raw: buf, Reason: fmt.Errorf("%w: no method or id", ErrMalformed)}
	}
	var id ID
	if err := id.UnmarshalJSON(rawID); err != nil {
		return &Malformed{Raw: buf, Reason: fmt.Errorf("%w: %s", err, rawID)}
	}
	if raw, ok := fields["result"]; ok {
		return &Result{ID: id, Result: raw}
	}
	if raw, ok := fields["error"]; ok {
		return &ErrorResponse{ID: id, Err: decodeError(raw)}
	}
	return &Malformed{Raw: buf, Reason: fmt.Errorf("%w: id %s without result or error", ErrMalformed, id)}
}

// decodeError reads an error object. Payloads that are not objects are
// kept verbatim as the message.
func decodeError(raw json.RawMessage) *jrpc2.Error {
	var e jrpc2.Error
	if err := json.Unmarshal(raw, &e); err != nil {
		return &jrpc2.Error{Message: string(raw)}
	}
	return &e
}

// DecodeRequest parses an encoded Request. An absent params member decodes
// as nil, an empty array as a non-nil empty slice.
func DecodeRequest(buf []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(buf, &req); err != nil {
		return nil, err
	}
	return &req, nil
}
