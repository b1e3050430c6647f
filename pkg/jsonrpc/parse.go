// ABOUTME: Wire-side decoding of JSON-RPC messages
// ABOUTME: Classifies payloads as requests or responses by object shape

package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidMessage reports a payload that is neither a well-formed
// request nor a well-formed response.
var ErrInvalidMessage = errors.New("message is neither request nor response")

// ParseResponseOrRequest decodes one wire message. Exactly one of the
// returned pointers is non-nil on success: a "method" key makes the
// message a request, a "result" or "error" key makes it a response.
func ParseResponseOrRequest(data []byte) (*Request, *Response, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	if _, hasMethod := probe["method"]; hasMethod {
		var req Request
		if err := json.Unmarshal(data, &req); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		return &req, nil, nil
	}

	_, hasResult := probe["result"]
	_, hasError := probe["error"]
	if hasResult || hasError {
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
		}
		return nil, &resp, nil
	}

	return nil, nil, ErrInvalidMessage
}

// Encode serializes a request or response to its UTF-8 JSON wire text.
func Encode(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode message: %w", err)
	}
	return data, nil
}
