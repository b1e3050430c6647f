// ABOUTME: JSON-RPC shaped message types for the FastoCloud wire protocol
// ABOUTME: Implements request, response, and error structures

package jsonrpc

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Request is a command sent to the peer. A request without an id is a
// notification: no response is expected and none will be correlated.
type Request struct {
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response answers a request. Exactly one of Result/Error is set.
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *Error          `json:"error,omitempty"`
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) String() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Standard JSON-RPC error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
	ServerError    = -32000
)

// OKResult is the sentinel result for a bare acknowledgement.
var OKResult = json.RawMessage(`"OK"`)

func (r *Request) IsNotification() bool {
	return r.ID == ""
}

// IsMessage reports whether the response carries a result.
func (r *Response) IsMessage() bool {
	return len(r.Result) > 0
}

func (r *Response) IsError() bool {
	return r.Error != nil
}

// NewRequest builds a request, marshaling params. An empty id produces
// a notification.
func NewRequest(id, method string, params interface{}) (*Request, error) {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		raw = data
	}
	return &Request{ID: id, Method: method, Params: raw}, nil
}

// NewResponse builds a success response, marshaling the result.
func NewResponse(id string, result interface{}) (*Response, error) {
	if raw, ok := result.(json.RawMessage); ok {
		return &Response{ID: id, Result: raw}, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return &Response{ID: id, Result: data}, nil
}

// NewResponseOK builds a bare acknowledgement.
func NewResponseOK(id string) *Response {
	return &Response{ID: id, Result: OKResult}
}

// NewResponseError builds an error response.
func NewResponseError(id, message string, code int) *Response {
	return &Response{ID: id, Error: &Error{Code: code, Message: message}}
}

// SeqID derives the correlation id for a 64-bit command identifier:
// the identifier's 8 big-endian bytes, hex encoded. Deterministic, so
// the same command identifier always maps to the same id.
func SeqID(commandID uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], commandID)
	return hex.EncodeToString(buf[:])
}

// MakeUTCTimestamp returns the current UTC time in milliseconds, the
// payload unit for keepalive pings and pongs.
func MakeUTCTimestamp() int64 {
	return time.Now().UTC().UnixMilli()
}
