// ABOUTME: Generic request/response protocol engine over a byte stream
// ABOUTME: Handles framing, correlation, lifecycle state, and inbound dispatch

package client

import (
	"fmt"
	"io"

	"github.com/fastogt/fastocloud-go/pkg/compressor"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/protocol"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

const timestampField = "timestamp"

// Protocol names the methods the engine reacts to on its own. Product
// command catalogs supply these; empty strings disable the behavior.
type Protocol struct {
	// ActivateMethod: a matched response carrying a success result
	// promotes the connection from CONNECTED to ACTIVE.
	ActivateMethod string

	// StopServiceMethod: any matched response, whatever its payload,
	// forces a full reset.
	StopServiceMethod string

	// ClientPingMethod: inbound requests with this method get an
	// automatic pong carrying the current UTC timestamp in ms.
	ClientPingMethod string
}

// Connection is one logical byte-stream session with a peer. A
// Connection has exactly one owner: all calls, including the read
// loop, must come from a single goroutine. Run many connections by
// running many owner goroutines; no internal locking is provided.
type Connection struct {
	dialer  stream.Dialer
	address string
	stream  stream.Stream
	state   Status
	pending map[string]*jsonrpc.Request
	handler Handler
	comp    compressor.Compressor
	proto   Protocol
	onSend  func(raw []byte)
}

// New creates an unconnected client-side connection in INIT.
func New(dialer stream.Dialer, address string, handler Handler, comp compressor.Compressor, proto Protocol) *Connection {
	return &Connection{
		dialer:  dialer,
		address: address,
		state:   StatusInit,
		pending: make(map[string]*jsonrpc.Request),
		handler: handler,
		comp:    comp,
		proto:   proto,
	}
}

// NewAccepted wraps an already-established stream, e.g. a connection
// accepted by a server. It starts in CONNECTED without notifying the
// handler; the stream existed before the Connection did.
func NewAccepted(st stream.Stream, handler Handler, comp compressor.Compressor, proto Protocol) *Connection {
	return &Connection{
		stream:  st,
		state:   StatusConnected,
		pending: make(map[string]*jsonrpc.Request),
		handler: handler,
		comp:    comp,
		proto:   proto,
	}
}

func (c *Connection) Status() Status {
	return c.state
}

func (c *Connection) IsActive() bool {
	return c.state == StatusActive
}

func (c *Connection) IsConnected() bool {
	return c.state != StatusInit
}

// Stream exposes the underlying byte stream, nil when not connected.
// Callers use it to set deadlines; the engine enforces none itself.
func (c *Connection) Stream() stream.Stream {
	return c.stream
}

// Connect establishes the underlying stream. Connecting an already
// connected or active connection is a no-op success. On failure the
// state is unchanged.
func (c *Connection) Connect() error {
	if c.IsConnected() {
		return nil
	}
	if c.dialer == nil {
		return fmt.Errorf("connection has no dialer")
	}
	st, err := c.dialer.Dial(c.address)
	if err != nil {
		return fmt.Errorf("connect %s: %w", c.address, err)
	}
	c.stream = st
	c.setState(StatusConnected)
	return nil
}

// Disconnect resets the connection. No-op when already in INIT.
func (c *Connection) Disconnect() {
	if !c.IsConnected() {
		return
	}
	c.reset()
}

// SendRequest registers a pending entry under the command identifier's
// correlation id, then frames and writes the request. Registration
// happens before the write so a response can never race its request;
// a failed write unregisters the entry since nothing went out.
func (c *Connection) SendRequest(commandID uint64, method string, params interface{}) error {
	if !c.IsConnected() {
		return nil
	}
	req, err := jsonrpc.NewRequest(jsonrpc.SeqID(commandID), method, params)
	if err != nil {
		return err
	}
	c.pending[req.ID] = req
	if err := c.writeMessage(req); err != nil {
		delete(c.pending, req.ID)
		return err
	}
	return nil
}

// SendNotification sends a request with no id. Nothing is registered
// and no response will ever match it.
func (c *Connection) SendNotification(method string, params interface{}) error {
	if !c.IsConnected() {
		return nil
	}
	req, err := jsonrpc.NewRequest("", method, params)
	if err != nil {
		return err
	}
	return c.writeMessage(req)
}

// SendResponse answers an inbound request by correlation id.
func (c *Connection) SendResponse(id string, result interface{}) error {
	if !c.IsConnected() {
		return nil
	}
	resp, err := jsonrpc.NewResponse(id, result)
	if err != nil {
		return err
	}
	return c.writeMessage(resp)
}

// SendResponseOK sends the bare acknowledgement sentinel.
func (c *Connection) SendResponseOK(id string) error {
	if !c.IsConnected() {
		return nil
	}
	return c.writeMessage(jsonrpc.NewResponseOK(id))
}

// SendResponseFail sends a generic server-side failure.
func (c *Connection) SendResponseFail(id, message string) error {
	if !c.IsConnected() {
		return nil
	}
	return c.writeMessage(jsonrpc.NewResponseError(id, message, jsonrpc.ServerError))
}

// ReadCommand reads one frame off the stream and returns its body
// still compressed. A nil body with a nil error means "no data": the
// connection is not established or the peer closed the stream, and
// the caller is expected to disconnect. Truncated frames are reported
// as no data, never as a short payload.
func (c *Connection) ReadCommand() ([]byte, error) {
	if !c.IsConnected() {
		return nil, nil
	}
	body, err := protocol.ReadFrame(c.stream)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, nil
		}
		return nil, err
	}
	return body, nil
}

// ProcessCommands decompresses and decodes one frame body, then routes
// it. Inbound requests may trigger the keepalive auto-pong and are
// always forwarded to the handler. Inbound responses are matched
// against the pending table (unmatched is tolerated), drive the
// activation and stop-service transitions, and are forwarded together
// with their originating request. Decompression and decode failures
// propagate so the embedding application can close the connection.
func (c *Connection) ProcessCommands(data []byte) error {
	if len(data) == 0 {
		return nil
	}

	payload, err := c.comp.Decompress(data)
	if err != nil {
		return err
	}
	req, resp, err := jsonrpc.ParseResponseOrRequest(payload)
	if err != nil {
		return err
	}

	if req != nil {
		if c.proto.ClientPingMethod != "" && req.Method == c.proto.ClientPingMethod {
			if err := c.pong(req.ID); err != nil {
				return err
			}
		}
		if c.handler != nil {
			c.handler.OnRequest(c, req)
		}
		return nil
	}

	saved, ok := c.pending[resp.ID]
	if ok {
		delete(c.pending, resp.ID)
	}
	if saved != nil && saved.Method == c.proto.ActivateMethod && resp.IsMessage() && c.state == StatusConnected {
		c.setState(StatusActive)
	} else if saved != nil && saved.Method == c.proto.StopServiceMethod {
		c.reset()
	}
	if c.handler != nil {
		c.handler.OnResponse(c, saved, resp)
	}
	return nil
}

// SetOnSend installs an observer called with the wire text of every
// message successfully written, auto-pongs included. The daemons use
// it to journal outbound traffic. Called from the owner goroutine.
func (c *Connection) SetOnSend(fn func(raw []byte)) {
	c.onSend = fn
}

// SetState forces a lifecycle transition and notifies the handler.
// Intended for server-side accept paths, e.g. activating a subscriber
// after a successful handshake.
func (c *Connection) SetState(s Status) {
	c.setState(s)
}

// PendingCount reports outstanding requests awaiting a response.
func (c *Connection) PendingCount() int {
	return len(c.pending)
}

func (c *Connection) setState(s Status) {
	c.state = s
	if c.handler != nil {
		c.handler.OnStateChanged(c, s)
	}
}

// reset closes the stream, discards every pending request without a
// synthetic failure response, and returns to INIT.
func (c *Connection) reset() {
	if c.stream != nil {
		c.stream.Close()
		c.stream = nil
	}
	c.pending = make(map[string]*jsonrpc.Request)
	c.setState(StatusInit)
}

// pong answers a keepalive ping with the current UTC timestamp in
// milliseconds. Gated like other control traffic: silent no-op unless
// the connection is ACTIVE.
func (c *Connection) pong(id string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendResponse(id, map[string]int64{timestampField: jsonrpc.MakeUTCTimestamp()})
}

func (c *Connection) writeMessage(v interface{}) error {
	data, err := jsonrpc.Encode(v)
	if err != nil {
		return err
	}
	frame, err := protocol.Pack(c.comp, data)
	if err != nil {
		return err
	}
	if _, err := c.stream.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	if c.onSend != nil {
		c.onSend(data)
	}
	return nil
}
