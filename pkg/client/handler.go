// ABOUTME: Lifecycle status and handler capability for protocol connections
// ABOUTME: Handlers receive state changes and inbound requests/responses

package client

import "github.com/fastogt/fastocloud-go/pkg/jsonrpc"

// Status is the connection lifecycle state. INIT is both the starting
// state and the state after any reset; a reset connection may be
// connected again.
type Status int

const (
	StatusInit Status = iota
	StatusConnected
	StatusActive
)

func (s Status) String() string {
	switch s {
	case StatusInit:
		return "init"
	case StatusConnected:
		return "connected"
	case StatusActive:
		return "active"
	default:
		return "unknown"
	}
}

// Handler is the external collaborator a connection reports to. All
// calls are made from the goroutine driving the connection.
type Handler interface {
	// OnStateChanged fires on every lifecycle transition.
	OnStateChanged(c *Connection, status Status)

	// OnRequest receives every inbound request, including keepalive
	// pings the engine already answered.
	OnRequest(c *Connection, req *jsonrpc.Request)

	// OnResponse receives every inbound response together with the
	// request it answers, or nil when no pending request matched.
	OnResponse(c *Connection, req *jsonrpc.Request, resp *jsonrpc.Response)
}
