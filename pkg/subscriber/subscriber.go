// ABOUTME: Subscriber command catalog, the server side of a subscriber connection
// ABOUTME: Thin wrappers over the protocol engine's response/request primitives

package subscriber

import (
	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/compressor"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

// Methods sent by subscribers.
const (
	ClientPingCommand            = "client_ping"
	ActivateCommand              = "client_active"
	GetServerInfoCommand         = "get_server_info"
	GetChannelsCommand           = "get_channels"
	GetRuntimeChannelInfoCommand = "get_runtime_channel_info"
)

// Methods sent to subscribers.
const (
	ServerPingCommand    = "server_ping"
	GetClientInfoCommand = "get_client_info"
	SendMessageCommand   = "send_message"
)

const (
	timestampField     = "timestamp"
	bandwidthHostField = "bandwidth_host"
	channelIDField     = "id"
	watchersField      = "watchers"
	messageField       = "message"
	messageTypeField   = "type"
	showTimeField      = "show_time"
)

// Client wraps one accepted subscriber connection. It starts in
// CONNECTED (the stream already exists) and becomes ACTIVE when the
// server acknowledges the subscriber's activation request.
type Client struct {
	*client.Connection
	addr string
}

// NewAccepted wraps a freshly accepted stream. The subscriber protocol
// has no engine-driven transitions; activation is acknowledged
// explicitly via ActivateSuccess.
func NewAccepted(st stream.Stream, addr string, handler client.Handler) *Client {
	conn := client.NewAccepted(st, handler, compressor.NewZlib(), client.Protocol{})
	return &Client{Connection: conn, addr: addr}
}

// Address is the remote address the subscriber connected from.
func (c *Client) Address() string {
	return c.addr
}

// ActivateSuccess acknowledges activation and promotes the connection
// to ACTIVE.
func (c *Client) ActivateSuccess(id string) error {
	if err := c.SendResponseOK(id); err != nil {
		return err
	}
	c.SetState(client.StatusActive)
	return nil
}

// ActivateFail rejects activation with a server error.
func (c *Client) ActivateFail(id, message string) error {
	return c.SendResponseFail(id, message)
}

// GetChannelsSuccess answers get_channels with the channel list.
func (c *Client) GetChannelsSuccess(id string, channels interface{}) error {
	return c.SendResponse(id, channels)
}

// GetServerInfoSuccess answers get_server_info. Active only.
func (c *Client) GetServerInfoSuccess(id, bandwidthHost string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendResponse(id, map[string]string{bandwidthHostField: bandwidthHost})
}

// GetRuntimeChannelInfoSuccess answers get_runtime_channel_info with
// the current watcher count. Active only.
func (c *Client) GetRuntimeChannelInfoSuccess(id, channelID string, watchers int) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendResponse(id, map[string]interface{}{
		channelIDField: channelID,
		watchersField:  watchers,
	})
}

// Pong answers a client_ping with the current timestamp. Active only.
func (c *Client) Pong(id string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendResponse(id, map[string]int64{timestampField: jsonrpc.MakeUTCTimestamp()})
}

// Ping probes the subscriber's liveness. Active only.
func (c *Client) Ping(commandID uint64) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, ServerPingCommand, map[string]int64{timestampField: jsonrpc.MakeUTCTimestamp()})
}

// GetClientInfo asks the subscriber for its device info. Active only.
func (c *Client) GetClientInfo(commandID uint64) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, GetClientInfoCommand, map[string]interface{}{})
}

// SendMessage pushes a text message shown on the subscriber's screen
// for showTime seconds. Active only.
func (c *Client) SendMessage(commandID uint64, message string, messageType, showTime int) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, SendMessageCommand, map[string]interface{}{
		messageField:     message,
		messageTypeField: messageType,
		showTimeField:    showTime,
	})
}
