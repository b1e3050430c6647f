// ABOUTME: Control-plane command catalog for a FastoCloud media service
// ABOUTME: Thin wrappers over the protocol engine's request primitives

package controlplane

import (
	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/compressor"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

// Service commands.
const (
	ActivateCommand          = "activate_request"
	PrepareServiceCommand    = "prepare_service"
	SyncServiceCommand       = "sync_service"
	StopServiceCommand       = "stop_service"
	ServicePingCommand       = "ping_service"
	StatisticServiceCommand  = "statistic_service"
	ClientPingCommand        = "ping_client" // ping from service
	GetLogServiceCommand     = "get_log_service"
)

// Stream commands.
const (
	StartStreamCommand       = "start_stream"
	StopStreamCommand        = "stop_stream"
	RestartStreamCommand     = "restart_stream"
	GetLogStreamCommand      = "get_log_stream"
	GetPipelineStreamCommand = "get_pipeline_stream"
	ChangedStreamCommand     = "changed_source_stream"
	StatisticStreamCommand   = "statistic_stream"
	QuitStatusStreamCommand  = "quit_status_stream"
)

// Wire field names.
const (
	timestampField         = "timestamp"
	licenseKeyField        = "license_key"
	feedbackDirectoryField = "feedback_directory"
	streamsField           = "streams"
	streamIDField          = "id"
	pathField              = "path"
	configField            = "config"
	delayField             = "delay"
)

// StreamConfig is an opaque stream description forwarded to the
// service verbatim. Keys are case-sensitive on the service side.
type StreamConfig map[string]interface{}

// ServiceDirectories are the working directories announced by
// prepare_service.
type ServiceDirectories struct {
	Feedback    string `json:"feedback_directory"`
	Timeshifts  string `json:"timeshifts_directory"`
	HLS         string `json:"hls_directory"`
	Playlists   string `json:"playlists_directory"`
	DVB         string `json:"dvb_directory"`
	CaptureCard string `json:"capture_card_directory"`
	VodsIn      string `json:"vods_in_directory"`
	Vods        string `json:"vods_directory"`
	Cods        string `json:"cods_directory"`
}

// Client drives the control-plane side of a media service node.
// Activation is the only command allowed before the service promotes
// the connection to ACTIVE; everything else silently no-ops until then.
type Client struct {
	*client.Connection
}

// New creates a disconnected control-plane client. The stream backend
// is injected, so blocking TCP and websocket transports both work.
func New(dialer stream.Dialer, address string, handler client.Handler) *Client {
	conn := client.New(dialer, address, handler, compressor.NewZlib(), client.Protocol{
		ActivateMethod:    ActivateCommand,
		StopServiceMethod: StopServiceCommand,
		ClientPingMethod:  ClientPingCommand,
	})
	return &Client{Connection: conn}
}

// Activate requests activation with the given license key. The state
// flips to ACTIVE only when the matching success response arrives.
func (c *Client) Activate(commandID uint64, licenseKey string) error {
	return c.SendRequest(commandID, ActivateCommand, map[string]string{licenseKeyField: licenseKey})
}

// Ping sends a service keepalive. Active connections only.
func (c *Client) Ping(commandID uint64) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, ServicePingCommand, map[string]int64{timestampField: jsonrpc.MakeUTCTimestamp()})
}

// PrepareService announces the node's working directories.
func (c *Client) PrepareService(commandID uint64, dirs ServiceDirectories) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, PrepareServiceCommand, dirs)
}

// SyncService pushes the full stream list to the node.
func (c *Client) SyncService(commandID uint64, streams []StreamConfig) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, SyncServiceCommand, map[string]interface{}{streamsField: streams})
}

// StopService asks the node to shut down after delay seconds. The
// engine resets the connection when the response arrives, whatever its
// payload.
func (c *Client) StopService(commandID uint64, delay int) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, StopServiceCommand, map[string]int{delayField: delay})
}

// GetLogService uploads the service log to path.
func (c *Client) GetLogService(commandID uint64, path string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, GetLogServiceCommand, map[string]string{pathField: path})
}

// StartStream launches a stream from its config.
func (c *Client) StartStream(commandID uint64, config StreamConfig) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, StartStreamCommand, map[string]interface{}{configField: config})
}

// StopStream stops a running stream.
func (c *Client) StopStream(commandID uint64, streamID string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, StopStreamCommand, map[string]string{streamIDField: streamID})
}

// RestartStream restarts a running stream.
func (c *Client) RestartStream(commandID uint64, streamID string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, RestartStreamCommand, map[string]string{streamIDField: streamID})
}

// GetLogStream uploads a stream's log to path.
func (c *Client) GetLogStream(commandID uint64, streamID, feedbackDirectory, path string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, GetLogStreamCommand, map[string]string{
		streamIDField:          streamID,
		feedbackDirectoryField: feedbackDirectory,
		pathField:              path,
	})
}

// GetPipelineStream uploads a stream's pipeline dump to path.
func (c *Client) GetPipelineStream(commandID uint64, streamID, feedbackDirectory, path string) error {
	if !c.IsActive() {
		return nil
	}
	return c.SendRequest(commandID, GetPipelineStreamCommand, map[string]string{
		streamIDField:          streamID,
		feedbackDirectoryField: feedbackDirectory,
		pathField:              path,
	})
}
