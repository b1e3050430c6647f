// ABOUTME: Configuration loading and management for the FastoCloud daemons
// ABOUTME: Supports YAML files and environment variable overrides

package config

import (
	"fmt"
	"os"

	"github.com/fastogt/fastocloud-go/internal/xdg"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Transport names accepted by node.transport.
const (
	TransportTCP       = "tcp"
	TransportWebSocket = "websocket"
)

type Config struct {
	Node        NodeConfig               `mapstructure:"node"`
	Subscribers SubscribersConfig        `mapstructure:"subscribers"`
	Journal     JournalConfig            `mapstructure:"journal"`
	Streams     []map[string]interface{} `mapstructure:"streams"`
}

// NodeConfig describes the control-plane endpoint of a media node.
type NodeConfig struct {
	Address               string `mapstructure:"address"`
	Transport             string `mapstructure:"transport"` // "tcp" or "websocket"
	LicenseKey            string `mapstructure:"license_key"`
	ConnectTimeoutSeconds int    `mapstructure:"connect_timeout_seconds"`
}

// SubscribersConfig describes the subscriber-facing listeners. The
// websocket listener is optional and serves the same protocol over
// upgraded HTTP connections.
type SubscribersConfig struct {
	ListenAddress          string `mapstructure:"listen_address"`
	WebSocketListenAddress string `mapstructure:"websocket_listen_address"`
	BandwidthHost          string `mapstructure:"bandwidth_host"`
}

type JournalConfig struct {
	Path string `mapstructure:"path"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// IMPORTANT: Viper lowercases all map keys, but stream configs are
	// forwarded to the service verbatim and its keys are case-sensitive.
	// Parse YAML directly to preserve original key case for streams.
	//nolint:gosec // config file path from validated user input
	data, err := os.ReadFile(path)
	if err == nil {
		var rawConfig struct {
			Streams []map[string]interface{} `yaml:"streams"`
		}
		if yaml.Unmarshal(data, &rawConfig) == nil && len(rawConfig.Streams) > 0 {
			cfg.Streams = rawConfig.Streams
		}
	}

	// Expand XDG variables in the journal path
	cfg.Journal.Path = xdg.ExpandPath(cfg.Journal.Path)

	// Default to plain TCP if not specified
	if cfg.Node.Transport == "" {
		cfg.Node.Transport = TransportTCP
	}

	if cfg.Node.Transport != TransportTCP && cfg.Node.Transport != TransportWebSocket {
		return nil, fmt.Errorf("invalid node.transport: %s (must be 'tcp' or 'websocket')", cfg.Node.Transport)
	}

	return &cfg, nil
}
