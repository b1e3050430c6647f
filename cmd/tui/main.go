// ABOUTME: Entry point for the node monitor TUI
// ABOUTME: Connects to a media service node and shows live protocol traffic

package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/fastogt/fastocloud-go/internal/config"
	"github.com/fastogt/fastocloud-go/internal/tui"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	themeName := flag.String("theme", "default", "color theme (default, light)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if key := os.Getenv("FASTOCLOUD_LICENSE_KEY"); key != "" {
		cfg.Node.LicenseKey = key
	}

	timeout := time.Duration(cfg.Node.ConnectTimeoutSeconds) * time.Second
	var dialer stream.Dialer
	if cfg.Node.Transport == config.TransportWebSocket {
		dialer = &stream.WebSocketDialer{HandshakeTimeout: timeout}
	} else {
		dialer = &stream.TCPDialer{ConnectTimeout: timeout}
	}

	monitor := tui.NewMonitor(dialer, cfg.Node.Address, cfg.Node.LicenseKey)
	go monitor.Run()

	m := tui.NewModel(monitor, *themeName, cfg.Node.Address)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	monitor.Stop()
}
