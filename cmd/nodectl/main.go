// ABOUTME: Main entry point for the node control daemon
// ABOUTME: Activates a media service node, syncs streams, and keeps the link alive

package main

import (
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fastogt/fastocloud-go/internal/config"
	"github.com/fastogt/fastocloud-go/internal/journal"
	"github.com/fastogt/fastocloud-go/internal/logger"
	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/controlplane"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/protocol"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

const pingInterval = 30 * time.Second

// nodeHandler journals traffic and reacts to lifecycle transitions.
type nodeHandler struct {
	cfg       *config.Config
	jrn       *journal.Journal
	sessionID string
	seq       uint64
}

func (h *nodeHandler) nextSeq() uint64 {
	h.seq++
	return h.seq
}

func (h *nodeHandler) OnStateChanged(c *client.Connection, s client.Status) {
	logger.Info("node state: %s", s)
	if s != client.StatusActive {
		return
	}

	// Freshly activated: push the configured stream list.
	cp := &controlplane.Client{Connection: c}
	streams := make([]controlplane.StreamConfig, 0, len(h.cfg.Streams))
	for _, sc := range h.cfg.Streams {
		streams = append(streams, controlplane.StreamConfig(sc))
	}
	if err := cp.SyncService(h.nextSeq(), streams); err != nil {
		logger.Error("sync_service failed: %v", err)
	}
}

func (h *nodeHandler) OnRequest(c *client.Connection, req *jsonrpc.Request) {
	h.journal(journal.DirectionServiceToClient, req)
	logger.Debug("request from node: %s", req.Method)
}

func (h *nodeHandler) OnResponse(c *client.Connection, req *jsonrpc.Request, resp *jsonrpc.Response) {
	h.journal(journal.DirectionServiceToClient, resp)
	if req == nil {
		logger.Warn("response %s matches no outstanding request", resp.ID)
		return
	}
	if resp.IsError() {
		logger.Error("%s failed: %s", req.Method, resp.Error.Message)
		return
	}
	logger.Debug("%s acknowledged", req.Method)
}

func (h *nodeHandler) journal(direction journal.MessageDirection, v interface{}) {
	raw, err := jsonrpc.Encode(v)
	if err != nil {
		return
	}
	h.journalRaw(direction, raw)
}

func (h *nodeHandler) journalRaw(direction journal.MessageDirection, raw []byte) {
	if h.jrn == nil {
		return
	}
	if err := h.jrn.LogMessage(h.sessionID, direction, raw); err != nil {
		logger.Warn("journal write failed: %v", err)
	}
}

func buildDialer(cfg *config.Config) stream.Dialer {
	timeout := time.Duration(cfg.Node.ConnectTimeoutSeconds) * time.Second
	if cfg.Node.Transport == config.TransportWebSocket {
		return &stream.WebSocketDialer{HandshakeTimeout: timeout}
	}
	return &stream.TCPDialer{ConnectTimeout: timeout}
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger.SetVerbose(*verbose)

	// .env can carry the license key outside the config file
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config: %v", err)
		os.Exit(1)
	}
	if key := os.Getenv("FASTOCLOUD_LICENSE_KEY"); key != "" {
		cfg.Node.LicenseKey = key
	}

	var jrn *journal.Journal
	if cfg.Journal.Path != "" {
		jrn, err = journal.Open(cfg.Journal.Path)
		if err != nil {
			logger.Error("failed to open journal: %v", err)
			os.Exit(1)
		}
		defer jrn.Close()
	}

	sessionID := uuid.New().String()
	if jrn != nil {
		if err := jrn.CreateSession(sessionID, journal.KindControl, cfg.Node.Address); err != nil {
			logger.Warn("journal session failed: %v", err)
		}
		defer func() {
			if err := jrn.CloseSession(sessionID); err != nil {
				logger.Warn("journal close failed: %v", err)
			}
		}()
	}

	handler := &nodeHandler{cfg: cfg, jrn: jrn, sessionID: sessionID}
	node := controlplane.New(buildDialer(cfg), cfg.Node.Address, handler)

	// Every successful write, activation and ticker pings included, goes
	// into the journal with its exact wire text.
	node.SetOnSend(func(raw []byte) {
		handler.journalRaw(journal.DirectionClientToService, raw)
	})

	logger.Info("connecting to node %s over %s", cfg.Node.Address, cfg.Node.Transport)
	if err := node.Connect(); err != nil {
		logger.Error("connect failed: %v", err)
		os.Exit(1)
	}

	if err := node.Activate(handler.nextSeq(), cfg.Node.LicenseKey); err != nil {
		logger.Error("activate failed: %v", err)
		os.Exit(1)
	}

	// The connection has one owner: this loop. The reader goroutine works
	// on the stream captured here and never calls into the connection.
	frames := make(chan []byte, 16)
	readErrs := make(chan error, 1)
	st := node.Stream()
	go func() {
		defer close(frames)
		for {
			body, err := protocol.ReadFrame(st)
			if err != nil {
				if err != io.EOF && err != io.ErrUnexpectedEOF {
					readErrs <- err
				}
				return
			}
			frames <- body
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			logger.Info("shutting down")
			node.Disconnect()
			return
		case err := <-readErrs:
			logger.Error("read failed: %v", err)
			node.Disconnect()
			os.Exit(1)
		case data, ok := <-frames:
			if !ok {
				logger.Info("node closed the connection")
				node.Disconnect()
				return
			}
			if err := node.ProcessCommands(data); err != nil {
				logger.Error("process failed: %v", err)
				node.Disconnect()
				os.Exit(1)
			}
			if !node.IsConnected() {
				// stop_service response resets the link
				logger.Info("connection reset by protocol")
				return
			}
		case <-ticker.C:
			if err := node.Ping(handler.nextSeq()); err != nil {
				logger.Error("ping failed: %v", err)
			}
		}
	}
}
