// ABOUTME: Main entry point for the subscriber-facing daemon
// ABOUTME: Accepts subscriber connections and serves the subscriber protocol

package main

import (
	"encoding/json"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/fastogt/fastocloud-go/internal/config"
	"github.com/fastogt/fastocloud-go/internal/journal"
	"github.com/fastogt/fastocloud-go/internal/logger"
	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/stream"
	"github.com/fastogt/fastocloud-go/pkg/subscriber"
)

// subscriberHandler answers the subscriber command set for one
// accepted connection.
type subscriberHandler struct {
	cfg       *config.Config
	jrn       *journal.Journal
	sessionID string
	sub       *subscriber.Client
}

func (h *subscriberHandler) OnStateChanged(_ *client.Connection, s client.Status) {
	logger.Info("[%s] subscriber state: %s", h.sub.Address(), s)
}

func (h *subscriberHandler) OnRequest(_ *client.Connection, req *jsonrpc.Request) {
	h.journal(journal.DirectionSubscriberToServer, req)

	var err error
	switch req.Method {
	case subscriber.ActivateCommand:
		// No credential store in this daemon: every subscriber is let in.
		err = h.sub.ActivateSuccess(req.ID)
	case subscriber.ClientPingCommand:
		err = h.sub.Pong(req.ID)
	case subscriber.GetServerInfoCommand:
		err = h.sub.GetServerInfoSuccess(req.ID, h.cfg.Subscribers.BandwidthHost)
	case subscriber.GetChannelsCommand:
		err = h.sub.GetChannelsSuccess(req.ID, h.channels())
	case subscriber.GetRuntimeChannelInfoCommand:
		var params struct {
			ID string `json:"id"`
		}
		if req.Params != nil {
			_ = json.Unmarshal(req.Params, &params)
		}
		err = h.sub.GetRuntimeChannelInfoSuccess(req.ID, params.ID, 0)
	default:
		logger.Warn("[%s] unknown method: %s", h.sub.Address(), req.Method)
		err = h.sub.SendResponseFail(req.ID, "method not found")
	}
	if err != nil {
		logger.Error("[%s] reply to %s failed: %v", h.sub.Address(), req.Method, err)
	}
}

func (h *subscriberHandler) OnResponse(_ *client.Connection, req *jsonrpc.Request, resp *jsonrpc.Response) {
	h.journal(journal.DirectionSubscriberToServer, resp)
	if req != nil {
		logger.Debug("[%s] %s answered", h.sub.Address(), req.Method)
	}
}

// channels exposes the configured stream ids as the channel list.
func (h *subscriberHandler) channels() []map[string]interface{} {
	channels := make([]map[string]interface{}, 0, len(h.cfg.Streams))
	for _, sc := range h.cfg.Streams {
		if id, ok := sc["id"]; ok {
			channels = append(channels, map[string]interface{}{"id": id})
		}
	}
	return channels
}

func (h *subscriberHandler) journal(direction journal.MessageDirection, v interface{}) {
	raw, err := jsonrpc.Encode(v)
	if err != nil {
		return
	}
	h.journalRaw(direction, raw)
}

func (h *subscriberHandler) journalRaw(direction journal.MessageDirection, raw []byte) {
	if h.jrn == nil {
		return
	}
	if err := h.jrn.LogMessage(h.sessionID, direction, raw); err != nil {
		logger.Warn("journal write failed: %v", err)
	}
}

// serve owns one subscriber connection until it closes. The stream can
// be a raw TCP connection or an upgraded websocket.
func serve(st stream.Stream, addr string, cfg *config.Config, jrn *journal.Journal) {
	logger.Info("subscriber connected from %s", addr)

	sessionID := uuid.New().String()
	if jrn != nil {
		if err := jrn.CreateSession(sessionID, journal.KindSubscriber, addr); err != nil {
			logger.Warn("journal session failed: %v", err)
		}
	}

	handler := &subscriberHandler{cfg: cfg, jrn: jrn, sessionID: sessionID}
	sub := subscriber.NewAccepted(st, addr, handler)
	handler.sub = sub

	// Outbound replies and pushes carry the server_to_subscriber direction.
	sub.SetOnSend(func(raw []byte) {
		handler.journalRaw(journal.DirectionServerToSubscriber, raw)
	})

	for {
		data, err := sub.ReadCommand()
		if err != nil {
			logger.Error("[%s] read failed: %v", addr, err)
			break
		}
		if data == nil {
			break
		}
		if err := sub.ProcessCommands(data); err != nil {
			logger.Error("[%s] process failed: %v", addr, err)
			break
		}
	}

	sub.Disconnect()
	if jrn != nil {
		if err := jrn.CloseSession(sessionID); err != nil {
			logger.Warn("journal close failed: %v", err)
		}
	}
	logger.Info("subscriber %s disconnected", addr)
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	logger.SetVerbose(*verbose)
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config: %v", err)
		os.Exit(1)
	}
	if cfg.Subscribers.ListenAddress == "" {
		logger.Error("subscribers.listen_address is required")
		os.Exit(1)
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

	ln, err := net.Listen("tcp", cfg.Subscribers.ListenAddress)
	if err != nil {
		logger.Error("listen failed: %v", err)
		os.Exit(1)
	}
	logger.Info("listening for subscribers on %s", cfg.Subscribers.ListenAddress)

	var wsServer *http.Server
	if cfg.Subscribers.WebSocketListenAddress != "" {
		acceptor := &stream.WebSocketAcceptor{
			Serve: func(acc stream.Accepted) {
				serve(acc.Stream, acc.RemoteAddr, cfg, jrn)
			},
		}
		wsServer = &http.Server{Addr: cfg.Subscribers.WebSocketListenAddress, Handler: acceptor}
		go func() {
			logger.Info("listening for websocket subscribers on %s", cfg.Subscribers.WebSocketListenAddress)
			if err := wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("websocket listen failed: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		logger.Info("shutting down")
		ln.Close()
		if wsServer != nil {
			wsServer.Close()
		}
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			// Closed listener means shutdown
			return
		}
		go serve(conn, conn.RemoteAddr().String(), cfg, jrn)
	}
}
