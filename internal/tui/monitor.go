// ABOUTME: Monitor owns the control-plane connection on behalf of the TUI
// ABOUTME: Runs the read loop in one goroutine and reports events over a channel
package tui

import (
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fastogt/fastocloud-go/internal/logger"
	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/controlplane"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/protocol"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

// Bubbletea messages emitted by the monitor.

type NodeStateMsg struct {
	State client.Status
}

type NodeRequestMsg struct {
	Method string
	Raw    string
}

type NodeResponseMsg struct {
	Method string // method of the originating request, empty when unmatched
	IsErr  bool
	Raw    string
}

type NodeErrorMsg struct {
	Err error
}

type NodeClosedMsg struct{}

// Monitor drives one controlplane client. The connection is owned by
// the goroutine started in Run; the UI talks to it only through Ping,
// GetLog, and Stop, which enqueue work for that goroutine.
type Monitor struct {
	address    string
	licenseKey string
	dialer     stream.Dialer

	events   chan tea.Msg
	commands chan func(*controlplane.Client, *uint64)
	done     chan struct{}
}

func NewMonitor(dialer stream.Dialer, address, licenseKey string) *Monitor {
	return &Monitor{
		address:    address,
		licenseKey: licenseKey,
		dialer:     dialer,
		events:     make(chan tea.Msg, 100),
		commands:   make(chan func(*controlplane.Client, *uint64), 16),
		done:       make(chan struct{}),
	}
}

// WaitForEvent returns a command that delivers the next monitor event
// to the Bubbletea update loop.
func (m *Monitor) WaitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return NodeClosedMsg{}
		}
		return ev
	}
}

// Ping enqueues a service ping.
func (m *Monitor) Ping() {
	m.enqueue(func(c *controlplane.Client, seq *uint64) {
		*seq++
		if err := c.Ping(*seq); err != nil {
			m.emit(NodeErrorMsg{Err: err})
		}
	})
}

// GetLog enqueues a service log request.
func (m *Monitor) GetLog(path string) {
	m.enqueue(func(c *controlplane.Client, seq *uint64) {
		*seq++
		if err := c.GetLogService(*seq, path); err != nil {
			m.emit(NodeErrorMsg{Err: err})
		}
	})
}

// Stop asks the owner goroutine to disconnect and exit.
func (m *Monitor) Stop() {
	select {
	case <-m.done:
	default:
		close(m.done)
	}
}

// Run connects, activates, and pumps the connection until it closes.
// Call once, from its own goroutine.
func (m *Monitor) Run() {
	defer close(m.events)

	conn := controlplane.New(m.dialer, m.address, m)

	if err := conn.Connect(); err != nil {
		m.emit(NodeErrorMsg{Err: err})
		return
	}

	var seq uint64 = 1
	if err := conn.Activate(seq, m.licenseKey); err != nil {
		m.emit(NodeErrorMsg{Err: err})
		conn.Disconnect()
		return
	}

	// Raw frames come off a dedicated reader so the owner loop can also
	// service UI commands. The reader works on the stream captured here
	// and never calls into the connection; every Connection method stays
	// on this goroutine.
	frames := make(chan []byte, 16)
	readErrs := make(chan error, 1)
	st := conn.Stream()
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

	for {
		select {
		case <-m.done:
			conn.Disconnect()
			return
		case err := <-readErrs:
			m.emit(NodeErrorMsg{Err: fmt.Errorf("read: %w", err)})
			conn.Disconnect()
			return
		case data, ok := <-frames:
			if !ok {
				logger.Info("node %s closed the connection", m.address)
				conn.Disconnect()
				return
			}
			if err := conn.ProcessCommands(data); err != nil {
				m.emit(NodeErrorMsg{Err: err})
				conn.Disconnect()
				return
			}
		case cmd := <-m.commands:
			cmd(conn, &seq)
		}
	}
}

// Handler callbacks, invoked from the owner goroutine.

func (m *Monitor) OnStateChanged(_ *client.Connection, s client.Status) {
	m.emit(NodeStateMsg{State: s})
}

func (m *Monitor) OnRequest(_ *client.Connection, req *jsonrpc.Request) {
	raw, _ := jsonrpc.Encode(req)
	m.emit(NodeRequestMsg{Method: req.Method, Raw: string(raw)})
}

func (m *Monitor) OnResponse(_ *client.Connection, req *jsonrpc.Request, resp *jsonrpc.Response) {
	method := ""
	if req != nil {
		method = req.Method
	}
	raw, _ := jsonrpc.Encode(resp)
	m.emit(NodeResponseMsg{Method: method, IsErr: resp.IsError(), Raw: string(raw)})
}

func (m *Monitor) enqueue(cmd func(*controlplane.Client, *uint64)) {
	select {
	case m.commands <- cmd:
	case <-time.After(time.Second):
		m.emit(NodeErrorMsg{Err: fmt.Errorf("node connection busy")})
	}
}

func (m *Monitor) emit(ev tea.Msg) {
	select {
	case m.events <- ev:
	default:
		// UI is behind, drop rather than block the read loop.
	}
}
