package client_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fastogt/fastocloud-go/pkg/client"
	"github.com/fastogt/fastocloud-go/pkg/compressor"
	"github.com/fastogt/fastocloud-go/pkg/jsonrpc"
	"github.com/fastogt/fastocloud-go/pkg/protocol"
	"github.com/fastogt/fastocloud-go/pkg/stream"
)

const (
	activateMethod = "activate_request"
	stopMethod     = "stop_service"
	pingMethod     = "ping_client"
)

var testProto = client.Protocol{
	ActivateMethod:    activateMethod,
	StopServiceMethod: stopMethod,
	ClientPingMethod:  pingMethod,
}

// fakeStream feeds prepared inbound bytes and captures outbound frames.
type fakeStream struct {
	in     bytes.Buffer
	out    bytes.Buffer
	closed bool
}

func (f *fakeStream) Read(p []byte) (int, error)  { return f.in.Read(p) }
func (f *fakeStream) Write(p []byte) (int, error) { return f.out.Write(p) }
func (f *fakeStream) Close() error                { f.closed = true; return nil }

type fakeDialer struct {
	st  stream.Stream
	err error
}

func (d fakeDialer) Dial(string) (stream.Stream, error) { return d.st, d.err }

type responsePair struct {
	req  *jsonrpc.Request
	resp *jsonrpc.Response
}

type recordingHandler struct {
	states    []client.Status
	requests  []*jsonrpc.Request
	responses []responsePair
}

func (h *recordingHandler) OnStateChanged(_ *client.Connection, s client.Status) {
	h.states = append(h.states, s)
}

func (h *recordingHandler) OnRequest(_ *client.Connection, req *jsonrpc.Request) {
	h.requests = append(h.requests, req)
}

func (h *recordingHandler) OnResponse(_ *client.Connection, req *jsonrpc.Request, resp *jsonrpc.Response) {
	h.responses = append(h.responses, responsePair{req: req, resp: resp})
}

// feed appends one framed message to the fake stream's inbound buffer.
func feed(t *testing.T, st *fakeStream, v interface{}) {
	t.Helper()
	data, err := jsonrpc.Encode(v)
	require.NoError(t, err)
	frame, err := protocol.Pack(compressor.None{}, data)
	require.NoError(t, err)
	st.in.Write(frame)
}

// sentMessages decodes every frame the connection wrote.
func sentMessages(t *testing.T, st *fakeStream) []map[string]json.RawMessage {
	t.Helper()
	var msgs []map[string]json.RawMessage
	for st.out.Len() > 0 {
		body, err := protocol.ReadFrame(&st.out)
		require.NoError(t, err)
		var m map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &m))
		msgs = append(msgs, m)
	}
	return msgs
}

func newTestConn(t *testing.T) (*client.Connection, *fakeStream, *recordingHandler) {
	t.Helper()
	st := &fakeStream{}
	h := &recordingHandler{}
	c := client.New(fakeDialer{st: st}, "fake:1", h, compressor.None{}, testProto)
	return c, st, h
}

func TestConnectTransitionsToConnected(t *testing.T) {
	c, _, h := newTestConn(t)
	require.Equal(t, client.StatusInit, c.Status())

	require.NoError(t, c.Connect())
	require.Equal(t, client.StatusConnected, c.Status())
	require.Equal(t, []client.Status{client.StatusConnected}, h.states)

	// Connecting again is a no-op success.
	require.NoError(t, c.Connect())
	require.Len(t, h.states, 1)
}

func TestConnectFailureLeavesStateUnchanged(t *testing.T) {
	h := &recordingHandler{}
	c := client.New(fakeDialer{err: errors.New("refused")}, "fake:1", h, compressor.None{}, testProto)

	require.Error(t, c.Connect())
	require.Equal(t, client.StatusInit, c.Status())
	require.Empty(t, h.states)
}

func TestSendRequestRegistersPending(t *testing.T) {
	c, st, _ := newTestConn(t)
	require.NoError(t, c.Connect())

	require.NoError(t, c.SendRequest(1, "start_stream", map[string]string{"id": "s1"}))
	require.NoError(t, c.SendRequest(2, "stop_stream", map[string]string{"id": "s2"}))
	require.Equal(t, 2, c.PendingCount())

	// A response to one request removes only that entry.
	feed(t, st, jsonrpc.NewResponseOK(jsonrpc.SeqID(1)))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NotNil(t, data)
	require.NoError(t, c.ProcessCommands(data))
	require.Equal(t, 1, c.PendingCount())
}

func TestNotificationsNeverPending(t *testing.T) {
	c, st, _ := newTestConn(t)
	require.NoError(t, c.Connect())

	require.NoError(t, c.SendNotification("statistic_service", map[string]int{"cpu": 5}))
	require.Equal(t, 0, c.PendingCount())

	msgs := sentMessages(t, st)
	require.Len(t, msgs, 1)
	_, hasID := msgs[0]["id"]
	require.False(t, hasID, "notification must not carry an id")
}

func TestSendSkippedWhenNotConnected(t *testing.T) {
	c, st, h := newTestConn(t)

	require.NoError(t, c.SendRequest(1, "ping_service", nil))
	require.NoError(t, c.SendNotification("statistic_service", nil))
	require.Equal(t, 0, c.PendingCount())
	require.Zero(t, st.out.Len(), "nothing must be transmitted in INIT")
	require.Empty(t, h.states)
}

func TestActivationHandshake(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())

	// Sending the activation request does not change state by itself.
	require.NoError(t, c.SendRequest(1, activateMethod, map[string]string{"license_key": "k"}))
	require.Equal(t, client.StatusConnected, c.Status())

	feed(t, st, &jsonrpc.Response{ID: "0000000000000001", Result: jsonrpc.OKResult})
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Equal(t, client.StatusActive, c.Status())
	require.Equal(t, []client.Status{client.StatusConnected, client.StatusActive}, h.states)

	require.Len(t, h.responses, 1)
	require.NotNil(t, h.responses[0].req)
	require.Equal(t, activateMethod, h.responses[0].req.Method)
}

func TestActivationErrorResponseDoesNotActivate(t *testing.T) {
	c, st, _ := newTestConn(t)
	require.NoError(t, c.Connect())
	require.NoError(t, c.SendRequest(1, activateMethod, nil))

	feed(t, st, jsonrpc.NewResponseError(jsonrpc.SeqID(1), "bad license", jsonrpc.ServerError))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Equal(t, client.StatusConnected, c.Status())
}

func TestKeepalivePingAutoReply(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())
	require.NoError(t, c.SendRequest(1, activateMethod, nil))
	feed(t, st, jsonrpc.NewResponseOK(jsonrpc.SeqID(1)))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))
	require.True(t, c.IsActive())
	st.out.Reset()

	ping := &jsonrpc.Request{ID: "00000000000000ff", Method: pingMethod}
	feed(t, st, ping)
	data, err = c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	// Exactly one auto pong carrying a millisecond timestamp.
	msgs := sentMessages(t, st)
	require.Len(t, msgs, 1)
	require.JSONEq(t, `"00000000000000ff"`, string(msgs[0]["id"]))
	var result struct {
		Timestamp int64 `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(msgs[0]["result"], &result))
	require.Greater(t, result.Timestamp, int64(1_000_000_000_000))

	// The inbound ping is still forwarded to the handler.
	require.Len(t, h.requests, 1)
	require.Equal(t, pingMethod, h.requests[0].Method)
}

func TestKeepalivePingIgnoredWhenNotActive(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())

	feed(t, st, &jsonrpc.Request{ID: "01", Method: pingMethod})
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Zero(t, st.out.Len(), "no auto pong before activation")
	require.Len(t, h.requests, 1, "request is still forwarded")
}

func TestStopServiceResponseResets(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())
	require.NoError(t, c.SendRequest(1, activateMethod, nil))
	feed(t, st, jsonrpc.NewResponseOK(jsonrpc.SeqID(1)))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.NoError(t, c.SendRequest(2, stopMethod, map[string]int{"delay": 0}))
	require.NoError(t, c.SendRequest(3, "get_log_service", nil))
	require.Equal(t, 2, c.PendingCount())

	// Any response to stop_service forces a reset, payload irrelevant.
	feed(t, st, jsonrpc.NewResponseError(jsonrpc.SeqID(2), "going down", jsonrpc.ServerError))
	data, err = c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Equal(t, client.StatusInit, c.Status())
	require.Equal(t, 0, c.PendingCount(), "pending table discarded on reset")
	require.True(t, st.closed, "underlying stream closed")
	require.Equal(t, client.StatusInit, h.states[len(h.states)-1])
}

func TestUnmatchedResponseTolerated(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())

	feed(t, st, jsonrpc.NewResponseOK("00000000000000aa"))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Len(t, h.responses, 1)
	require.Nil(t, h.responses[0].req, "unmatched response forwarded with absent request")
}

func TestReadCommandNoDataWhenNotConnected(t *testing.T) {
	c, _, _ := newTestConn(t)

	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestReadCommandNoDataOnPeerClose(t *testing.T) {
	c, _, _ := newTestConn(t)
	require.NoError(t, c.Connect())

	// Inbound buffer empty: the peer closed before any prefix arrived.
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.Nil(t, data)
}

func TestReadCommandNoDataOnTruncatedFrame(t *testing.T) {
	c, st, _ := newTestConn(t)
	require.NoError(t, c.Connect())

	// Declared length 10, only 3 bytes before closure.
	st.in.Write([]byte{0, 0, 0, 10, 'a', 'b', 'c'})
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.Nil(t, data, "truncated frame must surface as no data, not a short payload")
}

func TestProcessCommandsSurfacesDecodeFailures(t *testing.T) {
	c, _, _ := newTestConn(t)
	require.NoError(t, c.Connect())

	require.Error(t, c.ProcessCommands([]byte(`42`)), "non-object payload must fail decode")

	zc := client.NewAccepted(&fakeStream{}, nil, compressor.NewZlib(), testProto)
	require.Error(t, zc.ProcessCommands([]byte("not zlib data")), "decompression failure must surface")
}

func TestDisconnectResets(t *testing.T) {
	c, st, h := newTestConn(t)
	require.NoError(t, c.Connect())
	require.NoError(t, c.SendRequest(1, "ping_service", nil))

	c.Disconnect()
	require.Equal(t, client.StatusInit, c.Status())
	require.Equal(t, 0, c.PendingCount())
	require.True(t, st.closed)

	// Disconnecting again is a no-op.
	c.Disconnect()
	require.Equal(t, []client.Status{client.StatusConnected, client.StatusInit}, h.states)
}

// brokenStream refuses every write.
type brokenStream struct {
	fakeStream
}

func (b *brokenStream) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestSendRequestWriteFailureUnregistersPending(t *testing.T) {
	c := client.NewAccepted(&brokenStream{}, nil, compressor.None{}, testProto)

	var observed int
	c.SetOnSend(func([]byte) { observed++ })

	require.Error(t, c.SendRequest(1, "ping_service", nil))
	require.Equal(t, 0, c.PendingCount(), "nothing was sent, nothing may stay pending")
	require.Zero(t, observed, "observer must not fire for failed writes")
}

func TestSendObserverSeesEveryWrite(t *testing.T) {
	c, st, _ := newTestConn(t)

	var seen []string
	c.SetOnSend(func(raw []byte) { seen = append(seen, string(raw)) })

	require.NoError(t, c.Connect())
	require.NoError(t, c.SendRequest(1, activateMethod, nil))
	feed(t, st, jsonrpc.NewResponseOK(jsonrpc.SeqID(1)))
	data, err := c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.NoError(t, c.SendNotification("statistic_service", map[string]int{"cpu": 5}))

	// Inbound keepalive: the auto pong flows through the observer too.
	feed(t, st, &jsonrpc.Request{ID: "0b", Method: pingMethod})
	data, err = c.ReadCommand()
	require.NoError(t, err)
	require.NoError(t, c.ProcessCommands(data))

	require.Len(t, seen, 3)
	require.Contains(t, seen[0], activateMethod)
	require.Contains(t, seen[1], "statistic_service")
	require.Contains(t, seen[2], "timestamp")

	// Observer output matches what went on the wire.
	require.Len(t, sentMessages(t, st), 3)
}

func TestNewAcceptedStartsConnected(t *testing.T) {
	st := &fakeStream{}
	h := &recordingHandler{}
	c := client.NewAccepted(st, h, compressor.None{}, client.Protocol{})

	require.Equal(t, client.StatusConnected, c.Status())
	require.Empty(t, h.states, "wrapping an accepted stream does not notify")
}
