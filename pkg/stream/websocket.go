// ABOUTME: WebSocket backend for the stream capability
// ABOUTME: Bridges gorilla/websocket binary messages to the byte-stream interface

package stream

import (
	"fmt"
	"io"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials a websocket endpoint (ws:// or wss:// URL) and
// presents it as a byte stream. Frames written by the peer are
// concatenated on the read side, so the length-prefixed protocol on
// top does not care how the peer chunks its messages.
type WebSocketDialer struct {
	HandshakeTimeout time.Duration
}

func (d WebSocketDialer) Dial(address string) (Stream, error) {
	dialer := websocket.Dialer{HandshakeTimeout: d.HandshakeTimeout}
	conn, _, err := dialer.Dial(address, nil) //nolint:bodyclose // websocket connection, not HTTP response
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", address, err)
	}
	return &wsStream{conn: conn}, nil
}

type wsStream struct {
	conn   *websocket.Conn
	reader io.Reader // current in-progress message, nil when exhausted
}

func (s *wsStream) Read(p []byte) (int, error) {
	for {
		if s.reader == nil {
			msgType, r, err := s.conn.NextReader()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return 0, io.EOF
				}
				return 0, err
			}
			if msgType != websocket.BinaryMessage {
				continue
			}
			s.reader = r
		}

		n, err := s.reader.Read(p)
		if err == io.EOF {
			// Message exhausted, move on to the next one.
			s.reader = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (s *wsStream) Write(p []byte) (int, error) {
	if err := s.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *wsStream) Close() error {
	return s.conn.Close()
}
