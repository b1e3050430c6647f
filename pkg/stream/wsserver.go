// ABOUTME: Server-side websocket acceptor for the stream capability
// ABOUTME: Upgrades HTTP requests and hands each peer over as a byte stream

package stream

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Subscribers are native apps, not browsers; origin is meaningless.
		return true
	},
}

// Accepted is one upgraded websocket peer.
type Accepted struct {
	Stream     Stream
	RemoteAddr string
}

// WebSocketAcceptor is an http.Handler that upgrades each request and
// delivers the resulting stream to Serve. Serve runs on the request
// goroutine and owns the stream until it returns.
type WebSocketAcceptor struct {
	Serve func(Accepted)
}

func (a *WebSocketAcceptor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	a.Serve(Accepted{
		Stream:     &wsStream{conn: conn},
		RemoteAddr: r.RemoteAddr,
	})
}
