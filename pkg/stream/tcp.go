// ABOUTME: Blocking TCP backend for the stream capability
// ABOUTME: Thin wrapper over net.Dial with an optional connect timeout

package stream

import (
	"net"
	"time"
)

// TCPDialer dials plain TCP connections. The zero value dials with no
// connect timeout.
type TCPDialer struct {
	ConnectTimeout time.Duration
}

func (d TCPDialer) Dial(address string) (Stream, error) {
	nd := net.Dialer{Timeout: d.ConnectTimeout}
	conn, err := nd.Dial("tcp", address)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
