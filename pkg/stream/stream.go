// ABOUTME: Injectable byte-stream capability consumed by the protocol engine
// ABOUTME: Abstracts the transport so TCP and WebSocket backends are interchangeable

package stream

import "io"

// Stream is one established bidirectional byte stream. Reads and writes
// block the calling goroutine; the engine enforces no timeouts, so
// callers needing bounded latency set deadlines on the underlying
// transport or cancel from outside.
type Stream interface {
	io.ReadWriteCloser
}

// Dialer establishes a Stream to an address. Injected at connection
// construction so the engine never assumes a particular transport or
// scheduling model.
type Dialer interface {
	Dial(address string) (Stream, error)
}
