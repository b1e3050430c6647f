// ABOUTME: Length-prefixed frame codec for the FastoCloud wire protocol
// ABOUTME: One frame = 4-byte big-endian length of the compressed body, then the body

package protocol

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fastogt/fastocloud-go/pkg/compressor"
)

// MaxPacketSize caps the declared body length. The length field itself
// cannot represent more, so the check only rejects degenerate lengths.
const MaxPacketSize = 4294967295

// HeaderSize is the byte length of the frame's length prefix.
const HeaderSize = 4

// Pack compresses payload and prepends the 4-byte big-endian length of
// the compressed body. Both directions use network byte order.
func Pack(comp compressor.Compressor, payload []byte) ([]byte, error) {
	body, err := comp.Compress(payload)
	if err != nil {
		return nil, fmt.Errorf("pack frame: %w", err)
	}

	buf := make([]byte, HeaderSize+len(body))
	binary.BigEndian.PutUint32(buf[:HeaderSize], uint32(len(body)))
	copy(buf[HeaderSize:], body)
	return buf, nil
}

// ReadFrame reads one frame from r and returns the body still
// compressed; decompression belongs to the decode step. Partial reads
// are retried until the declared length is satisfied. A clean close
// before the prefix completes yields io.EOF, a close mid-body yields
// io.ErrUnexpectedEOF — callers treat both as end of stream, never as
// a short payload.
func ReadFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, io.EOF
		}
		return nil, err
	}

	bodyLen := uint64(binary.BigEndian.Uint32(header))
	if bodyLen > MaxPacketSize {
		return nil, fmt.Errorf("frame length %d exceeds maximum %d", bodyLen, uint64(MaxPacketSize))
	}

	body := make([]byte, bodyLen)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}
