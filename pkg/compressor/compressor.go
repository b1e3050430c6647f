// ABOUTME: Compressor capability consumed by the protocol engine
// ABOUTME: Provides zlib and identity implementations

package compressor

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
)

// Compressor compresses frame bodies before they go on the wire and
// decompresses them after they come off. The engine never compresses
// by itself; implementations are injected at connection construction.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// Zlib is the wire compressor used by FastoCloud services.
type Zlib struct{}

func NewZlib() Zlib {
	return Zlib{}
}

func (Zlib) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func (Zlib) Decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("zlib decompress: %w", err)
	}
	return out, nil
}

// None passes data through unchanged. Useful for tests and for peers
// that negotiate an uncompressed session.
type None struct{}

func (None) Compress(data []byte) ([]byte, error)   { return data, nil }
func (None) Decompress(data []byte) ([]byte, error) { return data, nil }
