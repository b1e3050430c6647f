package compressor

import (
	"bytes"
	"testing"
)

func TestZlibRoundTrip(t *testing.T) {
	comp := NewZlib()

	for _, payload := range [][]byte{
		nil,
		[]byte("x"),
		[]byte(`{"method":"ping_service","params":{"timestamp":1}}`),
		bytes.Repeat([]byte("stream config "), 1000),
	} {
		compressed, err := comp.Compress(payload)
		if err != nil {
			t.Fatalf("compress: %v", err)
		}
		got, err := comp.Decompress(compressed)
		if err != nil {
			t.Fatalf("decompress: %v", err)
		}
		if !bytes.Equal(got, payload) {
			t.Errorf("round trip mismatch for %d bytes", len(payload))
		}
	}
}

func TestZlibDecompressGarbage(t *testing.T) {
	comp := NewZlib()
	if _, err := comp.Decompress([]byte("definitely not zlib")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestNonePassesThrough(t *testing.T) {
	comp := None{}
	payload := []byte("as-is")

	compressed, err := comp.Compress(payload)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if !bytes.Equal(compressed, payload) {
		t.Error("None must not change data")
	}
	got, err := comp.Decompress(compressed)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Error("None must not change data")
	}
}
