package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
node:
  address: "media1.example.com:6317"
  license_key: "abc123"
  connect_timeout_seconds: 10
subscribers:
  listen_address: "0.0.0.0:6000"
  bandwidth_host: "bw.example.com"
journal:
  path: "/tmp/journal.sqlite"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Node.Address != "media1.example.com:6317" {
		t.Errorf("expected node address media1.example.com:6317, got %s", cfg.Node.Address)
	}
	if cfg.Node.LicenseKey != "abc123" {
		t.Errorf("expected license key abc123, got %s", cfg.Node.LicenseKey)
	}
	if cfg.Subscribers.ListenAddress != "0.0.0.0:6000" {
		t.Errorf("expected listen address 0.0.0.0:6000, got %s", cfg.Subscribers.ListenAddress)
	}
	if cfg.Journal.Path != "/tmp/journal.sqlite" {
		t.Errorf("expected journal path /tmp/journal.sqlite, got %s", cfg.Journal.Path)
	}
}

func TestLoadConfig_TransportDefault(t *testing.T) {
	path := writeConfig(t, `
node:
  address: "localhost:6317"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Node.Transport != TransportTCP {
		t.Errorf("expected default transport tcp, got %s", cfg.Node.Transport)
	}
}

func TestLoadConfig_InvalidTransport(t *testing.T) {
	path := writeConfig(t, `
node:
  address: "localhost:6317"
  transport: "carrier-pigeon"
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid transport")
	}
}

func TestLoadConfig_StreamKeyCasePreservation(t *testing.T) {
	path := writeConfig(t, `
node:
  address: "localhost:6317"
streams:
  - id: "stream_1"
    Input:
      urls:
        - uri: "http://origin/a.m3u8"
    lowercase_key: "x"
    MixedCase_Key: "y"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cfg.Streams) != 1 {
		t.Fatalf("expected 1 stream, got %d", len(cfg.Streams))
	}

	// Stream config keys go to the service verbatim, so YAML case must
	// survive loading.
	for _, key := range []string{"id", "Input", "lowercase_key", "MixedCase_Key"} {
		if _, exists := cfg.Streams[0][key]; !exists {
			t.Errorf("expected key %q to exist with exact case, but it doesn't", key)
		}
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}
