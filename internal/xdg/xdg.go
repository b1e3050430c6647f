// ABOUTME: XDG Base Directory Specification support for Linux/Unix standards
// ABOUTME: Handles config, data, and cache directories with HOME fallback

package xdg

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "fastocloud"

// ConfigHome returns ~/.config/fastocloud or respects XDG_CONFIG_HOME.
func ConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, appDir)
	}
	return filepath.Join(getHome(), ".config", appDir)
}

// DataHome returns ~/.local/share/fastocloud or respects XDG_DATA_HOME.
func DataHome() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, appDir)
	}
	return filepath.Join(getHome(), ".local", "share", appDir)
}

// CacheHome returns ~/.cache/fastocloud or respects XDG_CACHE_HOME.
func CacheHome() string {
	if xdgCache := os.Getenv("XDG_CACHE_HOME"); xdgCache != "" {
		return filepath.Join(xdgCache, appDir)
	}
	return filepath.Join(getHome(), ".cache", appDir)
}

var xdgVars = []struct {
	name     string
	fallback []string
}{
	{"$XDG_DATA_HOME", []string{".local", "share"}},
	{"$XDG_CONFIG_HOME", []string{".config"}},
	{"$XDG_CACHE_HOME", []string{".cache"}},
}

// ExpandPath expands a leading $XDG_* variable or ~ in config paths.
// Other paths pass through unchanged.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(getHome(), path[2:])
	}

	for _, v := range xdgVars {
		if !strings.HasPrefix(path, v.name) {
			continue
		}
		base := os.Getenv(strings.TrimPrefix(v.name, "$"))
		if base == "" {
			base = filepath.Join(append([]string{getHome()}, v.fallback...)...)
		}
		return strings.Replace(path, v.name, base, 1)
	}

	return path
}

// getHome returns HOME, falling back to the working directory so a
// missing HOME never produces paths under the filesystem root.
func getHome() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}
