// Package plugins is the registry of format handlers compiled into
// SongBridge. Importers read a source file into a song; exporters render a
// song in a target format. Handlers register themselves from init and are
// looked up by plugin ID ("format.openlyrics") or short name ("openlyrics").
package plugins

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIncompatibleVersion is returned when a handler needs a newer host.
var ErrIncompatibleVersion = errors.New("incompatible plugin version")

// HostVersion is the version handlers are checked against.
const HostVersion = "0.3.0"

// Plugin kinds.
const (
	KindImport = "import"
	KindExport = "export"
)

// Manifest describes a format handler.
type Manifest struct {
	PluginID    string `json:"plugin_id"`
	Version     string `json:"version"`
	Kind        string `json:"kind"`
	Description string `json:"description,omitempty"`
	// Extensions lists file extensions the handler reads or writes,
	// including the dot. The first one is used for output files.
	Extensions     []string `json:"extensions,omitempty"`
	MinHostVersion string   `json:"min_host_version,omitempty"`
}

// Name returns the plugin ID without its "format." prefix.
func (m *Manifest) Name() string {
	return strings.TrimPrefix(m.PluginID, "format.")
}

// HandlesExtension reports whether ext (with dot, any case) is listed.
func (m *Manifest) HandlesExtension(ext string) bool {
	for _, e := range m.Extensions {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// CheckCompatibility checks the manifest against hostVersion.
func CheckCompatibility(m *Manifest, hostVersion string) error {
	if m.MinHostVersion == "" {
		return nil
	}
	host, err := ParseVersion(hostVersion)
	if err != nil {
		return fmt.Errorf("invalid host version %q: %w", hostVersion, err)
	}
	minRequired, err := ParseVersion(m.MinHostVersion)
	if err != nil {
		return fmt.Errorf("invalid min_host_version %q in plugin %s: %w",
			m.MinHostVersion, m.PluginID, err)
	}
	if !host.IsCompatibleWith(minRequired) {
		return fmt.Errorf("%w: plugin %s requires host version %s, but current version is %s",
			ErrIncompatibleVersion, m.PluginID, minRequired, host)
	}
	return nil
}
