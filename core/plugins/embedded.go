package plugins

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/song"
)

// DetectResult reports whether an importer recognizes a file.
type DetectResult struct {
	Detected bool   `json:"detected"`
	Format   string `json:"format,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// ImportOptions configures an import.
type ImportOptions struct {
	Text   *encoding.TextDecoder
	Logger *slog.Logger
}

// ImportResult is a song read from a source file.
type ImportResult struct {
	Song     *song.Song
	Warnings []error
	// Blocks is the number of records read from the source.
	Blocks int
}

// ExportOptions configures an export.
type ExportOptions struct {
	// Application is recorded as the creating program where the format
	// has room for it.
	Application string
	// Modified is the modification time written into the output. Zero
	// means time.Now().
	Modified time.Time
	// Pretty indents structured output.
	Pretty bool
}

// ModifiedTime returns o.Modified, or the current time if unset.
func (o ExportOptions) ModifiedTime() time.Time {
	if o.Modified.IsZero() {
		return time.Now()
	}
	return o.Modified
}

// Importer reads songs from source files.
type Importer interface {
	// Detect checks whether path is handled by this importer.
	Detect(path string) (*DetectResult, error)
	// Import decodes the song in path.
	Import(ctx context.Context, path string, opts ImportOptions) (*ImportResult, error)
}

// Exporter renders songs.
type Exporter interface {
	Export(w io.Writer, s *song.Song, opts ExportOptions) error
}

// EmbeddedPlugin pairs a handler with its manifest.
type EmbeddedPlugin struct {
	Manifest *Manifest
	Importer Importer // non-nil for import plugins
	Exporter Exporter // non-nil for export plugins
}

var embeddedRegistry = make(map[string]*EmbeddedPlugin)

// RegisterEmbeddedPlugin registers p under its plugin ID. Plugins that need
// a newer host are rejected with ErrIncompatibleVersion.
func RegisterEmbeddedPlugin(p *EmbeddedPlugin) error {
	if p.Manifest == nil || p.Manifest.PluginID == "" {
		return errors.NewValidation("plugin_id", "manifest has no plugin ID")
	}
	if err := CheckCompatibility(p.Manifest, HostVersion); err != nil {
		return err
	}
	embeddedRegistry[p.Manifest.PluginID] = p
	return nil
}

// MustRegister is RegisterEmbeddedPlugin for use from init.
func MustRegister(p *EmbeddedPlugin) {
	if err := RegisterEmbeddedPlugin(p); err != nil {
		panic(fmt.Sprintf("registering plugin: %v", err))
	}
}

// GetEmbeddedPlugin returns a plugin by ID or short name, or nil.
func GetEmbeddedPlugin(id string) *EmbeddedPlugin {
	if p, ok := embeddedRegistry[id]; ok {
		return p
	}
	return embeddedRegistry["format."+id]
}

// ListEmbeddedPlugins returns all plugins sorted by ID.
func ListEmbeddedPlugins() []*EmbeddedPlugin {
	result := make([]*EmbeddedPlugin, 0, len(embeddedRegistry))
	for _, p := range embeddedRegistry {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Manifest.PluginID < result[j].Manifest.PluginID
	})
	return result
}

// LookupExporter returns the exporter registered under name.
func LookupExporter(name string) (*EmbeddedPlugin, error) {
	p := GetEmbeddedPlugin(name)
	if p == nil || p.Exporter == nil {
		return nil, errors.NewNotFound("exporter", name)
	}
	return p, nil
}

// DetectImporter returns the first importer, in ID order, that detects
// path.
func DetectImporter(path string) (*EmbeddedPlugin, error) {
	for _, p := range ListEmbeddedPlugins() {
		if p.Importer == nil {
			continue
		}
		res, err := p.Importer.Detect(path)
		if err != nil {
			return nil, err
		}
		if res.Detected {
			return p, nil
		}
	}
	return nil, errors.NewUnsupported("input", fmt.Sprintf("no importer recognizes %s", filepath.Base(path)))
}
