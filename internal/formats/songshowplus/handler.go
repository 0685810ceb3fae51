// Package songshowplus provides the embedded importer for SongShow Plus song
// files.
package songshowplus

import (
	"context"

	"github.com/FocuswithJustin/SongBridge/core/plugins"
	ssp "github.com/FocuswithJustin/SongBridge/core/songshowplus"
	"github.com/FocuswithJustin/SongBridge/internal/formats/base"
)

// Extension is the SongShow Plus song file extension.
const Extension = ".sbsong"

// Handler implements plugins.Importer for SongShow Plus files.
type Handler struct{}

// Manifest returns the plugin manifest for registration.
func Manifest() *plugins.Manifest {
	return &plugins.Manifest{
		PluginID:    "format.songshowplus",
		Version:     "1.0.0",
		Kind:        plugins.KindImport,
		Description: "SongShow Plus song file",
		Extensions:  []string{Extension},
	}
}

// Register registers this plugin with the embedded registry.
func Register() {
	plugins.MustRegister(&plugins.EmbeddedPlugin{
		Manifest: Manifest(),
		Importer: &Handler{},
	})
}

func init() {
	Register()
}

// Detect implements plugins.Importer.
func (h *Handler) Detect(path string) (*plugins.DetectResult, error) {
	return base.DetectFile(path, base.DetectConfig{
		Extensions: []string{Extension},
		FormatName: "songshowplus",
		Sniff:      ssp.Sniff,
		HeaderSize: 4,
	})
}

// Import implements plugins.Importer.
func (h *Handler) Import(ctx context.Context, path string, opts plugins.ImportOptions) (*plugins.ImportResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := ssp.DecodeFile(path, ssp.Options{Text: opts.Text, Logger: opts.Logger})
	if err != nil {
		return nil, err
	}
	return &plugins.ImportResult{Song: res.Song, Warnings: res.Warnings, Blocks: res.Blocks}, nil
}
