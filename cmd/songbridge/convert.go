package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/internal/archive"
	"github.com/FocuswithJustin/SongBridge/internal/config"
	"github.com/FocuswithJustin/SongBridge/internal/convert"
	"github.com/FocuswithJustin/SongBridge/internal/library"
	"github.com/FocuswithJustin/SongBridge/internal/logging"
)

// ConvertCmd converts song files. Flags left unset fall back to the
// configuration file.
type ConvertCmd struct {
	Paths     []string `arg:"" help:"Song files, or directories holding *.sbsong files" type:"path"`
	To        string   `help:"Output format: openlyrics or txt" placeholder:"FORMAT"`
	Out       string   `help:"Output directory" type:"path" placeholder:"DIR"`
	Workers   int      `help:"Parallel conversions (0 uses the configured value)"`
	NoRepair  bool     `name:"no-repair" help:"Do not repair double-encoded text"`
	Overwrite bool     `help:"Replace existing output files"`
	Library   bool     `help:"Save converted songs to the library"`
	Bundle    string   `help:"Also pack the outputs into a .tar.xz or .tar.gz bundle" type:"path" placeholder:"FILE"`
}

func (c *ConvertCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}

	files, err := convert.ExpandInputs(c.Paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no %s files found", convert.InputExtension)
	}

	opts, err := c.options(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if c.Library || cfg.Library.Enabled {
		libOpts := library.Options{Path: cfg.Library.Path}
		if cfg.Library.StoreSources {
			libOpts.SourcesDir = cfg.Library.SourcesDir
		}
		lib, err := library.Open(ctx, libOpts)
		if err != nil {
			return err
		}
		defer lib.Close()
		opts.Library = lib
		logging.Info("library opened", "path", lib.Path(), "store_sources", libOpts.SourcesDir != "")
	}

	report, err := convert.Run(ctx, files, opts)
	if ctx.Err() != nil {
		logging.Warn("conversion interrupted, remaining files were skipped")
	}
	if report != nil {
		printReport(kctx.Stdout, report)
	}
	if err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(report.Files))
	}
	return nil
}

// options merges the flags with the configuration.
func (c *ConvertCmd) options(cfg *config.Config) (convert.Options, error) {
	format := cfg.Convert.Format
	if c.To != "" {
		format = strings.ToLower(c.To)
	}
	outDir := cfg.Convert.OutputDir
	if c.Out != "" {
		outDir = c.Out
	}
	workers := cfg.Convert.Workers
	if c.Workers > 0 {
		workers = c.Workers
	}

	text, err := encoding.NewTextDecoder(cfg.Convert.LegacyCodePage, cfg.Convert.RepairEncoding && !c.NoRepair)
	if err != nil {
		return convert.Options{}, err
	}

	opts := convert.Options{
		Format:    format,
		OutputDir: outDir,
		Workers:   workers,
		Overwrite: c.Overwrite || cfg.Convert.Overwrite,
		Text:      text,
		Export: plugins.ExportOptions{
			Application: cfg.Convert.ApplicationName,
			Pretty:      cfg.Convert.PrettyXML,
		},
	}
	if c.Bundle != "" {
		def, err := archive.ParseCompression(cfg.Bundle.Compression)
		if err != nil {
			return convert.Options{}, err
		}
		opts.Bundle = c.Bundle
		opts.Compression = archive.CompressionFor(c.Bundle, def)
	}
	return opts, nil
}

func printReport(w io.Writer, report *convert.Report) {
	rows := make([][]string, 0, len(report.Files))
	for _, f := range report.Files {
		status, detail := "ok", filepath.Base(f.Output)
		if f.Err != nil {
			status, detail = "failed", f.Err.Error()
		} else if f.LibraryID != "" && !f.LibraryAdded {
			detail += " (already in library)"
		}
		rows = append(rows, []string{
			filepath.Base(f.Input),
			status,
			f.Title,
			detail,
			strconv.Itoa(len(f.Warnings)),
		})
	}
	fmt.Fprintln(w, renderTable([]column{
		{title: "File"},
		{title: "Status"},
		{title: "Title", max: 40},
		{title: "Output", max: 60},
		{title: "Warnings", right: true},
	}, rows))

	for _, f := range report.Files {
		for _, warn := range f.Warnings {
			fmt.Fprintf(w, "warning: %s: %v\n", filepath.Base(f.Input), warn)
		}
	}
	fmt.Fprintf(w, "converted %d, failed %d\n", report.Converted(), report.Failed())
	if report.Bundle != "" {
		fmt.Fprintf(w, "bundle: %s\n", report.Bundle)
	}
}
