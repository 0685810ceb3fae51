// Package convert runs batch conversions: each input file is imported,
// exported to the chosen format and optionally saved to the song library.
//
// Files are independent. Every worker builds its own decoder, so a broken
// file never affects the others, and a failed file is reported without
// stopping the batch.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/plugins"
	"github.com/FocuswithJustin/SongBridge/internal/archive"
	"github.com/FocuswithJustin/SongBridge/internal/library"
	"github.com/FocuswithJustin/SongBridge/internal/logging"
	"github.com/FocuswithJustin/SongBridge/internal/validation"
)

// InputExtension is the extension directories are scanned for.
const InputExtension = ".sbsong"

// Options configures a batch run.
type Options struct {
	// Format names the exporter, e.g. "openlyrics" or "txt".
	Format    string
	OutputDir string
	// Workers of zero or less means one per CPU.
	Workers int
	// Overwrite replaces existing output files instead of picking a free
	// " (n)" name.
	Overwrite bool
	// Text decodes field bytes. Nil means the default legacy code page with
	// repair enabled.
	Text   *encoding.TextDecoder
	Export plugins.ExportOptions

	// Library, when set, receives every converted song.
	Library *library.Library
	// Bundle, when set, is the path of a tarball packing every output file.
	Bundle      string
	Compression archive.Compression
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Input    string
	Output   string
	Title    string
	Blocks   int
	Warnings []error
	// LibraryID is set when the song was saved to or already in the library.
	LibraryID    string
	LibraryAdded bool
	Err          error
}

// Report is the outcome of a run. Files are in input order.
type Report struct {
	RunID  string
	Files  []FileResult
	Bundle string
}

// Converted counts files that produced output.
func (r *Report) Converted() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Failed counts files that produced no output.
func (r *Report) Failed() int {
	return len(r.Files) - r.Converted()
}

// Outputs returns the written output paths in input order.
func (r *Report) Outputs() []string {
	var out []string
	for _, f := range r.Files {
		if f.Err == nil && f.Output != "" {
			out = append(out, f.Output)
		}
	}
	return out
}

// ExpandInputs resolves command-line paths to input files. A directory
// contributes its *.sbsong files (extension matched case-insensitively,
// not recursive) in name order; a file is taken as given. Missing paths are
// an error.
func ExpandInputs(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		if err := validation.ValidatePath(p); err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.NewIO("stat", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.NewIO("read", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.Type().IsRegular() && strings.EqualFold(filepath.Ext(e.Name()), InputExtension) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		slices.Sort(found)
		files = append(files, found...)
	}
	return files, nil
}

type job struct {
	index int
	path  string
}

type indexedResult struct {
	index int
	FileResult
}

// Runner converts files with a fixed configuration.
type Runner struct {
	opts     Options
	exporter *plugins.EmbeddedPlugin
	ext      string
}

// NewRunner validates opts and looks up the exporter.
func NewRunner(opts Options) (*Runner, error) {
	exp, err := plugins.LookupExporter(opts.Format)
	if err != nil {
		return nil, err
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	if opts.Text == nil {
		opts.Text = encoding.MustTextDecoder(encoding.DefaultLegacyCodePage, true)
	}
	if opts.Bundle != "" && opts.Compression == "" {
		opts.Compression = archive.CompressionFor(opts.Bundle, archive.CompressionXZ)
	}

	ext := ".out"
	if len(exp.Manifest.Extensions) > 0 {
		ext = exp.Manifest.Extensions[0]
	}
	return &Runner{opts: opts, exporter: exp, ext: ext}, nil
}

// Run converts files. The returned error covers problems with the run as a
// whole (output directory, bundle); per-file failures are in the report.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	runID := logging.GetRunID(ctx)
	if runID == "" {
		runID = logging.NewRunID()
		ctx = logging.WithRunID(ctx, runID)
	}
	report := &Report{RunID: runID, Files: make([]FileResult, len(files))}
	if len(files) == 0 {
		return report, nil
	}

	if err := os.MkdirAll(r.opts.OutputDir, 0o755); err != nil {
		return report, errors.NewIO("create", r.opts.OutputDir, err)
	}

	logging.InfoContext(ctx, "conversion started",
		"files", len(files),
		"format", r.opts.Format,
		"output_dir", r.opts.OutputDir,
	)

	pool := newWorkerPool[job, indexedResult](r.opts.Workers, len(files))
	logging.DebugContext(ctx, "worker pool started", "workers", pool.numWorkers)
	pool.start(ctx, func(ctx context.Context, j job) indexedResult {
		return indexedResult{index: j.index, FileResult: r.convertFile(ctx, j.path)}
	}, func(j job, err error) indexedResult {
		return indexedResult{index: j.index, FileResult: FileResult{Input: j.path, Err: err}}
	})
	for i, f := range files {
		pool.submit(job{index: i, path: f})
	}
	pool.close()

	for res := range pool.resultsChan() {
		report.Files[res.index] = res.FileResult
	}

	logging.InfoContext(ctx, "conversion finished",
		"converted", report.Converted(),
		"failed", report.Failed(),
	)

	if r.opts.Bundle != "" {
		outputs := report.Outputs()
		if len(outputs) == 0 {
			return report, fmt.Errorf("bundle %s: no files were converted", r.opts.Bundle)
		}
		err := archive.CreateBundle(r.opts.Bundle, outputs, archive.BundleOptions{
			Compression: r.opts.Compression,
			ModTime:     r.opts.Export.ModifiedTime(),
		})
		if err != nil {
			logging.ErrorContext(ctx, "bundle failed", "path", r.opts.Bundle, "error", err)
			return report, err
		}
		report.Bundle = r.opts.Bundle
		logging.InfoContext(ctx, "bundle written", "path", r.opts.Bundle, "files", len(outputs))
	}
	return report, nil
}

// convertFile runs one file through import, export and the library.
func (r *Runner) convertFile(ctx context.Context, path string) FileResult {
	res := FileResult{Input: path}
	log := logging.LoggerFromContext(ctx).With("path", path)

	imp, err := plugins.DetectImporter(path)
	if err != nil {
		return r.fail(ctx, res, err)
	}
	imported, err := imp.Importer.Import(ctx, path, plugins.ImportOptions{
		Text:   r.opts.Text,
		Logger: log,
	})
	if err != nil {
		return r.fail(ctx, res, err)
	}
	res.Title = imported.Song.Title
	res.Blocks = imported.Blocks
	res.Warnings = imported.Warnings

	output, err := r.export(imported, log)
	if err != nil {
		return r.fail(ctx, res, err)
	}
	res.Output = output

	if r.opts.Library != nil {
		saved, err := r.opts.Library.Save(ctx, imported.Song, path)
		if err != nil {
			// The output file stands; only the library copy is missing.
			logging.WarnContext(ctx, "library save failed", "path", path, "error", err)
			res.Warnings = append(res.Warnings, fmt.Errorf("library: %w", err))
		} else {
			res.LibraryID, res.LibraryAdded = saved.ID, saved.Added
			if !saved.Added {
				log.Info("song already in library", "id", saved.ID)
			}
		}
	}

	logging.FileConverted(ctx, path, output, len(res.Warnings))
	return res
}

func (r *Runner) export(imported *plugins.ImportResult, log *slog.Logger) (string, error) {
	stem := validation.SanitizeFilename(imported.Song.Title, r.ext)
	f, path, err := validation.CreateOutput(r.opts.OutputDir, stem, r.ext, r.opts.Overwrite)
	if err != nil {
		return "", errors.NewIO("create", filepath.Join(r.opts.OutputDir, stem+r.ext), err)
	}

	if err := r.exporter.Exporter.Export(f, imported.Song, r.opts.Export); err != nil {
		f.Close()
		os.Remove(path)
		return "", errors.Wrapf(err, "export %s", r.opts.Format)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", errors.NewIO("write", path, err)
	}
	log.Debug("output written", "output", path)
	return path, nil
}

func (r *Runner) fail(ctx context.Context, res FileResult, err error) FileResult {
	res.Err = err
	logging.FileFailed(ctx, res.Input, err)
	return res
}

// Run is a convenience wrapper building a Runner for one batch.
func Run(ctx context.Context, files []string, opts Options) (*Report, error) {
	r, err := NewRunner(opts)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, files)
}
