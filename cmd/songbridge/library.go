package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/internal/config"
	"github.com/FocuswithJustin/SongBridge/internal/library"
)

// LibraryCmd groups the read-only library commands.
type LibraryCmd struct {
	List   LibraryListCmd   `cmd:"" help:"List stored songs"`
	Show   LibraryShowCmd   `cmd:"" help:"Show one stored song"`
	Source LibrarySourceCmd `cmd:"" help:"Write the stored source file of a song"`
}

func openLibrary(ctx context.Context, cfg *config.Config) (*library.Library, error) {
	opts := library.Options{Path: cfg.Library.Path, ReadOnly: true}
	if cfg.Library.StoreSources {
		opts.SourcesDir = cfg.Library.SourcesDir
	}
	return library.Open(ctx, opts)
}

// LibraryListCmd lists the library.
type LibraryListCmd struct{}

func (c *LibraryListCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	lib, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	songs, err := lib.List(ctx)
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		fmt.Fprintf(kctx.Stdout, "No songs in %s\n", lib.Path())
		return nil
	}

	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{
			shortID(s.ID),
			s.Title,
			strings.Join(s.Authors, "; "),
			strconv.Itoa(s.Verses),
			s.ImportedAt.Local().Format(time.DateTime),
		})
	}
	fmt.Fprintln(kctx.Stdout, renderTable([]column{
		{title: "ID"},
		{title: "Title", max: 40},
		{title: "Authors", max: 40},
		{title: "Verses", right: true},
		{title: "Imported"},
	}, rows))
	fmt.Fprintf(kctx.Stdout, "%d songs\n", len(songs))
	return nil
}

// LibraryShowCmd prints one song.
type LibraryShowCmd struct {
	ID string `arg:"" help:"Song ID or a unique prefix of it"`
}

func (c *LibraryShowCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	lib, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	rec, err := lib.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	s := rec.Song

	authors := make([]string, 0, len(s.Authors))
	for _, a := range s.Authors {
		if a.Type != "" {
			authors = append(authors, fmt.Sprintf("%s (%s)", a.Name, a.Type))
		} else {
			authors = append(authors, a.Name)
		}
	}
	fields := [][]string{
		{"ID", rec.ID},
		{"Title", s.Title},
		{"Alternate title", s.AlternateTitle},
		{"Authors", strings.Join(authors, "; ")},
		{"Copyright", s.Copyright},
		{"CCLI", s.CCLINumber},
		{"Song book", s.SongBook},
		{"Number", s.SongNumber},
		{"Topics", strings.Join(s.Topics, "; ")},
		{"Verse order", s.VerseOrder},
		{"Comments", s.Comments},
		{"Source", rec.SourcePath},
		{"Source SHA-256", rec.SourceSHA256},
		{"Source stored", storedLabel(lib.HasSource(rec))},
		{"Imported", rec.ImportedAt.Local().Format(time.DateTime)},
	}
	var rows [][]string
	for _, f := range fields {
		if f[1] != "" {
			rows = append(rows, f)
		}
	}
	fmt.Fprintln(kctx.Stdout, renderTable([]column{{title: "Field"}, {title: "Value", max: 72}}, rows))

	for _, v := range s.Verses {
		fmt.Fprintf(kctx.Stdout, "\n[%s]\n%s\n", v.Def, v.Text)
	}
	return nil
}

// LibrarySourceCmd copies a song's stored source bytes to a file.
type LibrarySourceCmd struct {
	ID        string `arg:"" help:"Song ID or a unique prefix of it"`
	Out       string `short:"o" required:"" help:"File to write" type:"path"`
	Overwrite bool   `help:"Replace an existing output file"`
}

func (c *LibrarySourceCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	ctx := context.Background()
	lib, err := openLibrary(ctx, cfg)
	if err != nil {
		return err
	}
	defer lib.Close()

	data, err := lib.Source(ctx, c.ID)
	if err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if c.Overwrite {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(c.Out, flags, 0o644)
	if err != nil {
		return errors.NewIO("create", c.Out, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return errors.NewIO("write", c.Out, err)
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", c.Out, err)
	}
	fmt.Fprintf(kctx.Stdout, "wrote %d bytes to %s\n", len(data), c.Out)
	return nil
}

func storedLabel(stored bool) string {
	if stored {
		return "yes"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
