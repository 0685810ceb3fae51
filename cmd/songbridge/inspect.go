package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/songshowplus"
)

// InspectCmd dumps the block structure of a SongShow Plus file without
// interpreting it.
type InspectCmd struct {
	File     string `arg:"" help:"SongShow Plus file" type:"existingfile"`
	NoRepair bool   `name:"no-repair" help:"Do not repair double-encoded text"`
}

func (c *InspectCmd) Run(kctx *kong.Context, g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	text, err := encoding.NewTextDecoder(cfg.Convert.LegacyCodePage, cfg.Convert.RepairEncoding && !c.NoRepair)
	if err != nil {
		return err
	}

	f, err := os.Open(c.File)
	if err != nil {
		return errors.NewIO("open", c.File, err)
	}
	defer f.Close()

	br, err := songshowplus.NewBlockReader(f, text)
	if err != nil {
		return err
	}

	var rows [][]string
	var trailer string
	for {
		b, err := br.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, errors.ErrPrematureEnd) {
			trailer = fmt.Sprintf("file ended without a terminator at offset %d", br.Offset())
			break
		}
		if err != nil {
			if len(rows) > 0 {
				fmt.Fprintln(kctx.Stdout, renderBlocks(rows))
			}
			return err
		}
		rows = append(rows, blockRow(b, text))
		if !b.Tag.Known() {
			if err := br.Skip(b); err != nil {
				return err
			}
		}
	}

	fmt.Fprintln(kctx.Stdout, renderBlocks(rows))
	fmt.Fprintf(kctx.Stdout, "%d blocks\n", len(rows))
	if trailer != "" {
		fmt.Fprintln(kctx.Stdout, trailer)
	}
	return nil
}

func blockRow(b *songshowplus.RawBlock, text *encoding.TextDecoder) []string {
	verse := ""
	switch {
	case b.Tag.HasVerseNumber():
		verse = strconv.Itoa(b.VerseNumber)
	case b.Tag == songshowplus.TagCustomVerse:
		verse = b.VerseName
	}

	var preview string
	switch {
	case b.Tag == songshowplus.TagSongNumber:
		preview = fmt.Sprintf("% x", b.Payload)
	case b.Tag.Known():
		preview = strings.Join(strings.Fields(text.Decode(b.Payload)), " ")
	}

	return []string{
		strconv.FormatInt(b.Offset, 10),
		b.Tag.String(),
		verse,
		strconv.Itoa(int(b.LengthCode)),
		strconv.Itoa(len(b.Payload)),
		preview,
	}
}

func renderBlocks(rows [][]string) string {
	return renderTable([]column{
		{title: "Offset", right: true},
		{title: "Tag"},
		{title: "Verse"},
		{title: "Code", right: true},
		{title: "Bytes", right: true},
		{title: "Text", max: 48},
	}, rows)
}
