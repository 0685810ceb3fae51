package main

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/errors"
	"github.com/FocuswithJustin/SongBridge/core/xml"
	"github.com/FocuswithJustin/SongBridge/internal/archive"
	"github.com/FocuswithJustin/SongBridge/internal/validation"
)

// VerifyCmd checks OpenLyrics documents: they must be well formed, carry a
// title and verses, and their verse order may only name verses that exist.
type VerifyCmd struct {
	Files []string `arg:"" help:"OpenLyrics files or .tar.xz/.tar.gz bundles" type:"existingfile"`
}

// verifyResult is the outcome for one document.
type verifyResult struct {
	name   string
	title  string
	verses int
	err    error
}

func (c *VerifyCmd) Run(kctx *kong.Context, g *Globals) error {
	if _, err := g.load(); err != nil {
		return err
	}

	var results []verifyResult
	for _, file := range c.Files {
		res, err := verifyFile(file)
		if err != nil {
			return err
		}
		results = append(results, res...)
	}

	rows := make([][]string, 0, len(results))
	failed := 0
	for _, r := range results {
		status := "ok"
		if r.err != nil {
			status = r.err.Error()
			failed++
		}
		rows = append(rows, []string{r.name, r.title, strconv.Itoa(r.verses), status})
	}
	fmt.Fprintln(kctx.Stdout, renderTable([]column{
		{title: "Document"},
		{title: "Title", max: 40},
		{title: "Verses", right: true},
		{title: "Result", max: 60},
	}, rows))

	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed verification", failed, len(results))
	}
	return nil
}

// verifyFile checks a single document, or every .xml entry of a bundle.
func verifyFile(file string) ([]verifyResult, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, errors.NewIO("open", file, err)
	}
	kind, typeErr := validation.ValidateFileType(f, file)
	f.Close()

	if typeErr == nil && (kind == validation.FileTypeTarXZ || kind == validation.FileTypeTarGZ) {
		var results []verifyResult
		err := archive.Walk(file, func(h *tar.Header, r io.Reader) (bool, error) {
			if h.Typeflag != tar.TypeReg || !strings.EqualFold(path.Ext(h.Name), ".xml") {
				return false, nil
			}
			data, err := io.ReadAll(r)
			if err != nil {
				return true, err
			}
			results = append(results, verifyDocument(file+":"+h.Name, data))
			return false, nil
		})
		if err != nil {
			return nil, err
		}
		if len(results) == 0 {
			return nil, fmt.Errorf("%s: bundle holds no .xml documents", file)
		}
		return results, nil
	}

	if typeErr != nil {
		return []verifyResult{{name: file, err: typeErr}}, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, errors.NewIO("read", file, err)
	}
	return []verifyResult{verifyDocument(file, data)}, nil
}

func verifyDocument(name string, data []byte) verifyResult {
	res := verifyResult{name: name}

	if v := xml.Validate(data); !v.Valid {
		msg := "not well formed"
		if len(v.Errors) > 0 {
			msg = v.Errors[0].String()
		}
		res.err = fmt.Errorf("malformed XML: %s", msg)
		return res
	}
	doc, err := xml.Parse(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if err != nil {
		res.err = err
		return res
	}

	if root := doc.Root(); root == nil || root.Name() != "song" {
		res.err = fmt.Errorf("root element is not <song>")
		return res
	}
	titles, err := doc.XPath("/song/properties/titles/title")
	if err != nil {
		res.err = err
		return res
	}
	for _, t := range titles {
		if text := strings.TrimSpace(t.Text()); text != "" {
			res.title = text
			break
		}
	}
	if res.title == "" {
		res.err = fmt.Errorf("missing title")
		return res
	}

	count, err := doc.Evaluate("count(/song/lyrics/verse)")
	if err != nil {
		res.err = err
		return res
	}
	if n, ok := count.(float64); ok {
		res.verses = int(n)
	}
	if res.verses == 0 {
		res.err = fmt.Errorf("no verses")
		return res
	}

	lyrics, err := doc.XPathFirst("/song/lyrics")
	if err != nil {
		res.err = err
		return res
	}
	var names []string
	for _, v := range lyrics.Children() {
		if v.Name() != "verse" {
			continue
		}
		name := v.Attr("name")
		if name == "" {
			res.err = fmt.Errorf("verse without a name")
			return res
		}
		if !slices.ContainsFunc(v.Children(), func(c *xml.Node) bool { return c.Name() == "lines" }) {
			res.err = fmt.Errorf("verse %q has no lines", name)
			return res
		}
		names = append(names, name)
	}

	order, err := doc.XPathFirst("/song/properties/verseOrder")
	if err != nil {
		res.err = err
		return res
	}
	if order != nil {
		for _, token := range strings.Fields(order.Text()) {
			if !slices.Contains(names, token) {
				res.err = fmt.Errorf("verse order names unknown verse %q", token)
				return res
			}
		}
	}
	return res
}
