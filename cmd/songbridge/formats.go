package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SongBridge/core/plugins"
)

// FormatsCmd lists the registered handlers.
type FormatsCmd struct{}

func (c *FormatsCmd) Run(kctx *kong.Context) error {
	var rows [][]string
	for _, p := range plugins.ListEmbeddedPlugins() {
		m := p.Manifest
		rows = append(rows, []string{
			m.Name(),
			m.Kind,
			strings.Join(m.Extensions, ", "),
			m.Version,
			m.Description,
		})
	}
	fmt.Fprintln(kctx.Stdout, renderTable([]column{
		{title: "Name"},
		{title: "Kind"},
		{title: "Extensions"},
		{title: "Version"},
		{title: "Description"},
	}, rows))
	return nil
}
