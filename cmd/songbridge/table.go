package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// column describes one table column.
type column struct {
	title string
	right bool
	// max truncates cells wider than this many characters; zero means no
	// limit.
	max int
}

func renderTable(columns []column, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, c := range columns {
		header[i] = c.title
		align := text.AlignLeft
		if c.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
		if c.max > 0 {
			configs[i].WidthMax = c.max
			configs[i].WidthMaxEnforcer = text.Trim
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}
