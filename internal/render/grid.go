package render

import (
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"arrimeta/internal/metadata"
)

// Grid renders headers and rows as a rounded box table. Columns whose index
// appears in rightAligned are right aligned. Short rows are padded.
func Grid(headers []string, rows [][]string, rightAligned ...int) string {
	if len(headers) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.AppendHeader(toRow(headers, len(headers)))
	for _, cells := range rows {
		tw.AppendRow(toRow(cells, len(headers)))
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		align := text.AlignLeft
		if slices.Contains(rightAligned, i) {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

func toRow(cells []string, width int) table.Row {
	r := make(table.Row, width)
	for i := range r {
		if i < len(cells) {
			r[i] = cells[i]
		} else {
			r[i] = ""
		}
	}
	return r
}

// RecordTable renders a single clip as a two column Field/Value table.
func RecordTable(m *metadata.Metadata) string {
	rows := make([][]string, 0, m.Len())
	for _, e := range Record(m) {
		rows = append(rows, []string{e.Name, e.Value.String()})
	}
	return Grid([]string{"Field", "Value"}, rows)
}
