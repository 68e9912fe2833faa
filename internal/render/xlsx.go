package render

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"arrimeta/internal/metadata"
)

// renderXLSX writes a single sheet workbook laid out like the CSV output.
// Numbers keep their cell type so spreadsheets can sort and sum them.
func (t *Table) renderXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	header := make([]any, 0, len(t.columns)+1)
	for _, h := range t.header() {
		header = append(header, h)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write xlsx header: %w", err)
	}

	for i, c := range t.Clips() {
		cells := make([]any, 0, len(t.columns)+1)
		cells = append(cells, c.Label)
		for _, name := range t.columns {
			v, ok := c.Metadata.Get(name)
			cells = append(cells, cellValue(v, ok))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("write xlsx row %s: %w", c.Label, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze xlsx header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func cellValue(v metadata.Value, ok bool) any {
	if !ok {
		return ""
	}
	switch v.Kind() {
	case metadata.KindInt:
		i, _ := v.Int64()
		return i
	case metadata.KindUint:
		u, _ := v.Uint64()
		return u
	case metadata.KindFloat:
		f, _ := v.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return ""
		}
		return f
	default:
		return v.String()
	}
}
