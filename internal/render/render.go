package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"arrimeta/internal/metadata"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatTSV   Format = "tsv"
	FormatTable Format = "table"
	FormatXLSX  Format = "xlsx"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatJSON, FormatCSV, FormatTSV, FormatTable, FormatXLSX}

// Binary reports whether the format cannot be written to a terminal.
func (f Format) Binary() bool { return f == FormatXLSX }

// ParseFormat matches s case-insensitively against the known formats.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want json, csv, tsv, table or xlsx)", s)
}

// Entry is one name/value pair of a record.
type Entry struct {
	Name  string
	Value metadata.Value
}

// Record flattens m into its ordered entries.
func Record(m *metadata.Metadata) []Entry {
	entries := make([]Entry, 0, m.Len())
	for name, v := range m.All() {
		entries = append(entries, Entry{Name: name, Value: v})
	}
	return entries
}

// JSON writes m as an indented object keyed in field order.
func JSON(w io.Writer, m *metadata.Metadata) error {
	raw, err := m.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	return writeIndented(w, raw)
}

func writeIndented(w io.Writer, raw []byte) error {
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("indent json: %w", err)
	}
	out.WriteByte('\n')
	_, err := w.Write(out.Bytes())
	return err
}
