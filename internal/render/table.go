package render

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"arrimeta/internal/metadata"
)

// ClipColumn heads the first column of tabular output.
const ClipColumn = "Clip"

type row struct {
	key  string
	clip string
	meta *metadata.Metadata
}

// Table aggregates metadata from many clips. Rows are keyed by file path and
// its columns are the union of field names in first-seen order.
type Table struct {
	columns []string
	seen    map[string]bool
	rows    []row
	byKey   map[string]int
}

// Clip is one labelled row of a Table.
type Clip struct {
	Key      string
	Label    string
	Metadata *metadata.Metadata
}

// NewTable returns an empty aggregator.
func NewTable() *Table {
	return &Table{seen: map[string]bool{}, byKey: map[string]int{}}
}

// Add records m for the file at key, displayed as clip. Adding a key that is
// already present replaces its row in place.
func (t *Table) Add(key, clip string, m *metadata.Metadata) {
	for _, name := range m.Names() {
		if !t.seen[name] {
			t.seen[name] = true
			t.columns = append(t.columns, name)
		}
	}
	if i, ok := t.byKey[key]; ok {
		t.rows[i].clip = clip
		t.rows[i].meta = m
		return
	}
	t.byKey[key] = len(t.rows)
	t.rows = append(t.rows, row{key: key, clip: clip, meta: m})
}

// Len returns the number of clips.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the field columns, without the clip column.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Clips returns the rows in insertion order with their display labels.
func (t *Table) Clips() []Clip {
	labels := t.labels()
	out := make([]Clip, len(t.rows))
	for i, r := range t.rows {
		out[i] = Clip{Key: r.key, Label: labels[i], Metadata: r.meta}
	}
	return out
}

// labels names each row by its clip name. Rows sharing a clip name are
// labelled by their path relative to the directory the colliding files have
// in common, in slash form without the extension.
func (t *Table) labels() []string {
	groups := make(map[string][]int)
	for i, r := range t.rows {
		groups[r.clip] = append(groups[r.clip], i)
	}
	labels := make([]string, len(t.rows))
	for clip, idx := range groups {
		if len(idx) == 1 {
			labels[idx[0]] = clip
			continue
		}
		keys := make([]string, len(idx))
		for j, i := range idx {
			keys[j] = t.rows[i].key
		}
		for j, name := range relativeNames(keys) {
			labels[idx[j]] = name
		}
	}
	return labels
}

func relativeNames(keys []string) []string {
	common := filepath.Dir(keys[0])
	for _, k := range keys[1:] {
		for !within(k, common) {
			parent := filepath.Dir(common)
			if parent == common {
				break
			}
			common = parent
		}
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		rel, err := filepath.Rel(common, k)
		if err != nil {
			rel = k
		}
		rel = filepath.ToSlash(rel)
		out[i] = strings.TrimSuffix(rel, path.Ext(rel))
	}
	return out
}

func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Rows returns one cell slice per clip, the label first. Fields a clip lacks
// are empty cells.
func (t *Table) Rows() [][]string {
	clips := t.Clips()
	out := make([][]string, len(clips))
	for i, c := range clips {
		cells := make([]string, 0, len(t.columns)+1)
		cells = append(cells, c.Label)
		for _, name := range t.columns {
			v, _ := c.Metadata.Get(name)
			cells = append(cells, v.String())
		}
		out[i] = cells
	}
	return out
}

// Render writes the table in format.
func (t *Table) Render(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return t.renderJSON(w)
	case FormatCSV:
		return t.renderDelimited(w, ',')
	case FormatTSV:
		return t.renderDelimited(w, '\t')
	case FormatXLSX:
		return t.renderXLSX(w)
	case FormatTable:
		if len(t.rows) == 1 {
			_, err := io.WriteString(w, RecordTable(t.rows[0].meta)+"\n")
			return err
		}
		_, err := io.WriteString(w, t.pretty()+"\n")
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func (t *Table) header() []string {
	return append([]string{ClipColumn}, t.columns...)
}

func (t *Table) renderDelimited(w io.Writer, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.header()); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows()); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// renderJSON writes an object keyed by label in insertion order.
func (t *Table) renderJSON(w io.Writer) error {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range t.Clips() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c.Label)
		if err != nil {
			return err
		}
		val, err := c.Metadata.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encode %s: %w", c.Label, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return writeIndented(w, buf.Bytes())
}

func (t *Table) pretty() string {
	var right []int
	for i, name := range t.columns {
		if t.numeric(name) {
			right = append(right, i+1)
		}
	}
	return Grid(t.header(), t.Rows(), right...)
}

// numeric reports whether every present value in the column is a number.
func (t *Table) numeric(column string) bool {
	found := false
	for _, r := range t.rows {
		v, ok := r.meta.Get(column)
		if !ok {
			continue
		}
		if _, isNum := v.Float64(); !isNum {
			return false
		}
		found = true
	}
	return found
}
