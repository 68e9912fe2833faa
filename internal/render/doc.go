// Package render projects decoded metadata into output formats.
//
// A single clip renders as a key-value record or an ordered JSON object. A
// Table aggregates many clips into rows keyed by file path; its columns are
// the union of field names in first-seen order, so clips decoded with
// different field lists still line up. Rows are labelled by clip name, or by
// relative path when two files share a name. Tables render as a go-pretty
// table, CSV, TSV, an XLSX workbook, or a JSON object keyed by label.
package render
