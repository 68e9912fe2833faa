package catalog

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"arrimeta/internal/metadata"
)

const entryColumns = `path, clip, reel, fields_json, field_count, run_id, updated_at`

// Entry is one cataloged clip.
type Entry struct {
	Path       string
	Clip       string
	Reel       string
	FieldsJSON string
	FieldCount int
	RunID      string
	UpdatedAt  time.Time
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry   Entry
		reel    sql.NullString
		runID   sql.NullString
		updated string
	)
	if err := row.Scan(&entry.Path, &entry.Clip, &reel, &entry.FieldsJSON, &entry.FieldCount, &runID, &updated); err != nil {
		return nil, err
	}
	entry.Reel = reel.String
	entry.RunID = runID.String
	if ts, err := time.Parse(time.RFC3339Nano, updated); err == nil {
		entry.UpdatedAt = ts
	}
	return &entry, nil
}

// Metadata rebuilds the stored fields in their original order. Bare integers
// come back as Int or Uint depending on sign, numbers written with a decimal
// point as Float, arrays as tuples and null as NaN.
func (e *Entry) Metadata() (*metadata.Metadata, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(e.FieldsJSON)))
	dec.UseNumber()
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	b := metadata.NewBuilder(e.FieldCount)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read field name: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("field name is %T", tok)
		}
		v, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		b.Set(name, v)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return b.Metadata(), nil
}

func decodeValue(dec *json.Decoder) (metadata.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return metadata.Value{}, err
	}
	switch t := tok.(type) {
	case string:
		return metadata.String(t), nil
	case json.Number:
		return number(t)
	case nil:
		return metadata.Float(math.NaN()), nil
	case json.Delim:
		if t != '[' {
			return metadata.Value{}, fmt.Errorf("unexpected %v", t)
		}
		var vals []float64
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return metadata.Value{}, err
			}
			f, _ := v.Float64()
			vals = append(vals, f)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return metadata.Value{}, err
		}
		return metadata.Tuple(vals...), nil
	default:
		return metadata.Value{}, fmt.Errorf("unsupported value %v", tok)
	}
}

func number(n json.Number) (metadata.Value, error) {
	s := n.String()
	if u, err := strconv.ParseUint(s, 10, 64); err == nil {
		return metadata.Uint(u), nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return metadata.Int(i), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return metadata.Value{}, err
	}
	return metadata.Float(f), nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read %q: %w", want, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}
