package metadata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the dynamic type carried by a Value.
type ValueKind uint8

const (
	KindInvalid ValueKind = iota
	KindInt
	KindUint
	KindFloat
	KindString
	KindTuple
)

func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindTuple:
		return "tuple"
	default:
		return "invalid"
	}
}

// Value is a decoded field value. The zero Value is invalid.
type Value struct {
	kind  ValueKind
	i     int64
	u     uint64
	f     float64
	s     string
	tuple []float64
}

func Int(v int64) Value { return Value{kind: KindInt, i: v} }

func Uint(v uint64) Value { return Value{kind: KindUint, u: v} }

func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

func String(v string) Value { return Value{kind: KindString, s: v} }

// Tuple copies vals into a float tuple value.
func Tuple(vals ...float64) Value {
	cp := make([]float64, len(vals))
	copy(cp, vals)
	return Value{kind: KindTuple, tuple: cp}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsValid() bool { return v.kind != KindInvalid }

// Int64 returns the value as a signed integer when it holds an integer kind.
func (v Value) Int64() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindUint:
		if v.u > math.MaxInt64 {
			return 0, false
		}
		return int64(v.u), true
	default:
		return 0, false
	}
}

func (v Value) Uint64() (uint64, bool) {
	switch v.kind {
	case KindUint:
		return v.u, true
	case KindInt:
		if v.i < 0 {
			return 0, false
		}
		return uint64(v.i), true
	default:
		return 0, false
	}
}

// Float64 returns any numeric value widened to float64.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindUint:
		return float64(v.u), true
	default:
		return 0, false
	}
}

func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Tuple returns a copy of the tuple elements.
func (v Value) Tuple() ([]float64, bool) {
	if v.kind != KindTuple {
		return nil, false
	}
	cp := make([]float64, len(v.tuple))
	copy(cp, v.tuple)
	return cp, true
}

// Equal compares kind and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == other.i
	case KindUint:
		return v.u == other.u
	case KindFloat:
		return v.f == other.f || (math.IsNaN(v.f) && math.IsNaN(other.f))
	case KindString:
		return v.s == other.s
	case KindTuple:
		if len(v.tuple) != len(other.tuple) {
			return false
		}
		for i := range v.tuple {
			if v.tuple[i] != other.tuple[i] {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the value as plain text for tables and CSV cells. Tuples are
// space separated.
func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindUint:
		return strconv.FormatUint(v.u, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindString:
		return v.s
	case KindTuple:
		parts := make([]string, len(v.tuple))
		for i, f := range v.tuple {
			parts[i] = formatFloat(f)
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// MarshalJSON keeps numbers numeric and strings quoted. Non-finite floats
// become null because JSON has no encoding for them.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.i, 10)), nil
	case KindUint:
		return []byte(strconv.FormatUint(v.u, 10)), nil
	case KindFloat:
		return marshalFloat(v.f), nil
	case KindString:
		return json.Marshal(v.s)
	case KindTuple:
		buf := make([]byte, 0, 8*len(v.tuple)+2)
		buf = append(buf, '[')
		for i, f := range v.tuple {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = append(buf, marshalFloat(f)...)
		}
		return append(buf, ']'), nil
	default:
		return []byte("null"), nil
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// marshalFloat keeps a decimal point on integral values so a float never
// reads back as an integer.
func marshalFloat(f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null")
	}
	s := formatFloat(f)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return []byte(s)
}
