package schema

import (
	"fmt"

	"arrimeta/internal/metadata"
)

// Kind selects how a field's bytes are interpreted.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindUint is an unsigned integer of width 1, 2, 4 or 8.
	KindUint
	// KindInt is a two's complement integer of width 1, 2, 4 or 8.
	KindInt
	// KindFloat is an IEEE-754 float of width 4 or 8.
	KindFloat
	// KindString is a fixed-width, NUL padded text field.
	KindString
	// KindEnum is an unsigned code mapped through Labels.
	KindEnum
	// KindFlag is a single bit of a 32-bit word.
	KindFlag
	// KindTuple is Count consecutive float32 values.
	KindTuple
	// KindTimecode is a frame count, time base and drop-frame flag record.
	KindTimecode
	// KindBCD is a packed binary coded decimal word.
	KindBCD
	// KindUUID is a 16 byte identifier with little-endian leading groups.
	KindUUID
	// KindDerived is computed from other fields and occupies no bytes.
	KindDerived
)

var kindNames = map[Kind]string{
	KindUint:     "uint",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindEnum:     "enum",
	KindFlag:     "flag",
	KindTuple:    "tuple",
	KindTimecode: "timecode",
	KindBCD:      "bcd",
	KindUUID:     "uuid",
	KindDerived:  "derived",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ByteOrder overrides the byte order detected from the container marker.
type ByteOrder uint8

const (
	OrderFile ByteOrder = iota
	OrderLittle
	OrderBig
)

// BCDLayout selects how the digits of a BCD word are formatted.
type BCDLayout uint8

const (
	BCDDate BCDLayout = iota + 1
	BCDTime
	BCDZone
	BCDTimecode
)

// TimecodeLayout locates the parts of a timecode record relative to the
// field offset.
type TimecodeLayout struct {
	CountOffset int
	BaseOffset  int
	// BaseScale converts the raw time base word to frames per second.
	BaseScale float64
	// FlagOffset is the 32-bit word holding the drop-frame bit, or -1.
	FlagOffset int
	FlagBit    uint
}

// DeriveFunc computes a field from its decoded inputs, passed in Inputs order.
type DeriveFunc func(inputs []metadata.Value) (metadata.Value, error)

// Derivation describes a field computed from other fields.
type Derivation struct {
	Inputs  []string
	Compute DeriveFunc
}

// FieldSpec declares one header field. Offsets are relative to the start of
// the header block.
type FieldSpec struct {
	Name   string
	Offset int
	Width  int
	Kind   Kind
	Order  ByteOrder

	// Scale multiplies integer fields and turns them into floats.
	Scale float64
	// Decimals rounds scaled values; zero leaves them unrounded.
	Decimals int
	Unit     string

	// Labels maps enum and flag codes to names.
	Labels map[uint64]string
	// Bit selects the flag bit.
	Bit uint
	// Count is the number of tuple elements.
	Count int
	// Reversed marks strings stored as a little-endian word.
	Reversed bool

	BCD    BCDLayout
	Prefix string

	Timecode *TimecodeLayout
	Derive   *Derivation

	Description string
}

// End returns the first byte offset after the field.
func (f FieldSpec) End() int {
	return f.Offset + f.Width
}

func (f FieldSpec) validate() error {
	if f.Kind == KindDerived {
		if f.Derive == nil || f.Derive.Compute == nil {
			return fmt.Errorf("field %q: derived field requires a compute function", f.Name)
		}
		if len(f.Derive.Inputs) == 0 {
			return fmt.Errorf("field %q: derived field requires inputs", f.Name)
		}
		return nil
	}
	if f.Offset < 0 {
		return fmt.Errorf("field %q: negative offset %d", f.Name, f.Offset)
	}
	if f.Width <= 0 {
		return fmt.Errorf("field %q: width must be positive", f.Name)
	}
	switch f.Kind {
	case KindUint, KindInt, KindEnum:
		if !isIntWidth(f.Width) {
			return fmt.Errorf("field %q: %s width %d not in {1,2,4,8}", f.Name, f.Kind, f.Width)
		}
	case KindFloat:
		if f.Width != 4 && f.Width != 8 {
			return fmt.Errorf("field %q: float width %d not in {4,8}", f.Name, f.Width)
		}
	case KindString:
	case KindFlag:
		if f.Width != 4 || f.Bit > 31 {
			return fmt.Errorf("field %q: flag must be bit 0-31 of a 4 byte word", f.Name)
		}
	case KindTuple:
		if f.Count <= 0 || f.Width != f.Count*4 {
			return fmt.Errorf("field %q: tuple of %d float32 needs width %d, got %d", f.Name, f.Count, f.Count*4, f.Width)
		}
	case KindTimecode:
		return f.validateTimecode()
	case KindBCD:
		if f.Width != 4 || f.BCD == 0 {
			return fmt.Errorf("field %q: bcd field needs a layout and width 4", f.Name)
		}
	case KindUUID:
		if f.Width != 16 {
			return fmt.Errorf("field %q: uuid width must be 16", f.Name)
		}
	default:
		return fmt.Errorf("field %q: unsupported kind %s", f.Name, f.Kind)
	}
	if f.Scale != 0 && f.Kind != KindUint && f.Kind != KindInt {
		return fmt.Errorf("field %q: scale only applies to integer fields", f.Name)
	}
	return nil
}

func (f FieldSpec) validateTimecode() error {
	tc := f.Timecode
	if tc == nil {
		return fmt.Errorf("field %q: timecode field requires a layout", f.Name)
	}
	words := []int{tc.CountOffset, tc.BaseOffset}
	if tc.FlagOffset >= 0 {
		if tc.FlagBit > 31 {
			return fmt.Errorf("field %q: drop-frame bit %d out of range", f.Name, tc.FlagBit)
		}
		words = append(words, tc.FlagOffset)
	}
	for _, off := range words {
		if off < 0 || off+4 > f.Width {
			return fmt.Errorf("field %q: timecode word at +%d outside width %d", f.Name, off, f.Width)
		}
	}
	if tc.BaseScale < 0 {
		return fmt.Errorf("field %q: negative time base scale", f.Name)
	}
	return nil
}

func isIntWidth(w int) bool {
	return w == 1 || w == 2 || w == 4 || w == 8
}
