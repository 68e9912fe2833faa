package decode

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"arrimeta/internal/metadata"
	"arrimeta/internal/schema"
)

// unsigned reads a 1, 2, 4 or 8 byte word.
func unsigned(raw []byte, order binary.ByteOrder) uint64 {
	switch len(raw) {
	case 1:
		return uint64(raw[0])
	case 2:
		return uint64(order.Uint16(raw))
	case 4:
		return uint64(order.Uint32(raw))
	default:
		return order.Uint64(raw)
	}
}

func signed(raw []byte, order binary.ByteOrder) int64 {
	u := unsigned(raw, order)
	switch len(raw) {
	case 1:
		return int64(int8(u))
	case 2:
		return int64(int16(u))
	case 4:
		return int64(int32(u))
	default:
		return int64(u)
	}
}

// integer applies the field scale. Unscaled fields keep their exact value.
func integer(f schema.FieldSpec, raw float64, exact metadata.Value) metadata.Value {
	if f.Scale == 0 {
		return exact
	}
	v := raw * f.Scale
	// divide by an integral reciprocal so 20833 * 0.001 is exactly 20.833
	if inv := 1 / f.Scale; inv == math.Trunc(inv) {
		v = raw / inv
	}
	if f.Decimals > 0 {
		p := math.Pow(10, float64(f.Decimals))
		v = math.Round(v*p) / p
	}
	return metadata.Float(v)
}

func floating(raw []byte, order binary.ByteOrder) metadata.Value {
	if len(raw) == 8 {
		return metadata.Float(math.Float64frombits(order.Uint64(raw)))
	}
	return metadata.Float(shortest(math.Float32frombits(order.Uint32(raw))))
}

// shortest widens a float32 to the float64 with the same shortest decimal
// form, so 0.1f reads as 0.1 rather than 0.10000000149011612.
func shortest(f float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(f), 'g', -1, 32), 64)
	if err != nil {
		return float64(f)
	}
	return v
}

func tuple(raw []byte, order binary.ByteOrder, count int) metadata.Value {
	vals := make([]float64, count)
	for i := range vals {
		vals[i] = shortest(math.Float32frombits(order.Uint32(raw[4*i:])))
	}
	return metadata.Tuple(vals...)
}

func enum(f schema.FieldSpec, code uint64) metadata.Value {
	if label, ok := f.Labels[code]; ok {
		return metadata.String(label)
	}
	return metadata.String(fmt.Sprintf("Unknown (%d)", code))
}

func flag(f schema.FieldSpec, word uint32) metadata.Value {
	bit := uint64(word>>f.Bit) & 1
	if f.Labels == nil {
		return metadata.Uint(bit)
	}
	return enum(f, bit)
}
