package decode

import (
	"encoding/binary"
	"fmt"

	"arrimeta/internal/failures"
	"arrimeta/internal/header"
	"arrimeta/internal/metadata"
	"arrimeta/internal/schema"
)

// Decode evaluates every field of s against block. Derived fields are
// computed after their inputs; the result lists fields in declaration order.
// Decode is pure: the same block and schema always yield equal metadata.
func Decode(block *header.Block, s *schema.Schema) (*metadata.Metadata, error) {
	values, err := evaluate(block, s.DecodeOrder())
	if err != nil {
		return nil, err
	}
	names := s.Names()
	b := metadata.NewBuilder(len(names))
	for _, name := range names {
		b.Set(name, values[name])
	}
	return b.Metadata(), nil
}

// Fields decodes only names and the inputs their derived fields need,
// returning them in the requested order. A failure in a field outside that
// closure cannot fail the call.
func Fields(block *header.Block, s *schema.Schema, names []string) (*metadata.Metadata, error) {
	plan, err := s.Plan(names)
	if err != nil {
		return nil, err
	}
	values, err := evaluate(block, plan)
	if err != nil {
		return nil, err
	}
	b := metadata.NewBuilder(len(plan))
	for _, f := range plan {
		b.Set(f.Name, values[f.Name])
	}
	return metadata.Select(b.Metadata(), names)
}

func evaluate(block *header.Block, plan []schema.FieldSpec) (map[string]metadata.Value, error) {
	values := make(map[string]metadata.Value, len(plan))
	for _, f := range plan {
		v, err := field(block, f, values)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name, err)
		}
		values[f.Name] = v
	}
	return values, nil
}

// Field decodes a single non-derived field.
func Field(block *header.Block, f schema.FieldSpec) (metadata.Value, error) {
	if f.Kind == schema.KindDerived {
		return metadata.Value{}, failures.Wrap(failures.ErrDecode, "decode", f.Name, "derived fields need their inputs", nil)
	}
	return field(block, f, nil)
}

func field(block *header.Block, f schema.FieldSpec, values map[string]metadata.Value) (metadata.Value, error) {
	if f.Kind == schema.KindDerived {
		inputs := make([]metadata.Value, len(f.Derive.Inputs))
		for i, name := range f.Derive.Inputs {
			inputs[i] = values[name]
		}
		return f.Derive.Compute(inputs)
	}

	raw, err := block.Slice(f.Offset, f.Width)
	if err != nil {
		return metadata.Value{}, err
	}
	order := byteOrder(block, f.Order)

	switch f.Kind {
	case schema.KindUint:
		v := unsigned(raw, order)
		return integer(f, float64(v), metadata.Uint(v)), nil
	case schema.KindInt:
		v := signed(raw, order)
		return integer(f, float64(v), metadata.Int(v)), nil
	case schema.KindFloat:
		return floating(raw, order), nil
	case schema.KindString:
		return metadata.String(text(raw, f.Reversed)), nil
	case schema.KindEnum:
		return enum(f, unsigned(raw, order)), nil
	case schema.KindFlag:
		return flag(f, order.Uint32(raw)), nil
	case schema.KindTuple:
		return tuple(raw, order, f.Count), nil
	case schema.KindTimecode:
		return timecode(f, raw, order)
	case schema.KindBCD:
		return packedBCD(f, order.Uint32(raw))
	case schema.KindUUID:
		return identifier(raw)
	default:
		return metadata.Value{}, failures.Wrap(failures.ErrDecode, "decode", f.Name, "unsupported kind "+f.Kind.String(), nil)
	}
}

func byteOrder(block *header.Block, o schema.ByteOrder) binary.ByteOrder {
	switch o {
	case schema.OrderLittle:
		return binary.LittleEndian
	case schema.OrderBig:
		return binary.BigEndian
	default:
		return block.Order()
	}
}

func decodeError(f schema.FieldSpec, message string) error {
	return failures.Wrap(failures.ErrDecode, "decode", f.Kind.String(), message, nil)
}
