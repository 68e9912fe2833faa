package metadata_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"arrimeta/internal/failures"
	"arrimeta/internal/metadata"
)

func sample() *metadata.Metadata {
	b := metadata.NewBuilder(5)
	b.Set("ImageWidth", metadata.Uint(1920))
	b.Set("CameraTilt", metadata.Int(-3))
	b.Set("SensorFPS", metadata.Float(23.976))
	b.Set("LookName", metadata.String("ARRI 709"))
	b.Set("CDLSlope", metadata.Tuple(1, 0.5, 1.25))
	return b.Metadata()
}

func TestMarshalJSONPreservesOrderAndTypes(t *testing.T) {
	data, err := json.Marshal(sample())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"ImageWidth":1920,"CameraTilt":-3,"SensorFPS":23.976,"LookName":"ARRI 709","CDLSlope":[1.0,0.5,1.25]}`
	if string(data) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", data, want)
	}
}

func TestBuilderReplacesInPlace(t *testing.T) {
	b := metadata.NewBuilder(2)
	b.Set("A", metadata.Int(1))
	b.Set("B", metadata.Int(2))
	b.Set("A", metadata.Int(3))
	m := b.Metadata()

	names := m.Names()
	if len(names) != 2 || names[0] != "A" || names[1] != "B" {
		t.Fatalf("unexpected names %v", names)
	}
	if v, _ := m.Get("A"); !v.Equal(metadata.Int(3)) {
		t.Fatalf("expected replaced value, got %v", v)
	}
}

func TestSelectPreservesRequestedOrder(t *testing.T) {
	m := sample()
	sub, err := metadata.Select(m, []string{"LookName", "ImageWidth"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	names := sub.Names()
	if len(names) != 2 || names[0] != "LookName" || names[1] != "ImageWidth" {
		t.Fatalf("unexpected order %v", names)
	}
	if _, ok := sub.Get("SensorFPS"); ok {
		t.Fatal("expected unrequested field to be dropped")
	}
}

func TestSelectUnknownField(t *testing.T) {
	_, err := metadata.Select(sample(), []string{"ImageWidth", "NotAField"})
	if !errors.Is(err, failures.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
}

func TestAllStopsEarly(t *testing.T) {
	count := 0
	for range sample().All() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("expected iteration to stop at 2, got %d", count)
	}
}

func TestValueAccessors(t *testing.T) {
	if v, ok := metadata.Uint(7).Int64(); !ok || v != 7 {
		t.Fatalf("Uint.Int64 = %d, %v", v, ok)
	}
	if _, ok := metadata.Int(-1).Uint64(); ok {
		t.Fatal("negative int must not convert to uint")
	}
	if f, ok := metadata.Int(2).Float64(); !ok || f != 2 {
		t.Fatalf("Int.Float64 = %v, %v", f, ok)
	}
	if _, ok := metadata.String("x").Float64(); ok {
		t.Fatal("string must not convert to float")
	}
	tuple := metadata.Tuple(1, 2)
	vals, _ := tuple.Tuple()
	vals[0] = 99
	again, _ := tuple.Tuple()
	if again[0] != 1 {
		t.Fatal("Tuple must return a copy")
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		value metadata.Value
		want  string
	}{
		{metadata.Int(-42), "-42"},
		{metadata.Uint(18446744073709551615), "18446744073709551615"},
		{metadata.Float(0.5), "0.5"},
		{metadata.String("A001"), "A001"},
		{metadata.Tuple(1, 0.25, 2), "1 0.25 2"},
		{metadata.Value{}, ""},
	}
	for _, tc := range cases {
		if got := tc.value.String(); got != tc.want {
			t.Fatalf("String() = %q, want %q", got, tc.want)
		}
	}
}

func TestIntegralFloatKeepsDecimalPoint(t *testing.T) {
	for _, tc := range []struct {
		value metadata.Value
		want  string
	}{
		{metadata.Float(24), "24.0"},
		{metadata.Float(-3), "-3.0"},
		{metadata.Float(0.25), "0.25"},
		{metadata.Uint(24), "24"},
		{metadata.Tuple(1, 2), "[1.0,2.0]"},
	} {
		data, err := json.Marshal(tc.value)
		if err != nil {
			t.Fatalf("marshal %v: %v", tc.value, err)
		}
		if string(data) != tc.want {
			t.Fatalf("marshal %v = %s, want %s", tc.value, data, tc.want)
		}
	}
	if got := metadata.Float(24).String(); got != "24" {
		t.Fatalf("String() = %q, want 24", got)
	}
}

func TestNonFiniteFloatMarshalsAsNull(t *testing.T) {
	data, err := json.Marshal(metadata.Float(math.NaN()))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("expected null, got %s", data)
	}
}

func TestEqual(t *testing.T) {
	if !sample().Equal(sample()) {
		t.Fatal("identical mappings must be equal")
	}
	other, _ := metadata.Select(sample(), []string{"ImageWidth"})
	if sample().Equal(other) {
		t.Fatal("different mappings must not be equal")
	}
}
