// Package schema declares the ARRIRAW header fields and the named field sets
// used to select them.
//
// A Schema is built once from a FieldSpec table and is immutable afterwards,
// so it can be shared by every worker of a batch. Build rejects duplicate
// names, widths that do not fit a field's kind, field sets referencing
// undefined names, and derived fields whose inputs are missing or cyclic.
//
// # Field Kinds
//
// Each FieldSpec carries a Kind tag that the decoder switches on: integers and
// floats (optionally scaled), NUL padded strings, enumerations, single-bit
// flags, float32 tuples, timecode records, packed BCD words, UUIDs, and derived
// fields computed from other fields.
//
// # Decode Order
//
// Derived fields may depend on other fields, including other derived fields.
// Build computes a topological evaluation order once. Output keeps declaration
// order regardless of evaluation order.
//
// # Field Sets
//
// "all" is every field in declaration order. "default" and "minimal" are
// configurable ordered lists; DefaultSets returns the built-in ones.
package schema
