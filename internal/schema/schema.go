package schema

import (
	"fmt"
	"slices"
	"strings"

	"arrimeta/internal/failures"
)

// HeaderBlockSize is the documented size of the legacy ARRIRAW header.
const HeaderBlockSize = 4096

// Named field sets.
const (
	SetAll     = "all"
	SetDefault = "default"
	SetMinimal = "minimal"
)

// Sets holds the configurable ordered field lists.
type Sets struct {
	Default []string
	Minimal []string
}

// Schema is an immutable field catalog with a precomputed decode order. It is
// safe for concurrent use.
type Schema struct {
	fields     []FieldSpec
	index      map[string]int
	order      []int
	sets       map[string][]string
	headerSize int
}

// Build validates fields and sets and computes the dependency-respecting
// decode order. All errors wrap failures.ErrSchema.
func Build(fields []FieldSpec, sets Sets) (*Schema, error) {
	if len(fields) == 0 {
		return nil, schemaError("no fields declared")
	}

	s := &Schema{
		fields: make([]FieldSpec, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	copy(s.fields, fields)

	maxEnd := 0
	for i, f := range s.fields {
		name := strings.TrimSpace(f.Name)
		if name == "" || name != f.Name {
			return nil, schemaError(fmt.Sprintf("field %d has an empty or padded name %q", i, f.Name))
		}
		if _, dup := s.index[name]; dup {
			return nil, schemaError(fmt.Sprintf("duplicate field %q", name))
		}
		if err := f.validate(); err != nil {
			return nil, schemaError(err.Error())
		}
		s.index[name] = i
		if f.Kind != KindDerived && f.End() > maxEnd {
			maxEnd = f.End()
		}
	}

	for _, f := range s.fields {
		if f.Kind != KindDerived {
			continue
		}
		for _, dep := range f.Derive.Inputs {
			if _, ok := s.index[dep]; !ok {
				return nil, schemaError(fmt.Sprintf("field %q depends on undefined field %q", f.Name, dep))
			}
		}
	}

	order, err := s.decodeOrder()
	if err != nil {
		return nil, err
	}
	s.order = order

	s.sets = map[string][]string{}
	for _, named := range []struct {
		name string
		list []string
	}{{SetDefault, sets.Default}, {SetMinimal, sets.Minimal}} {
		name, list := named.name, named.list
		for _, field := range list {
			if _, ok := s.index[field]; !ok {
				return nil, schemaError(fmt.Sprintf("field set %q references undefined field %q", name, field))
			}
		}
		s.sets[name] = slices.Clone(list)
	}

	s.headerSize = roundUp(maxEnd, HeaderBlockSize)
	return s, nil
}

// decodeOrder is Kahn's algorithm, preferring declaration order among ready
// fields so the result is stable.
func (s *Schema) decodeOrder() ([]int, error) {
	pending := make([]int, len(s.fields))
	dependents := make([][]int, len(s.fields))
	for i, f := range s.fields {
		if f.Kind != KindDerived {
			continue
		}
		for _, dep := range f.Derive.Inputs {
			j := s.index[dep]
			pending[i]++
			dependents[j] = append(dependents[j], i)
		}
	}

	order := make([]int, 0, len(s.fields))
	done := make([]bool, len(s.fields))
	for len(order) < len(s.fields) {
		progressed := false
		for i := range s.fields {
			if done[i] || pending[i] > 0 {
				continue
			}
			done[i] = true
			order = append(order, i)
			for _, d := range dependents[i] {
				pending[d]--
			}
			progressed = true
		}
		if !progressed {
			var cyclic []string
			for i, f := range s.fields {
				if !done[i] {
					cyclic = append(cyclic, f.Name)
				}
			}
			return nil, schemaError("dependency cycle among " + strings.Join(cyclic, ", "))
		}
	}
	return order, nil
}

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// HeaderSize is the number of bytes the extractor must read: the furthest
// field end rounded up to the documented header size.
func (s *Schema) HeaderSize() int { return s.headerSize }

// Field returns the definition of name.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	i, ok := s.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return s.fields[i], true
}

// Fields returns all specs in declaration order.
func (s *Schema) Fields() []FieldSpec {
	return slices.Clone(s.fields)
}

// Names returns every field name in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

// DecodeOrder returns field specs in the order they must be evaluated.
func (s *Schema) DecodeOrder() []FieldSpec {
	out := make([]FieldSpec, len(s.order))
	for i, idx := range s.order {
		out[i] = s.fields[idx]
	}
	return out
}

// Plan returns the fields needed to produce names, including the transitive
// inputs of derived fields, in decode order.
func (s *Schema) Plan(names []string) ([]FieldSpec, error) {
	needed := make([]bool, len(s.fields))
	stack := make([]int, 0, len(names))
	for _, name := range names {
		i, ok := s.index[name]
		if !ok {
			return nil, failures.Wrap(failures.ErrUnknownField, "schema", "plan", name, nil)
		}
		stack = append(stack, i)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if needed[i] {
			continue
		}
		needed[i] = true
		if f := s.fields[i]; f.Kind == KindDerived {
			for _, dep := range f.Derive.Inputs {
				stack = append(stack, s.index[dep])
			}
		}
	}
	out := make([]FieldSpec, 0, len(names))
	for _, idx := range s.order {
		if needed[idx] {
			out = append(out, s.fields[idx])
		}
	}
	return out, nil
}

// Resolve turns a selection into a validated ordered list of field names.
func (s *Schema) Resolve(sel Selection) ([]string, error) {
	if sel.Set == "" {
		return s.ResolveNames(sel.Names)
	}
	switch sel.Set {
	case SetAll:
		return s.Names(), nil
	case SetDefault, SetMinimal:
		return slices.Clone(s.sets[sel.Set]), nil
	default:
		return nil, failures.Wrap(failures.ErrUnknownField, "schema", "resolve", "unknown field set "+sel.Set, nil)
	}
}

// ResolveNames validates an explicit name list, failing on the first name
// the schema does not define.
func (s *Schema) ResolveNames(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, failures.Wrap(failures.ErrUnknownField, "schema", "resolve", "empty field list", nil)
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := s.index[name]; !ok {
			return nil, failures.Wrap(failures.ErrUnknownField, "schema", "resolve", name, nil)
		}
		out = append(out, name)
	}
	return out, nil
}

func schemaError(message string) error {
	return failures.Wrap(failures.ErrSchema, "schema", "build", message, nil)
}

func roundUp(n, multiple int) int {
	if n <= 0 {
		return multiple
	}
	return ((n + multiple - 1) / multiple) * multiple
}
