package schema

import "strings"

// Selection is either a named field set or an explicit ordered name list.
type Selection struct {
	Set   string
	Names []string
}

// SetSelection selects a named set.
func SetSelection(name string) Selection {
	return Selection{Set: name}
}

// NamesSelection selects explicit field names.
func NamesSelection(names ...string) Selection {
	return Selection{Names: names}
}

// ParseSelection interprets a command-line value: one of the set names, or a
// comma separated list of field names. Blank entries are skipped.
func ParseSelection(value string) Selection {
	trimmed := strings.TrimSpace(value)
	switch strings.ToLower(trimmed) {
	case "", SetDefault:
		return SetSelection(SetDefault)
	case SetAll:
		return SetSelection(SetAll)
	case SetMinimal:
		return SetSelection(SetMinimal)
	}
	var names []string
	for _, part := range strings.Split(trimmed, ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	return NamesSelection(names...)
}

func (s Selection) String() string {
	if s.Set != "" {
		return s.Set
	}
	return strings.Join(s.Names, ",")
}
