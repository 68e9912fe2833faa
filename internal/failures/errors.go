package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFormat marks input that is not an ARRIRAW container.
	ErrFormat = errors.New("unsupported container format")
	// ErrTruncated marks files shorter than the header block.
	ErrTruncated = errors.New("truncated header")
	// ErrSchema marks invalid field definitions or field-set configuration.
	ErrSchema = errors.New("invalid schema")
	// ErrUnknownField marks a requested field name the schema does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrDecode marks raw bytes that cannot be interpreted under their declared kind.
	ErrDecode = errors.New("decode error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrDecode
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to the short classification used in per-file reports.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrTruncated):
		return "truncated"
	case errors.Is(err, ErrSchema):
		return "schema"
	case errors.Is(err, ErrUnknownField):
		return "unknown_field"
	case errors.Is(err, ErrDecode):
		return "decode"
	default:
		return "io"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "metadata failure"
	}
	return strings.Join(parts, ": ")
}
