package decode

import (
	"bytes"
	"slices"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"

	"arrimeta/internal/failures"
	"arrimeta/internal/metadata"
)

// text strips NUL padding and trailing spaces. Bytes that are not valid UTF-8
// are read as ISO-8859-1, which older camera firmware writes.
func text(raw []byte, reversed bool) string {
	b := bytes.Clone(raw)
	if reversed {
		slices.Reverse(b)
	}
	b = bytes.ReplaceAll(b, []byte{0}, nil)
	b = bytes.TrimRight(b, " ")
	if utf8.Valid(b) {
		return string(b)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(decoded)
}

// identifier formats a UUID whose first three groups are stored
// little-endian.
func identifier(raw []byte) (metadata.Value, error) {
	b := bytes.Clone(raw)
	slices.Reverse(b[0:4])
	slices.Reverse(b[4:6])
	slices.Reverse(b[6:8])
	id, err := uuid.FromBytes(b)
	if err != nil {
		return metadata.Value{}, failures.Wrap(failures.ErrDecode, "decode", "uuid", "invalid identifier", err)
	}
	return metadata.String(id.String()), nil
}
