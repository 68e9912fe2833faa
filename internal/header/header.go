package header

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"arrimeta/internal/failures"
)

// Signature is the container magic at file offset 0.
const Signature = "ARRI"

// SignatureSize covers the magic and the byte-order marker that follows it.
const SignatureSize = 8

const byteOrderMarker = 0x12345678

// Block is an immutable copy of the header region of one file. Offset 0 is
// file offset 0.
type Block struct {
	data  []byte
	order binary.ByteOrder
}

// Extract opens path and reads exactly size bytes of header.
func Extract(path string, size int) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	block, err := Read(f, size)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return block, nil
}

// Read validates the signature and reads size bytes from offset 0 of r. It
// never reads past size.
func Read(r io.ReaderAt, size int) (*Block, error) {
	if size < SignatureSize {
		return nil, failures.Wrap(failures.ErrSchema, "header", "read", fmt.Sprintf("header size %d smaller than signature", size), nil)
	}
	data := make([]byte, size)
	n, err := r.ReadAt(data, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read header: %w", err)
	}
	data = data[:n]

	order, err := detectOrder(data)
	if err != nil {
		return nil, err
	}
	if n < size {
		return nil, failures.Wrap(failures.ErrTruncated, "header", "read", fmt.Sprintf("got %d of %d bytes", n, size), nil)
	}
	return &Block{data: data, order: order}, nil
}

// NewBlock validates and copies an in-memory header.
func NewBlock(data []byte) (*Block, error) {
	order, err := detectOrder(data)
	if err != nil {
		return nil, err
	}
	return &Block{data: bytes.Clone(data), order: order}, nil
}

func detectOrder(data []byte) (binary.ByteOrder, error) {
	if len(data) < SignatureSize {
		// a short file that still starts like a container is truncated, not foreign
		if len(data) > 0 && strings.HasPrefix(Signature, string(data[:min(len(data), len(Signature))])) {
			return nil, failures.Wrap(failures.ErrTruncated, "header", "signature", fmt.Sprintf("got %d bytes", len(data)), nil)
		}
		return nil, failures.Wrap(failures.ErrFormat, "header", "signature", "file too short for signature", nil)
	}
	if string(data[:len(Signature)]) != Signature {
		return nil, failures.Wrap(failures.ErrFormat, "header", "signature", fmt.Sprintf("magic %q", data[:len(Signature)]), nil)
	}
	marker := data[len(Signature):SignatureSize]
	switch {
	case binary.LittleEndian.Uint32(marker) == byteOrderMarker:
		return binary.LittleEndian, nil
	case binary.BigEndian.Uint32(marker) == byteOrderMarker:
		return binary.BigEndian, nil
	default:
		return nil, failures.Wrap(failures.ErrFormat, "header", "signature", fmt.Sprintf("byte order marker % x", marker), nil)
	}
}

// Len returns the header length in bytes.
func (b *Block) Len() int { return len(b.data) }

// Order returns the byte order declared by the container marker.
func (b *Block) Order() binary.ByteOrder { return b.order }

// Slice returns width bytes at offset. Callers must not modify the result.
func (b *Block) Slice(offset, width int) ([]byte, error) {
	if offset < 0 || width < 0 || offset+width > len(b.data) {
		return nil, failures.Wrap(failures.ErrTruncated, "header", "slice",
			fmt.Sprintf("bytes %d..%d outside %d byte header", offset, offset+width, len(b.data)), nil)
	}
	return b.data[offset : offset+width : offset+width], nil
}

// Bytes returns a copy of the header.
func (b *Block) Bytes() []byte { return bytes.Clone(b.data) }

// SupportedExtension reports whether path ends in one of exts. Extensions are
// compared case-insensitively, with or without a leading dot.
func SupportedExtension(path string, exts []string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return false
	}
	for _, candidate := range exts {
		if strings.TrimPrefix(strings.ToLower(strings.TrimSpace(candidate)), ".") == ext {
			return true
		}
	}
	return false
}
