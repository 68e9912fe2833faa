package testsupport

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"arrimeta/internal/header"
	"arrimeta/internal/schema"
)

// HeaderBuilder assembles a synthetic ARRIRAW header block.
type HeaderBuilder struct {
	t     testing.TB
	buf   []byte
	order binary.ByteOrder
}

// NewHeader returns a little-endian header of the documented size with a
// valid signature.
func NewHeader(t testing.TB) *HeaderBuilder {
	return NewHeaderWithOrder(t, binary.LittleEndian, schema.HeaderBlockSize)
}

// NewHeaderWithOrder returns a header of size bytes declaring order.
func NewHeaderWithOrder(t testing.TB, order binary.ByteOrder, size int) *HeaderBuilder {
	t.Helper()
	if size < header.SignatureSize {
		t.Fatalf("header size %d too small", size)
	}
	b := &HeaderBuilder{t: t, buf: make([]byte, size), order: order}
	copy(b.buf, header.Signature)
	order.PutUint32(b.buf[4:8], 0x12345678)
	return b
}

func (b *HeaderBuilder) span(off, width int) []byte {
	b.t.Helper()
	if off < 0 || off+width > len(b.buf) {
		b.t.Fatalf("write of %d bytes at %d outside %d byte header", width, off, len(b.buf))
	}
	return b.buf[off : off+width]
}

func (b *HeaderBuilder) Uint8(off int, v uint8) *HeaderBuilder {
	b.span(off, 1)[0] = v
	return b
}

func (b *HeaderBuilder) Uint16(off int, v uint16) *HeaderBuilder {
	b.order.PutUint16(b.span(off, 2), v)
	return b
}

func (b *HeaderBuilder) Uint32(off int, v uint32) *HeaderBuilder {
	b.order.PutUint32(b.span(off, 4), v)
	return b
}

func (b *HeaderBuilder) Uint64(off int, v uint64) *HeaderBuilder {
	b.order.PutUint64(b.span(off, 8), v)
	return b
}

func (b *HeaderBuilder) Int32(off int, v int32) *HeaderBuilder {
	return b.Uint32(off, uint32(v))
}

func (b *HeaderBuilder) Int64(off int, v int64) *HeaderBuilder {
	return b.Uint64(off, uint64(v))
}

func (b *HeaderBuilder) Float32(off int, v float32) *HeaderBuilder {
	return b.Uint32(off, math.Float32bits(v))
}

// String writes s NUL padded to width bytes.
func (b *HeaderBuilder) String(off, width int, s string) *HeaderBuilder {
	dst := b.span(off, width)
	clear(dst)
	copy(dst, s)
	return b
}

// Raw copies data verbatim.
func (b *HeaderBuilder) Raw(off int, data []byte) *HeaderBuilder {
	copy(b.span(off, len(data)), data)
	return b
}

// Bytes returns a copy of the header.
func (b *HeaderBuilder) Bytes() []byte {
	return append([]byte(nil), b.buf...)
}

// Block returns the header as a validated block.
func (b *HeaderBuilder) Block() *header.Block {
	b.t.Helper()
	block, err := header.NewBlock(b.buf)
	if err != nil {
		b.t.Fatalf("header.NewBlock: %v", err)
	}
	return block
}

// WriteFile writes the header followed by payload bytes of image data.
func (b *HeaderBuilder) WriteFile(path string, payload int) string {
	b.t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		b.t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := append(b.Bytes(), make([]byte, payload)...)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		b.t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// ARRIOffset returns the header offset of a field in the ARRIRAW schema.
func ARRIOffset(t testing.TB, name string) int {
	t.Helper()
	for _, f := range schema.ARRIFields() {
		if f.Name == name {
			return f.Offset
		}
	}
	t.Fatalf("no ARRIRAW field %q", name)
	return 0
}

// SampleClip returns a header populated with the values of a typical 24 fps
// UHD clip.
func SampleClip(t testing.TB) *HeaderBuilder {
	t.Helper()
	off := func(name string) int { return ARRIOffset(t, name) }
	b := NewHeader(t)
	b.Uint32(off("ImageWidth"), 3840).
		Uint32(off("ImageHeight"), 2160).
		Uint32(off("WhiteBalance"), 5600).
		Float32(off("WhiteBalanceCC"), 0).
		Uint32(off("ExposureIndexASA"), 800).
		String(off("LookName"), 32, "ARRI 709").
		Float32(off("CDLSaturation"), 1).
		Float32(off("CDLSlope"), 1).Float32(off("CDLSlope")+4, 1).Float32(off("CDLSlope")+8, 1).
		Float32(off("CDLPower"), 1).Float32(off("CDLPower")+4, 1).Float32(off("CDLPower")+8, 1).
		Uint32(off("CameraSerialNumber"), 23456).
		String(off("CameraId"), 4, "21BA").
		Raw(off("SystemImageCreationDate"), []byte{0x20, 0x24, 0x03, 0x15}).
		Raw(off("SystemImageCreationTime"), []byte{0x14, 0x30, 0x25, 0x12}).
		Uint32(off("ExposureTime"), 20833).
		Uint32(off("ShutterAngle"), 180000).
		Uint32(off("SensorFPS"), 24000).
		Uint32(off("ProjectFPS"), 24000).
		Uint32(off("MasterTCBCD"), 0x00002923).
		Uint32(off("MasterTCFrameCount"), 719).
		Uint32(off("MasterTCTimeBase"), 24000).
		String(off("CameraModel"), 20, "ALEXA Mini").
		Uint32(off("LensFocusDistance"), 3000).
		Uint32(off("LensFocalLength"), 35000).
		Int32(off("LensLinearIris"), 5000).
		String(off("LensModel"), 32, "Signature Prime 35").
		String(off("Reel"), 8, "A001").
		String(off("Scene"), 16, "12").
		String(off("Take"), 8, "3").
		String(off("CameraClipName"), 20, "A001C003_240315_R1AB")
	return b
}
