package decode

import (
	"encoding/binary"
	"fmt"
	"math"

	"arrimeta/internal/metadata"
	"arrimeta/internal/schema"
)

const secondsPerDay = 24 * 60 * 60

// timecode renders a frame count against its time base as HH:MM:SS:FF. The
// time base is rounded to the nominal rate, so 23.976 counts at 24.
func timecode(f schema.FieldSpec, raw []byte, order binary.ByteOrder) (metadata.Value, error) {
	tc := f.Timecode
	count := uint64(order.Uint32(raw[tc.CountOffset:]))
	base := float64(order.Uint32(raw[tc.BaseOffset:]))
	if tc.BaseScale > 0 {
		base *= tc.BaseScale
	}
	fps := uint64(math.Round(base))
	if fps == 0 {
		return metadata.Value{}, decodeError(f, "zero time base")
	}
	if count >= secondsPerDay*fps {
		return metadata.Value{}, decodeError(f, fmt.Sprintf("frame count %d exceeds 24h at %d fps", count, fps))
	}

	dropFrame := false
	if tc.FlagOffset >= 0 {
		dropFrame = (order.Uint32(raw[tc.FlagOffset:])>>tc.FlagBit)&1 == 1
	}
	secs := count / fps
	return metadata.String(formatTimecode(secs/3600, secs/60%60, secs%60, count%fps, dropFrame)), nil
}

func formatTimecode(h, m, s, frames uint64, dropFrame bool) string {
	sep := ':'
	if dropFrame {
		sep = ';'
	}
	return fmt.Sprintf("%02d:%02d:%02d%c%02d", h, m, s, sep, frames)
}

// packedBCD formats a 32-bit BCD word, most significant nibble first. An
// all-ones word marks an unset value.
func packedBCD(f schema.FieldSpec, word uint32) (metadata.Value, error) {
	if word == math.MaxUint32 {
		return metadata.String(""), nil
	}

	dropFrame := false
	if f.BCD == schema.BCDTimecode {
		// the high bits of each byte carry flags, not digits
		dropFrame = word&(1<<6) != 0
		word &= 0x3F7F7F3F
	}

	var d [8]byte
	for i := range d {
		nibble := byte(word >> (28 - 4*uint(i)) & 0xF)
		if nibble > 9 {
			return metadata.Value{}, decodeError(f, fmt.Sprintf("invalid BCD digit %X in %08X", nibble, word))
		}
		d[i] = '0' + nibble
	}
	s := string(d[:])

	switch f.BCD {
	case schema.BCDDate:
		return metadata.String(s[0:4] + "/" + s[4:6] + "/" + s[6:8]), nil
	case schema.BCDTime:
		return metadata.String(s[0:2] + ":" + s[2:4] + ":" + s[4:6] + ":" + s[6:8]), nil
	case schema.BCDZone:
		return metadata.String(f.Prefix + s[4:6] + ":" + s[6:8]), nil
	case schema.BCDTimecode:
		sep := ":"
		if dropFrame {
			sep = ";"
		}
		return metadata.String(s[0:2] + ":" + s[2:4] + ":" + s[4:6] + sep + s[6:8]), nil
	default:
		return metadata.Value{}, decodeError(f, fmt.Sprintf("unknown BCD layout %d", f.BCD))
	}
}
