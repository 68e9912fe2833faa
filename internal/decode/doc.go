// Package decode turns a header block into typed metadata under a schema.
//
// Decode evaluates every field; Fields evaluates only a requested subset and
// the inputs of any derived fields in it, which keeps a malformed field the
// caller did not ask for from failing the file. Both are pure functions of
// their arguments and safe to call from many goroutines with a shared schema.
//
// Byte order comes from the block unless a field pins it. Scaled integers
// become floats rounded to the field's decimals, float32 values are widened
// to their shortest decimal form, and strings lose their NUL padding. Text
// that is not valid UTF-8 is read as ISO-8859-1.
//
// Timecodes come in two shapes. A timecode record holds a frame count, a
// time base in millihertz and a drop-frame bit, and renders as HH:MM:SS:FF
// (or HH:MM:SS;FF when drop-frame). A BCD timecode is a packed word with the
// frames in the low byte. A zero time base or a count of 24 hours or more is
// a decode error.
package decode
