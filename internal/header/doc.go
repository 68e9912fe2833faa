// Package header reads the fixed-size metadata block at the start of an
// ARRIRAW container.
//
// The first four bytes must be "ARRI" and the next four hold 0x12345678 in the
// file's byte order. Read stops at the requested header size, so image data is
// never touched.
package header
