// Package buf provides bounds-checked, endian-aware primitive reads and
// slicing over a region of hive bytes. Every decoder in internal/format sits
// on top of this package so that a malformed offset turns into a caught
// short-read rather than a panic.
package buf

import "encoding/binary"

// Uint16LE decodes a little-endian uint16 from the start of b. A short b
// reads as zero rather than panicking; callers that must distinguish "short"
// from "zero" should check length themselves or use Contains first.
func Uint16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// Uint32LE decodes a little-endian uint32 from the start of b.
func Uint32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// Uint64LE decodes a little-endian uint64 from the start of b.
func Uint64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// Uint32BE decodes a big-endian uint32 from the start of b. Used only for
// REG_DWORD_BIG_ENDIAN value payloads; every other multi-byte hive field is
// little-endian.
func Uint32BE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Int32LE decodes a little-endian int32 from the start of b. Used for cell
// size words, where the sign bit distinguishes allocated from free.
func Int32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}
