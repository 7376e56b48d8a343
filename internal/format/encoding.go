package format

import "encoding/binary"

// Put16/Put32/Put64 write a little-endian integer at off, the inverse of the
// Uint16LE/Uint32LE/Uint64LE reads the decoders in this package use. They
// exist for the writer: serializing a hive means poking a handful of fields
// (a refreshed timestamp, a recomputed checksum) back into an existing
// image without re-deriving the whole cell layout.
func Put16(b []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(b[off:off+2], v)
}

func Put32(b []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(b[off:off+4], v)
}

func Put64(b []byte, off int, v uint64) {
	binary.LittleEndian.PutUint64(b[off:off+8], v)
}

// PutI32 writes a signed cell-size word; hive cell headers store size as a
// two's-complement int32 where negative means "allocated".
func PutI32(b []byte, off int, v int32) {
	Put32(b, off, uint32(v))
}
