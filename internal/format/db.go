package format

import "fmt"

// DBRecord is a "db" (Big Data) record: the indirection cell used when a
// value's payload is too large for a single cell and must be split across
// multiple fixed-size data blocks.
//
//	Offset  Size  Field
//	0x00    2     'd' 'b'
//	0x02    2     Number of data blocks (2..65535)
//	0x04    4     Offset to the cell holding the block-offset array
//	0x08    4     Unknown, never read by any known consumer
//
// The block-offset array is itself a flat list of cell offsets, one per data
// block, concatenated in order to reconstruct the value up to the length the
// VK record declares.
type DBRecord struct {
	NumBlocks       uint16
	BlocklistOffset uint32
	Unknown1        uint32
}

// DecodeDB decodes a Big Data cell payload.
func DecodeDB(b []byte) (DBRecord, error) {
	if len(b) < DBMinSize {
		return DBRecord{}, fmt.Errorf("db: %w (need %d bytes, have %d)", ErrTruncated, DBMinSize, len(b))
	}
	if b[DBSignatureOffset] != DBSignature[0] || b[DBSignatureOffset+1] != DBSignature[1] {
		return DBRecord{}, fmt.Errorf("db: %w", ErrSignatureMismatch)
	}

	f := newFieldReader(b, "db")
	rec := DBRecord{
		NumBlocks:       f.u16(DBCountOffset, "count"),
		BlocklistOffset: f.u32(DBListOffset, "blocklist offset"),
		Unknown1:        f.u32(DBUnknown1Offset, "unknown1"),
	}
	if err := f.failed(); err != nil {
		return DBRecord{}, err
	}
	return rec, nil
}

// IsDBRecord reports whether b begins with the "db" signature.
func IsDBRecord(b []byte) bool {
	return len(b) >= SignatureSize && b[0] == DBSignature[0] && b[1] == DBSignature[1]
}
