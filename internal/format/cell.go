package format

import (
	"errors"
	"fmt"

	"github.com/duskforge/reghive/internal/buf"
)

// Cell represents a single allocation (free or in-use) within an HBIN.
//
// Cell header layout (little-endian):
//
//	Offset  Size  Description
//	0x00    4     Signed size. Negative => allocated, positive => free.
//	              The absolute value includes the 4-byte header.
//	0x04    ...   Payload. First two bytes form the record tag when allocated.
type Cell struct {
	Offset int  // Offset relative to the start of the hive data slice
	Size   int  // Total size including header
	Free   bool // True when the cell is marked as free
	Tag    [SignatureSize]byte
	Data   []byte // Payload bytes (alias of underlying buffer)
}

// cellFraming decodes the signed size word at the start of a cell header
// into an absolute byte count plus the allocation bit.
func cellFraming(sizeWord []byte) (size int, allocated bool, err error) {
	raw := buf.Int32LE(sizeWord)
	switch {
	case raw == 0:
		return 0, false, errors.New("cell: zero length")
	case int(raw)%CellAlignment != 0:
		return 0, false, errors.New("cell: size not a multiple of 8")
	case raw < 0:
		return int(-raw), true, nil
	default:
		return int(raw), false, nil
	}
}

func cellTag(payload []byte) [SignatureSize]byte {
	var tag [SignatureSize]byte
	if len(payload) >= SignatureSize {
		tag[0], tag[1] = payload[0], payload[1]
	}
	return tag
}

// NextCell decodes the cell at offset within the HBIN and returns the cell
// plus the offset of the following cell in the same HBIN. The caller must
// ensure offset points to the start of a cell header.
func NextCell(b []byte, h HBIN, off int) (Cell, int, error) {
	if off < 0 || off+CellHeaderSize > len(b) {
		return Cell{}, 0, fmt.Errorf("cell: %w", ErrTruncated)
	}
	if off < int(h.FileOffset)+HBINHeaderSize || off >= int(h.FileOffset)+int(h.Size) {
		return Cell{}, 0, fmt.Errorf("cell: offset %d outside hbin", off)
	}
	size, allocated, err := cellFraming(b[off:])
	if err != nil {
		return Cell{}, 0, err
	}
	if size < CellHeaderSize {
		return Cell{}, 0, fmt.Errorf("cell: declared size too small (%d)", size)
	}
	next := off + size
	if next > int(h.FileOffset)+int(h.Size) {
		return Cell{}, 0, fmt.Errorf("cell: %w", ErrTruncated)
	}
	payload := b[off+CellHeaderSize : off+size]
	return Cell{
		Offset: off,
		Size:   size,
		Free:   !allocated,
		Tag:    cellTag(payload),
		Data:   payload,
	}, next, nil
}

// ParseCell decodes the single cell occupying the whole of b, for callers
// that have already sliced out one cell and don't need HBIN-relative bounds.
func ParseCell(b []byte) (Cell, error) {
	if len(b) < CellHeaderSize {
		return Cell{}, fmt.Errorf("cell: %w", ErrTruncated)
	}
	size, allocated, err := cellFraming(b)
	if err != nil {
		return Cell{}, err
	}
	if size < CellHeaderSize || size > len(b) {
		return Cell{}, fmt.Errorf("cell: %w", ErrTruncated)
	}
	payload := b[CellHeaderSize:size]
	return Cell{
		Offset: 0,
		Size:   size,
		Free:   !allocated,
		Tag:    cellTag(payload),
		Data:   payload,
	}, nil
}
