package format

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/duskforge/reghive/internal/buf"
)

// decodeOffsetArray reads count entries of stride bytes each from b, taking
// the leading uint32 of every entry as a cell offset. LI and the value list
// use stride==OffsetFieldSize (a bare offset); LF/LH use stride==LFEntrySize
// (an offset followed by a name hint or hash the caller doesn't need).
func decodeOffsetArray(b []byte, count uint32, stride int) ([]uint32, error) {
	need, ok := buf.SafeMul(int(count), stride)
	if !ok || len(b) < need {
		return nil, fmt.Errorf("offset array: %w", ErrTruncated)
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = buf.Uint32LE(b[i*stride:])
	}
	return out, nil
}

// DecodeSubkeyList extracts child NK offsets from a subkey-list cell (li,
// lf, or lh). lf/lh additionally carry a per-entry name hint or hash, which
// callers ignore here since lookups in this package are linear by name.
func DecodeSubkeyList(b []byte, expected uint32) ([]uint32, error) {
	if len(b) < ListHeaderSize {
		return nil, fmt.Errorf("subkey list: %w", ErrTruncated)
	}
	sig := b[:SignatureSize]
	count := uint32(buf.Uint16LE(b[SignatureSize:ListHeaderSize]))
	if expected != 0 && expected < count {
		count = expected
	}
	switch {
	case bytes.Equal(sig, LISignature):
		return decodeOffsetArray(b[ListHeaderSize:], count, OffsetFieldSize)
	case bytes.Equal(sig, LFSignature), bytes.Equal(sig, LHSignature):
		return decodeOffsetArray(b[ListHeaderSize:], count, LFEntrySize)
	default:
		return nil, fmt.Errorf("subkey list: %w", ErrUnsupported)
	}
}

// IsRIList reports whether b begins with an RI (indirect) subkey-list
// signature. RI lists fan out to multiple LF/LH lists when a key has enough
// subkeys that a single direct list would be unwieldy.
func IsRIList(b []byte) bool {
	if len(b) < SignatureSize {
		return false
	}
	return bytes.Equal(b[:SignatureSize], RISignature)
}

// DecodeRIList decodes an RI list into the offsets of its constituent LF/LH
// lists; the caller is responsible for fetching and decoding each one.
func DecodeRIList(b []byte) ([]uint32, error) {
	if len(b) < ListHeaderSize {
		return nil, fmt.Errorf("ri list: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], RISignature) {
		return nil, errors.New("ri list: invalid signature")
	}
	count := uint32(buf.Uint16LE(b[SignatureSize:ListHeaderSize]))
	return decodeOffsetArray(b[ListHeaderSize:], count, OffsetFieldSize)
}

// DecodeValueList decodes the flat array of VK cell offsets referenced by an
// NK's value list.
func DecodeValueList(b []byte, count uint32) ([]uint32, error) {
	if count == 0 {
		return nil, nil
	}
	return decodeOffsetArray(b, count, OffsetFieldSize)
}
