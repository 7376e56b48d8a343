package format

import (
	"fmt"

	"github.com/duskforge/reghive/internal/buf"
)

// HeaderChecksum computes the REGF base block checksum: the XOR of the first
// 127 little-endian dwords (offsets 0x000..0x1FB). The checksum field itself,
// at 0x1FC, is excluded from the computation.
//
// The kernel remaps the degenerate XOR results 0 and 0xFFFFFFFF to 1 and
// 0xFFFFFFFE respectively, since both values are reserved to mean
// "checksum not yet computed" and "checksum deliberately invalid".
func HeaderChecksum(b []byte) (uint32, error) {
	if len(b) < REGFChecksumRegionLen+4 {
		return 0, fmt.Errorf("header checksum: %w", ErrTruncated)
	}
	var sum uint32
	for i := 0; i < REGFChecksumDwords; i++ {
		sum ^= buf.Uint32LE(b[i*4:])
	}
	switch sum {
	case 0:
		return 1, nil
	case 0xFFFFFFFF:
		return 0xFFFFFFFE, nil
	default:
		return sum, nil
	}
}

// VerifyHeaderChecksum reports whether the checksum stored at REGFCheckSumOffset
// matches the computed checksum of the preceding 508 bytes.
func VerifyHeaderChecksum(b []byte) (bool, error) {
	if len(b) < REGFCheckSumOffset+4 {
		return false, fmt.Errorf("header checksum: %w", ErrTruncated)
	}
	want, err := HeaderChecksum(b)
	if err != nil {
		return false, err
	}
	got := buf.Uint32LE(b[REGFCheckSumOffset:])
	return want == got, nil
}

// PutHeaderChecksum recomputes and writes the checksum for a base block in place.
func PutHeaderChecksum(b []byte) error {
	if len(b) < REGFCheckSumOffset+4 {
		return fmt.Errorf("header checksum: %w", ErrTruncated)
	}
	sum, err := HeaderChecksum(b)
	if err != nil {
		return err
	}
	b[REGFCheckSumOffset+0] = byte(sum)
	b[REGFCheckSumOffset+1] = byte(sum >> 8)
	b[REGFCheckSumOffset+2] = byte(sum >> 16)
	b[REGFCheckSumOffset+3] = byte(sum >> 24)
	return nil
}
