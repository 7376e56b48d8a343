package format

import (
	"bytes"
	"fmt"

	"github.com/duskforge/reghive/internal/buf"
)

// DecodeSK locates the security-descriptor bytes inline in an SK cell and
// returns their absolute offset (relative to the hive buffer, via cellOff)
// and length. The ACL itself is opaque to this package; callers that need
// to interpret it copy the region out verbatim.
//
// SK layout (_CM_KEY_SECURITY):
//
//	Offset  Size  Description
//	0x00    2     's' 'k' signature
//	0x02    2     Reserved (unused)
//	0x04    4     Flink - forward link in security descriptor list
//	0x08    4     Blink - backward link in security descriptor list
//	0x0C    4     ReferenceCount - number of keys using this descriptor
//	0x10    4     DescriptorLength - length of descriptor data in bytes
//	0x14    ...   Descriptor - SECURITY_DESCRIPTOR_RELATIVE data (inline)
func DecodeSK(b []byte, cellOff int) (start, length int, err error) {
	if len(b) < SKMinSize {
		return 0, 0, fmt.Errorf("sk: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:SignatureSize], SKSignature) {
		return 0, 0, fmt.Errorf("sk: %w", ErrSignatureMismatch)
	}

	descLen, err := CheckedReadU32(b, SKDescriptorLengthOffset)
	if err != nil {
		return 0, 0, fmt.Errorf("sk descriptor length: %w", err)
	}
	if _, spanErr := buf.Span(len(b), SKDescriptorOffset, int(descLen), 1); spanErr != nil {
		return 0, 0, fmt.Errorf("sk descriptor: %w", ErrTruncated)
	}
	return cellOff + SKDescriptorOffset, int(descLen), nil
}
