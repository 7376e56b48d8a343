package format

import (
	"bytes"
	"fmt"
)

// VKRecord is the decoded fixed-size header of a value-key cell plus its
// trailing name bytes. A VK cell names one registry value and points at
// (or, for small payloads, embeds) its data.
type VKRecord struct {
	NameLength uint16
	DataLength uint32
	DataOffset uint32
	Type       uint32
	Flags      uint16
	NameRaw    []byte
}

// NameIsASCII reports whether the name is stored as ANSI bytes (flag 0x01).
func (vk VKRecord) NameIsASCII() bool {
	return vk.Flags&VKFlagASCIIName != 0
}

// DataInline reports whether the value's data lives inside DataOffset rather
// than behind a separate cell.
func (vk VKRecord) DataInline() bool {
	return vk.DataLength&VKDataInlineBit != 0
}

// InlineLength returns the data length, masking off the inline-storage bit
// when DataInline is true.
func (vk VKRecord) InlineLength() int {
	if !vk.DataInline() {
		return int(vk.DataLength)
	}
	return int(vk.DataLength & VKDataLengthMask)
}

// DecodeVK decodes a value-key cell payload, bounds-checking every fixed
// field before trusting any offset or length it carries.
func DecodeVK(b []byte) (VKRecord, error) {
	if len(b) < VKMinSize {
		return VKRecord{}, fmt.Errorf("vk: %w (have %d, need %d)", ErrTruncated, len(b), VKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], VKSignature) {
		return VKRecord{}, fmt.Errorf("vk: %w", ErrSignatureMismatch)
	}

	f := newFieldReader(b, "vk")

	nameLen := f.u16(VKNameLenOffset, "name len")
	f.capU16(nameLen, MaxNameLen, "name len")

	dataLen := f.u32(VKDataLenOffset, "data len")
	f.capU32(dataLen&VKDataLengthMask, MaxValueDataLen, "data len")

	dataOff := f.u32(VKDataOffOffset, "data off")
	valType := f.u32(VKTypeOffset, "type")
	flags := f.u16(VKFlagsOffset, "flags")

	name := f.tail(VKNameOffset, int(nameLen), "name")

	if err := f.failed(); err != nil {
		return VKRecord{}, err
	}

	return VKRecord{
		NameLength: nameLen,
		DataLength: dataLen,
		DataOffset: dataOff,
		Type:       valType,
		Flags:      flags,
		NameRaw:    name,
	}, nil
}
