package format

import (
	"bytes"
	"fmt"
)

// NKRecord is the decoded fixed-size portion of a node-key cell plus its
// trailing name bytes. An NK cell is the on-disk representation of one
// registry key: its subkeys and values are not embedded here, only the
// offsets and counts needed to go find them.
//
//	Offset  Size  Field
//	0x00    2     'n' 'k'
//	0x02    2     Flags (bit 0x20 => name stored as ASCII)
//	0x04    8     Last write time (FILETIME)
//	0x0C    4     Access bits (Windows 8+, ignored)
//	0x10    4     Parent cell offset
//	0x14    4     Number of subkeys
//	0x18    4     Number of volatile subkeys (ignored)
//	0x1C    4     Offset to subkey list
//	0x20    4     Volatile subkey list offset (ignored)
//	0x24    4     Number of values
//	0x28    4     Offset to value list
//	0x2C    4     Security offset
//	0x30    4     Class name offset
//	0x34    4     Max subkey name length
//	0x38    4     Max subkey class name length
//	0x3C    4     Max value name length
//	0x40    4     Max value data length
//	0x44    4     Work var (ignored)
//	0x48    2     Name length
//	0x4A    2     Class length
//	0x4C    n     Name bytes (ASCII or UTF-16LE)
type NKRecord struct {
	Flags              uint16
	LastWriteRaw       uint64
	ParentOffset       uint32
	SubkeyCount        uint32
	SubkeyListOffset   uint32
	ValueCount         uint32
	ValueListOffset    uint32
	SecurityOffset     uint32
	ClassNameOffset    uint32
	MaxNameLength      uint32
	MaxClassLength     uint32
	MaxValueNameLength uint32
	MaxValueDataLength uint32
	NameLength         uint16
	ClassLength        uint16
	NameRaw            []byte
}

// NameIsCompressed reports whether the key name is stored as single-byte
// (Windows-1252) rather than UTF-16LE.
func (nk NKRecord) NameIsCompressed() bool {
	return nk.Flags&NKFlagCompressedName != 0
}

// DecodeNK decodes a node-key cell payload, bounds-checking every fixed
// field before trusting any offset or count it carries.
func DecodeNK(b []byte) (NKRecord, error) {
	if len(b) < NKMinSize {
		return NKRecord{}, fmt.Errorf("nk: %w (have %d, need %d)", ErrTruncated, len(b), NKMinSize)
	}
	if !bytes.Equal(b[:SignatureSize], NKSignature) {
		return NKRecord{}, fmt.Errorf("nk: %w", ErrSignatureMismatch)
	}

	f := newFieldReader(b, "nk")

	flags := f.u16(NKFlagsOffset, "flags")
	lastWrite := f.u64(NKLastWriteOffset, "lastwrite")
	// NKAccessBitsOffset (Windows 8+ access bits) is not modeled.
	parent := f.u32(NKParentOffset, "parent")

	subkeyCount := f.u32(NKSubkeyCountOffset, "subkey count")
	f.capU32(subkeyCount, MaxSubkeyCount, "subkey count")
	// NKVolSubkeyCountOffset (volatile subkey count) is not modeled.
	subkeyListOff := f.u32(NKSubkeyListOffset, "subkey list")
	// NKVolSubkeyListOffset (volatile subkey list offset) is not modeled.

	valueCount := f.u32(NKValueCountOffset, "value count")
	f.capU32(valueCount, MaxValueCount, "value count")
	valueListOff := f.u32(NKValueListOffset, "value list")

	securityOff := f.u32(NKSecurityOffset, "security")
	classOff := f.u32(NKClassNameOffset, "class name")
	maxNameLen := f.u32(NKMaxNameLenOffset, "max name len")
	maxClassLen := f.u32(NKMaxClassLenOffset, "max class len")
	maxValueNameLen := f.u32(NKMaxValueNameOffset, "max value name len")
	maxValueDataLen := f.u32(NKMaxValueDataOffset, "max value data len")
	// NKWorkVarOffset (scratch field used only by the live kernel) is not modeled.

	nameLen := f.u16(NKNameLenOffset, "name len")
	f.capU16(nameLen, MaxNameLen, "name len")
	classLen := f.u16(NKClassLenOffset, "class len")
	f.capU16(classLen, MaxClassLen, "class len")

	name := f.tail(NKNameOffset, int(nameLen), "name")

	if err := f.failed(); err != nil {
		return NKRecord{}, err
	}

	return NKRecord{
		Flags:              flags,
		LastWriteRaw:       lastWrite,
		ParentOffset:       parent,
		SubkeyCount:        subkeyCount,
		SubkeyListOffset:   subkeyListOff,
		ValueCount:         valueCount,
		ValueListOffset:    valueListOff,
		SecurityOffset:     securityOff,
		ClassNameOffset:    classOff,
		MaxNameLength:      maxNameLen,
		MaxClassLength:     maxClassLen,
		MaxValueNameLength: maxValueNameLen,
		MaxValueDataLength: maxValueDataLen,
		NameLength:         nameLen,
		ClassLength:        classLen,
		NameRaw:            name,
	}, nil
}
