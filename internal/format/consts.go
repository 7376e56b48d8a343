// Package format houses low-level decoders for the Windows Registry hive
// file format: the base block, hive bins, and the cell payloads (nk, vk, sk,
// db, and the lf/lh/li/ri subkey-list shapes) nested inside them. Decoders
// here are allocation-light and independent of the public API so that
// higher-level packages can assemble the data into a friendlier shape.
package format

// Cell and record signatures. Every signature is two or four ASCII bytes at
// a fixed offset; decoders reject a cell outright if this doesn't match
// before trusting anything else about its layout.
var (
	REGFSignature = []byte{'r', 'e', 'g', 'f'}
	HBINSignature = []byte{'h', 'b', 'i', 'n'}
	NKSignature   = []byte{'n', 'k'}
	VKSignature   = []byte{'v', 'k'}
	SKSignature   = []byte{'s', 'k'}
	DBSignature   = []byte{'d', 'b'}

	// LFSignature and LHSignature mark subkey lists with a per-entry name
	// hint or hash; LISignature marks a bare list of offsets with neither.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}

	// RISignature marks an indirect list: a list of offsets to further
	// LF/LH lists, used once a key accumulates enough subkeys.
	RISignature = []byte{'r', 'i'}
)

// Sizing and alignment.
const (
	// HeaderSize is the fixed size of the REGF base block: one 4 KiB page
	// in every hive variant seen in practice.
	HeaderSize = 4096

	// HBINHeaderSize is the size of the header preceding a bin's cells.
	HBINHeaderSize = 0x20

	// CellHeaderSize is the signed size word preceding every cell.
	CellHeaderSize = 4

	// HBINAlignment is the 4 KiB boundary every hive bin starts on.
	HBINAlignment = 0x1000

	// CellAlignment is the 8-byte boundary every cell is padded to.
	CellAlignment     = 8
	CellAlignmentMask = CellAlignment - 1
	HBINAlignmentMask = HBINAlignment - 1

	Align16Boundary = 16
	Align16Mask     = Align16Boundary - 1

	// InvalidOffset marks an unused cell-offset field (security, class
	// name, subkey/value lists when a key has none).
	InvalidOffset = 0xFFFFFFFF

	// SignatureSize is the width of a two-byte cell tag (nk, vk, sk, db,
	// lf, lh, li, ri).
	SignatureSize = 2

	// DWORDSize and QWORDSize are the payload widths of REG_DWORD(_BE) and
	// REG_QWORD values.
	DWORDSize = 4
	QWORDSize = 8

	// RIListEstimatedCapacity sizes the initial allocation when a reader
	// flattens an RI list's constituent LF/LH lists into one slice.
	RIListEstimatedCapacity = 100
)

// UTF-16 surrogate-pair constants, used when re-encoding a decoded name back
// to UTF-16LE or when validating surrogate pairing on the way in.
const (
	UTF16HighSurrogateStart = 0xD800
	UTF16HighSurrogateEnd   = 0xDBFF
	UTF16LowSurrogateStart  = 0xDC00
	UTF16LowSurrogateEnd    = 0xDFFF
	UTF16SurrogateBase      = 0x10000
	UTF16ASCIIThreshold     = 0x80
)

// REGF base-block field offsets. Only the fields format.Header actually
// surfaces are named here; the GUIDs, reserved padding, and thaw/boot-
// recovery block that follow are real on-disk fields this revision never
// reads.
const (
	REGFPrimarySeqOffset   = 0x004
	REGFSecondarySeqOffset = 0x008
	REGFTimeStampOffset    = 0x00C // FILETIME, 8 bytes
	REGFMajorVersionOffset = 0x014
	REGFMinorVersionOffset = 0x018
	REGFTypeOffset         = 0x01C // 0 = primary, 1 = alternate
	REGFRootCellOffset     = 0x024 // HCELL_INDEX, relative to the first HBIN
	REGFDataSizeOffset     = 0x028 // sum of all HBIN sizes
	REGFClusterOffset      = 0x02C
	REGFFlagsOffset        = 0x090
	REGFCheckSumOffset     = 0x1FC // XOR of the preceding 508 bytes

	// REGFSupportedMajor/REGFSupportedMinorMin/Max bound the base-block
	// version Windows has ever shipped (major 1, minor 3 through 6); a hive
	// outside this range uses a layout this package does not decode.
	REGFSupportedMajor    = 1
	REGFSupportedMinorMin = 3
	REGFSupportedMinorMax = 6

	REGFSignatureSize = 4

	// Header checksum covers words[0..127), i.e. bytes [0x000, 0x1FC).
	REGFChecksumRegionLen = 508
	REGFChecksumDwords    = 127

	// REGFFlagPendingTransactions set means the kernel had not yet flushed
	// every dirty page to this file when it was last written.
	REGFFlagPendingTransactions = 0x00000001
)

// HBIN (hive bin) header field offsets.
const (
	HBINFileOffsetField = 0x04 // this bin's offset relative to the first HBIN
	HBINSizeOffset      = 0x08 // total size, a multiple of HBINAlignment
)

// NK (node key / registry key) field offsets, relative to the start of the
// cell payload (just past the signature).
const (
	NKFlagsOffset        = 0x02
	NKLastWriteOffset    = 0x04 // FILETIME, 8 bytes
	NKAccessBitsOffset   = 0x0C // Windows 8+ access bits; unread
	NKParentOffset       = 0x10
	NKSubkeyCountOffset  = 0x14
	NKVolSubkeyCountOffset = 0x18 // volatile subkey count; unread
	NKSubkeyListOffset   = 0x1C
	NKVolSubkeyListOffset = 0x20 // volatile subkey list offset; unread
	NKValueCountOffset   = 0x24
	NKValueListOffset    = 0x28
	NKSecurityOffset     = 0x2C
	NKClassNameOffset    = 0x30
	NKMaxNameLenOffset   = 0x34
	NKMaxClassLenOffset  = 0x38
	NKMaxValueNameOffset = 0x3C
	NKMaxValueDataOffset = 0x40
	NKWorkVarOffset      = 0x44 // scratch field used only by the live kernel; unread
	NKNameLenOffset      = 0x48
	NKClassLenOffset     = 0x4A
	NKNameOffset         = 0x4C // start of the inline, variable-length name

	// NKFlagCompressedName set means the name is single-byte (Windows-1252)
	// rather than UTF-16LE.
	NKFlagCompressedName = 0x20

	// NKFixedHeaderSize is the offset where the variable-length name
	// begins, i.e. the size of everything before it.
	NKFixedHeaderSize = NKNameOffset
	NKMinSize         = NKFixedHeaderSize
)

// VK (value key) field offsets, relative to the start of the cell payload.
const (
	VKMinSize       = 0x14
	VKNameLenOffset = 0x02
	VKDataLenOffset = 0x04 // high bit doubles as the inline-data flag
	VKDataOffOffset = 0x08 // cell offset, or the inline payload itself
	VKTypeOffset    = 0x0C
	VKFlagsOffset   = 0x10
	VKNameOffset    = 0x14

	// VKFlagASCIIName set means the name is stored in Windows-1252 rather
	// than UTF-16LE.
	VKFlagASCIIName = 0x0001

	// VKDataInlineBit is the high bit of the data-length field: when set,
	// the low 31 bits are the true length and the payload lives in the
	// DataOffset field itself rather than behind a separate cell.
	VKDataInlineBit  = 0x80000000
	VKDataLengthMask = 0x7FFFFFFF

	// VKFixedHeaderSize is the size of the fixed portion, before the
	// variable-length name.
	VKFixedHeaderSize = VKNameOffset
)

// SK (security descriptor) field offsets, relative to the start of the cell
// payload. Only DescriptorLengthOffset and DescriptorOffset are read; the
// Flink/Blink security-descriptor-list links and the reference count are
// real on-disk fields this revision never interprets, since ACL semantics
// are out of scope.
const (
	SKDescriptorLengthOffset = 0x10
	SKDescriptorOffset       = 0x14

	SKMinSize = SKDescriptorOffset
)

// DB (big data) field offsets, relative to the start of the cell payload.
const (
	DBSignatureOffset = 0x00
	DBCountOffset     = 0x02 // number of data blocks, must be 2..65535
	DBListOffset      = 0x04 // cell offset of the block-offset array
	DBUnknown1Offset  = 0x08 // never read by any known consumer

	DBMinSize = DBUnknown1Offset + 4

	// DBChunkSize is the payload carried by every data block but the last.
	// Windows XP (hive version 1.4) introduced chunked big-data storage for
	// values over 16 KiB; each chunk holds 16,344 bytes.
	DBChunkSize = 16344

	// DBBlockPadding is the alignment slack after a full chunk: the 4-byte
	// size word plus 16,344 bytes of chunk is 16,348 bytes, which 8-byte cell
	// alignment rounds up to 16,352, leaving 4 bytes that are not value data.
	DBBlockPadding = 4
)

// Subkey-list and value-list header layout. li, lf, lh, and ri all share the
// same 4-byte header: a 2-byte signature plus a 2-byte entry count.
const (
	ListHeaderSize = 4

	// OffsetFieldSize is the width of one bare cell-offset entry, used by
	// li lists and value lists.
	OffsetFieldSize = 4

	// LFEntrySize is the width of one lf/lh entry: a cell offset plus a
	// 4-byte name hint or hash this package does not interpret.
	LFEntrySize = 8
)

// Decode sanity ceilings. These guard individual field decodes against a
// corrupt or hostile count/length field driving a huge allocation or an
// unbounded scan; they are independent of, and tighter than, the
// caller-configurable limits in pkg/types (which gate whole-hive traversal
// policy, not a single cell's fields).
const (
	MaxSubkeyCount  = 1 << 20 // generous multiple of the documented ~65535 ceiling
	MaxValueCount   = 1 << 18
	MaxNameLen      = 1 << 13 // bytes; UTF-16LE names are at most 2x the character count
	MaxClassLen     = 1 << 13
	MaxValueDataLen = 256 << 20
)

// Registry value type codes.
// See: https://docs.microsoft.com/en-us/windows/win32/sysinfo/registry-value-types
const (
	REGNone     uint32 = 0
	REGSZ       uint32 = 1
	REGExpandSZ uint32 = 2
	REGBinary   uint32 = 3
	REGDWORD    uint32 = 4

	// REGDWORDBigEndian is the only multi-byte value type format decodes
	// with buf.Uint32BE instead of buf.Uint32LE.
	REGDWORDBigEndian uint32 = 5

	REGLink                     uint32 = 6
	REGMultiSZ                  uint32 = 7
	REGResourceList             uint32 = 8
	REGFullResourceDescriptor   uint32 = 9
	REGResourceRequirementsList uint32 = 10
	REGQWORD                    uint32 = 11
)
