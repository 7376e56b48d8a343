package format

import (
	"bytes"
	"fmt"
)

// Header is the decoded base block: the fixed 4096-byte page at the start of
// every hive file. Fields the reader and log engine never consult (access
// bits, the embedded GUIDs, the thaw/boot-recovery block) are left in the
// file untouched but not surfaced here.
//
//	Offset  Size  Description
//	------  ----  ----------------------------------------------------------
//	 0x000   4    'r' 'e' 'g' 'f'
//	 0x004   4    Primary sequence number
//	 0x008   4    Secondary sequence number
//	 0x00C   8    Last write timestamp (FILETIME)
//	 0x014   4    Major version
//	 0x018   4    Minor version
//	 0x01C   4    Type (0 = primary, 1 = alternate)
//	 0x024   4    Offset (relative to first HBIN) of the root cell (NK)
//	 0x028   4    Total size of HBIN data
//	 0x02C   4    Clustering factor (rarely used)
//	 0x090   4    Flags (bit 0 = pending transactions, bit 1 = differencing hive)
//
// Windows stores the header in little-endian form.
type Header struct {
	PrimarySequence   uint32
	SecondarySequence uint32
	LastWriteRaw      uint64
	MajorVersion      uint32
	MinorVersion      uint32
	Type              uint32
	RootCellOffset    uint32
	HiveBinsDataSize  uint32
	ClusteringFactor  uint32
	Flags             uint32
}

// Clean reports whether the two sequence numbers agree, meaning no dirty
// pages remain to be reconciled from a transaction log.
func (h Header) Clean() bool {
	return h.PrimarySequence == h.SecondarySequence
}

// PendingTransactions reports whether the kernel marked this hive as having
// unflushed log entries at the time it was last written.
func (h Header) PendingTransactions() bool {
	return h.Flags&REGFFlagPendingTransactions != 0
}

// ParseHeader validates and decodes a REGF base block.
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("regf header: %w", ErrTruncated)
	}
	if !bytes.Equal(b[:REGFSignatureSize], REGFSignature) {
		return Header{}, fmt.Errorf("regf header: %w", ErrSignatureMismatch)
	}

	f := newFieldReader(b, "regf header")
	h := Header{
		PrimarySequence:   f.u32(REGFPrimarySeqOffset, "primary sequence"),
		SecondarySequence: f.u32(REGFSecondarySeqOffset, "secondary sequence"),
		LastWriteRaw:      f.u64(REGFTimeStampOffset, "last write"),
		MajorVersion:      f.u32(REGFMajorVersionOffset, "major version"),
		MinorVersion:      f.u32(REGFMinorVersionOffset, "minor version"),
		Type:              f.u32(REGFTypeOffset, "type"),
		RootCellOffset:    f.u32(REGFRootCellOffset, "root cell"),
		HiveBinsDataSize:  f.u32(REGFDataSizeOffset, "hive bins data size"),
		ClusteringFactor:  f.u32(REGFClusterOffset, "clustering factor"),
		Flags:             f.u32(REGFFlagsOffset, "flags"),
	}
	if err := f.failed(); err != nil {
		return Header{}, err
	}
	return h, nil
}

// SupportedVersion reports whether major/minor falls within the base-block
// version range this package's field layout assumptions were written
// against (major 1, minor 3 through 6 - every version Windows has shipped).
func SupportedVersion(major, minor uint32) bool {
	return major == REGFSupportedMajor && minor >= REGFSupportedMinorMin && minor <= REGFSupportedMinorMax
}

// ValidateVersion returns ErrUnsupportedVersion if h's version is outside
// SupportedVersion's range. Kept separate from ParseHeader so that callers
// parsing a base block embedded in a transaction-log entry (which share the
// struct layout but not this opening-time policy) aren't forced through it.
func (h Header) ValidateVersion() error {
	if !SupportedVersion(h.MajorVersion, h.MinorVersion) {
		return fmt.Errorf("regf header: %w (major=%d minor=%d)", ErrUnsupportedVersion, h.MajorVersion, h.MinorVersion)
	}
	return nil
}
