// Package txlog reconciles a dirty hive base image with one or two
// transaction-log sidecar files (.LOG, .LOG1, .LOG2), replaying pending
// writes the way the Windows Configuration Manager would before a hive is
// considered clean.
package txlog

import (
	"encoding/binary"
	"fmt"

	"github.com/duskforge/reghive/internal/format"
)

const (
	// pageSize is the fixed dirty-page granularity used by both log schemes.
	pageSize = 4096

	entryMagicOffset   = 0x00
	entrySizeOffset    = 0x04
	entryFlagsOffset   = 0x08
	entrySeqOffset     = 0x0C
	entryBinsOffset    = 0x10
	entryHashOffset    = 0x14
	entryPageCntOffset = 0x18
	entryDescOffset    = 0x1C

	descriptorSize = 8 // uint32 offset + uint32 size
)

var hvleMagic = []byte{'H', 'v', 'L', 'E'}

// PageWrite describes one dirty page to be copied into the image at
// 4096+Offset for len(Data) bytes.
type PageWrite struct {
	Offset uint32
	Data   []byte
}

// Entry is a single accepted or rejected new-scheme (.LOG1/.LOG2) log record.
type Entry struct {
	Sequence         uint32
	HiveBinsDataSize uint32
	Hash             uint32
	Pages            []PageWrite

	computedHash uint32
}

// hashOK reports whether the entry's stored hash matches its recomputed body hash.
func (e Entry) hashOK() bool { return e.Hash == e.computedHash }

// ParseNewScheme decodes the sequence of HvLE entries in a .LOG1/.LOG2 file.
// The log's leading 4096-byte base-block copy is skipped; callers that need
// it should parse logBytes[:format.HeaderSize] with format.ParseHeader directly.
func ParseNewScheme(logBytes []byte) ([]Entry, error) {
	if len(logBytes) < format.HeaderSize {
		return nil, fmt.Errorf("txlog: log shorter than base block")
	}
	var entries []Entry
	offset := format.HeaderSize
	for offset+entryDescOffset <= len(logBytes) {
		header := logBytes[offset:]
		if len(header) < entryDescOffset {
			break
		}
		if string(header[entryMagicOffset:entryMagicOffset+4]) != string(hvleMagic) {
			break
		}
		size := binary.LittleEndian.Uint32(header[entrySizeOffset:])
		if size < entryDescOffset || offset+int(size) > len(logBytes) {
			return nil, fmt.Errorf("txlog: entry at %d has invalid size %d", offset, size)
		}
		seq := binary.LittleEndian.Uint32(header[entrySeqOffset:])
		bins := binary.LittleEndian.Uint32(header[entryBinsOffset:])
		hash := binary.LittleEndian.Uint32(header[entryHashOffset:])
		pageCount := binary.LittleEndian.Uint32(header[entryPageCntOffset:])

		descStart := entryDescOffset
		descEnd := descStart + int(pageCount)*descriptorSize
		if descEnd > int(size) {
			return nil, fmt.Errorf("txlog: entry at %d has truncated page descriptors", offset)
		}

		pages := make([]PageWrite, 0, pageCount)
		bodyOffset := descEnd
		for i := uint32(0); i < pageCount; i++ {
			d := header[descStart+int(i)*descriptorSize:]
			pageOffset := binary.LittleEndian.Uint32(d)
			pageSizeField := binary.LittleEndian.Uint32(d[4:])
			if bodyOffset+int(pageSizeField) > int(size) {
				return nil, fmt.Errorf("txlog: entry at %d page %d body out of bounds", offset, i)
			}
			pages = append(pages, PageWrite{
				Offset: pageOffset,
				Data:   header[bodyOffset : bodyOffset+int(pageSizeField)],
			})
			bodyOffset += int(pageSizeField)
		}

		bodyForHash := header[entryPageCntOffset:bodyOffset]
		entries = append(entries, Entry{
			Sequence:         seq,
			HiveBinsDataSize: bins,
			Hash:             hash,
			Pages:            pages,
			computedHash:     marvin32(bodyForHash, DefaultSeed),
		})

		offset += int(size)
	}
	return entries, nil
}

// ParseOldScheme decodes a pre-8.1 .LOG file: an embedded base-block copy,
// a dirty-vector bitmap, and contiguous 4096-byte dirty page bodies.
// It returns the sequence number recorded in the log's base block and the
// resolved page writes in ascending page-index order.
func ParseOldScheme(logBytes []byte) (sequence uint32, pages []PageWrite, err error) {
	if len(logBytes) < format.HeaderSize {
		return 0, nil, fmt.Errorf("txlog: old-scheme log shorter than base block")
	}
	head, err := format.ParseHeader(logBytes)
	if err != nil {
		return 0, nil, fmt.Errorf("txlog: old-scheme base block: %w", err)
	}
	numPages := int(head.HiveBinsDataSize) / pageSize
	bitmapLen := (numPages + 7) / 8
	bitmapStart := format.HeaderSize
	if bitmapStart+bitmapLen > len(logBytes) {
		return 0, nil, fmt.Errorf("txlog: old-scheme dirty vector truncated")
	}
	bitmap := logBytes[bitmapStart : bitmapStart+bitmapLen]

	bodyOffset := bitmapStart + bitmapLen
	for i := 0; i < numPages; i++ {
		if bitmap[i/8]&(1<<(uint(i)%8)) == 0 {
			continue
		}
		if bodyOffset+pageSize > len(logBytes) {
			return 0, nil, fmt.Errorf("txlog: old-scheme dirty page %d body truncated", i)
		}
		pages = append(pages, PageWrite{
			Offset: uint32(i * pageSize),
			Data:   logBytes[bodyOffset : bodyOffset+pageSize],
		})
		bodyOffset += pageSize
	}
	return head.PrimarySequence, pages, nil
}

// isNewScheme reports whether logBytes looks like a .LOG1/.LOG2 file (its
// first entry, right after the embedded base block, carries the HvLE magic).
func isNewScheme(logBytes []byte) bool {
	if len(logBytes) < format.HeaderSize+4 {
		return false
	}
	return string(logBytes[format.HeaderSize:format.HeaderSize+4]) == string(hvleMagic)
}
