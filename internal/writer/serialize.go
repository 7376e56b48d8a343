// Package writer re-emits an in-memory hive image to its on-disk form: a
// trimmed header-plus-bins byte count, a refreshed base-block checksum, and
// an atomic write to the destination sink.
package writer

import (
	"fmt"
	"time"

	"github.com/duskforge/reghive/internal/format"
)

// Serialize trims image to exactly 4096+HiveBinsDataSize bytes, optionally
// stamps a new last-write timestamp into the header, and recomputes the
// base-block checksum. It never mutates image; it returns a fresh copy sized
// to the declared on-disk length.
func Serialize(image []byte, timestamp time.Time) ([]byte, error) {
	head, err := format.ParseHeader(image)
	if err != nil {
		return nil, fmt.Errorf("serialize hive: %w", err)
	}

	want := format.HeaderSize + int(head.HiveBinsDataSize)
	if want > len(image) {
		return nil, fmt.Errorf("serialize hive: declared size %d exceeds image length %d", want, len(image))
	}
	out := make([]byte, want)
	copy(out, image[:want])

	if !timestamp.IsZero() {
		format.Put64(out, format.REGFTimeStampOffset, format.TimeToFiletime(timestamp))
	}

	if err := format.PutHeaderChecksum(out); err != nil {
		return nil, fmt.Errorf("serialize hive: %w", err)
	}
	return out, nil
}
