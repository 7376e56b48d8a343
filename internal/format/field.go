package format

import (
	"fmt"

	"github.com/duskforge/reghive/internal/buf"
)

// CheckedReadU16 reads a little-endian uint16 at off, failing instead of
// panicking when off+2 runs past the end of b.
func CheckedReadU16(b []byte, off int) (uint16, error) {
	v, ok := buf.Sub(b, off, 2)
	if !ok {
		return 0, fmt.Errorf("%w (want 2 bytes at %d, have %d)", ErrTruncated, off, len(b))
	}
	return buf.Uint16LE(v), nil
}

// CheckedReadU32 reads a little-endian uint32 at off, failing instead of
// panicking when off+4 runs past the end of b.
func CheckedReadU32(b []byte, off int) (uint32, error) {
	v, ok := buf.Sub(b, off, 4)
	if !ok {
		return 0, fmt.Errorf("%w (want 4 bytes at %d, have %d)", ErrTruncated, off, len(b))
	}
	return buf.Uint32LE(v), nil
}

// CheckedReadU64 reads a little-endian uint64 at off, failing instead of
// panicking when off+8 runs past the end of b.
func CheckedReadU64(b []byte, off int) (uint64, error) {
	v, ok := buf.Sub(b, off, 8)
	if !ok {
		return 0, fmt.Errorf("%w (want 8 bytes at %d, have %d)", ErrTruncated, off, len(b))
	}
	return buf.Uint64LE(v), nil
}

// fieldReader walks a sequence of fixed-offset fields in a cell payload,
// latching the first error so a decoder can read a whole record without an
// if-err-return after every field. Once err is set, every further read
// becomes a no-op that returns the zero value.
type fieldReader struct {
	b    []byte
	cell string
	err  error
}

func newFieldReader(b []byte, cell string) *fieldReader {
	return &fieldReader{b: b, cell: cell}
}

func (r *fieldReader) u16(off int, label string) uint16 {
	if r.err != nil {
		return 0
	}
	v, err := CheckedReadU16(r.b, off)
	if err != nil {
		r.err = fmt.Errorf("%s %s: %w", r.cell, label, err)
	}
	return v
}

func (r *fieldReader) u32(off int, label string) uint32 {
	if r.err != nil {
		return 0
	}
	v, err := CheckedReadU32(r.b, off)
	if err != nil {
		r.err = fmt.Errorf("%s %s: %w", r.cell, label, err)
	}
	return v
}

func (r *fieldReader) u64(off int, label string) uint64 {
	if r.err != nil {
		return 0
	}
	v, err := CheckedReadU64(r.b, off)
	if err != nil {
		r.err = fmt.Errorf("%s %s: %w", r.cell, label, err)
	}
	return v
}

// capU32 applies a sanity ceiling to the most recently read u32 field,
// latching a wrapped ErrSanityLimit when it is exceeded. It is a no-op once
// an earlier error has already latched.
func (r *fieldReader) capU32(v uint32, limit uint32, label string) {
	if r.err != nil {
		return
	}
	if v > limit {
		r.err = fmt.Errorf("%s %s %d exceeds limit %d: %w", r.cell, label, v, limit, ErrSanityLimit)
	}
}

func (r *fieldReader) capU16(v uint16, limit int, label string) {
	if r.err != nil {
		return
	}
	if int(v) > limit {
		r.err = fmt.Errorf("%s %s %d exceeds limit %d: %w", r.cell, label, v, limit, ErrSanityLimit)
	}
}

func (r *fieldReader) failed() error {
	return r.err
}

// tail carves the trailing variable-length region [base, base+n) out of the
// payload, latching a truncation error instead of returning a slice that
// overruns b.
func (r *fieldReader) tail(base, n int, label string) []byte {
	if r.err != nil {
		return nil
	}
	s, ok := buf.Sub(r.b, base, n)
	if !ok {
		r.err = fmt.Errorf("%s %s: %w (need %d bytes from %d, have %d)",
			r.cell, label, ErrTruncated, n, base, len(r.b))
		return nil
	}
	return s
}
