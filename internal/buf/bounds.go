package buf

import (
	"fmt"
	"math"
)

// SafeAdd adds a and b, reporting ok = false instead of wrapping when the
// result would overflow the platform int range.
func SafeAdd(a, b int) (int, bool) {
	if b > 0 && a > math.MaxInt-b {
		return 0, false
	}
	if b < 0 && a < math.MinInt-b {
		return 0, false
	}
	return a + b, true
}

// SafeMul multiplies a and b, reporting ok = false instead of wrapping when
// the result would overflow. Used before trusting an on-disk count*stride
// computation enough to slice with it.
func SafeMul(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	product := a * b
	if product/b != a {
		return 0, false
	}
	return product, true
}

// Span computes the byte range [offset, offset+count*stride) that a packed
// array of count fixed-size elements would occupy, failing closed (an error,
// not a wrapped or truncated range) on a negative input, an overflowing
// multiplication, or an end past bufLen.
func Span(bufLen, offset, count, stride int) (end int, err error) {
	if offset < 0 {
		return 0, fmt.Errorf("buf: negative offset %d", offset)
	}
	if count < 0 {
		return 0, fmt.Errorf("buf: negative count %d", count)
	}
	if stride < 0 {
		return 0, fmt.Errorf("buf: negative stride %d", stride)
	}
	size, ok := SafeMul(count, stride)
	if !ok {
		return 0, fmt.Errorf("buf: count=%d * stride=%d overflows", count, stride)
	}
	end, ok = SafeAdd(offset, size)
	if !ok {
		return 0, fmt.Errorf("buf: offset=%d + size=%d overflows", offset, size)
	}
	if end > bufLen {
		return 0, fmt.Errorf("buf: span end %d exceeds buffer length %d", end, bufLen)
	}
	return end, nil
}

// Sub returns the sub-slice b[off:off+n], or ok=false if it would run past
// either end of b.
func Sub(b []byte, off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off > len(b) {
		return nil, false
	}
	end, ok := SafeAdd(off, n)
	if !ok || end > len(b) {
		return nil, false
	}
	return b[off:end], true
}

// Contains reports whether b[off:off+n] lies entirely within b.
func Contains(b []byte, off, n int) bool {
	_, ok := Sub(b, off, n)
	return ok
}
