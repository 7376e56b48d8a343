package format

import "errors"

// Sentinel errors every decoder in this package wraps with %w, so callers
// can classify a failure with errors.Is regardless of which cell type or
// field produced it.
var (
	ErrSignatureMismatch = errors.New("format: signature mismatch")
	ErrTruncated         = errors.New("format: truncated buffer")
	ErrFreeCell          = errors.New("format: cell not in use")
	ErrNotFound          = errors.New("format: not found")
	ErrUnsupported       = errors.New("format: unsupported feature")

	// ErrUnsupportedVersion marks a base block whose major/minor version
	// falls outside the range this package's layout assumptions cover.
	ErrUnsupportedVersion = errors.New("format: unsupported hive version")

	// ErrSanityLimit marks a structurally valid but implausible field value
	// (a count or length far past what any real hive would carry) rejected
	// before it can drive an oversized allocation or scan.
	ErrSanityLimit = errors.New("format: sanity limit exceeded")
)
