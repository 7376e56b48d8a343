// Package strenc decodes the two on-disk string encodings used by registry
// hives: compressed (Windows-1252/Latin-1) names and UTF-16LE names and
// string values.
package strenc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/duskforge/reghive/internal/format"
)

// IsASCII reports whether every byte in data is below 0x80. ASCII bytes are
// encoded identically in Windows-1252 and UTF-8, so callers can skip the
// charmap decoder entirely on this path.
func IsASCII(data []byte) bool {
	for _, b := range data {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

// DecodeWindows1252 converts compressed (Windows-1252) name bytes to UTF-8,
// taking the ASCII fast path when possible.
func DecodeWindows1252(data []byte) (string, error) {
	if IsASCII(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode windows-1252: %w", err)
	}
	return string(decoded), nil
}

// EncodeWindows1252 converts a UTF-8 string back to Windows-1252 bytes, the
// inverse of DecodeWindows1252.
func EncodeWindows1252(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode windows-1252: %w", err)
	}
	return encoded, nil
}

// DecodeUTF16LE decodes UTF-16LE bytes to a UTF-8 string without an
// intermediate []uint16 allocation. Invalid or orphaned surrogates decode to
// U+FFFD via utf8.EncodeRune/strings.Builder.WriteRune rather than failing.
func DecodeUTF16LE(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	// Fast path: data is all-ASCII UTF-16LE, i.e. every code unit is [b, 0x00].
	allASCII := len(data)%2 == 0
	if allASCII {
		for i := 0; i < len(data); i += 2 {
			if data[i+1] != 0 || data[i] >= format.UTF16ASCIIThreshold {
				allASCII = false
				break
			}
		}
	}
	if allASCII {
		var b strings.Builder
		b.Grow(len(data) / 2)
		for i := 0; i < len(data); i += 2 {
			b.WriteByte(data[i])
		}
		return b.String()
	}

	var b strings.Builder
	b.Grow(len(data))
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8
		if r >= format.UTF16HighSurrogateStart && r <= format.UTF16HighSurrogateEnd && i+3 < len(data) {
			r2 := rune(data[i+2]) | rune(data[i+3])<<8
			if r2 >= format.UTF16LowSurrogateStart && r2 <= format.UTF16LowSurrogateEnd {
				r = format.UTF16SurrogateBase + ((r-format.UTF16HighSurrogateStart)<<10 | (r2 - format.UTF16LowSurrogateStart))
				i += 2
			}
		}
		b.WriteRune(r)
	}
	return b.String()
}

// DecodeUTF16LEToBytes writes the UTF-8 decoding of data directly into out,
// returning the number of bytes written. It stops rather than growing out if
// the buffer is too small, for callers that pre-size a scratch buffer on a
// hot path.
func DecodeUTF16LEToBytes(data []byte, out []byte) int {
	outIdx := 0
	for i := 0; i+1 < len(data); i += 2 {
		r := rune(data[i]) | rune(data[i+1])<<8
		if r >= format.UTF16HighSurrogateStart && r <= format.UTF16HighSurrogateEnd && i+3 < len(data) {
			r2 := rune(data[i+2]) | rune(data[i+3])<<8
			if r2 >= format.UTF16LowSurrogateStart && r2 <= format.UTF16LowSurrogateEnd {
				r = format.UTF16SurrogateBase + ((r-format.UTF16HighSurrogateStart)<<10 | (r2 - format.UTF16LowSurrogateStart))
				i += 2
			}
		}
		if outIdx+utf8.RuneLen(r) > len(out) {
			break
		}
		outIdx += utf8.EncodeRune(out[outIdx:], r)
	}
	return outIdx
}

// DecodeUTF16 decodes a NUL-terminated or unterminated UTF-16LE string
// value, stripping at most one trailing NUL code unit.
func DecodeUTF16(data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	if len(data)%2 != 0 {
		return "", errors.New("utf16 string has odd length")
	}
	if len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}
	return DecodeUTF16LE(data), nil
}

// DecodeMultiString decodes a REG_MULTI_SZ payload: NUL-separated UTF-16LE
// strings terminated by an empty (double-NUL) element, which is dropped.
func DecodeMultiString(data []byte) ([]string, error) {
	if len(data)%2 != 0 {
		return nil, errors.New("multisz has odd length")
	}
	if len(data) < 2 || data[len(data)-1] != 0 || data[len(data)-2] != 0 {
		return nil, errors.New("multisz missing terminator")
	}
	var result []string
	start := 0
	for i := 0; i < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			if i == start {
				// Empty element: drop it and keep scanning for more strings
				// after it instead of treating it as the list terminator.
				start = i + 2
				continue
			}
			s, err := DecodeUTF16(data[start:i])
			if err != nil {
				return nil, err
			}
			result = append(result, s)
			start = i + 2
		}
	}
	return result, nil
}
