package reader

import (
	"errors"

	"github.com/duskforge/reghive/internal/format"
	"github.com/duskforge/reghive/internal/strenc"
)

// DecodeKeyName converts the NK name encoding into UTF-8.
func DecodeKeyName(nk format.NKRecord) (string, error) {
	if nk.NameLength == 0 {
		return "", nil
	}
	data := nk.NameRaw
	if nk.NameIsCompressed() {
		return strenc.DecodeWindows1252(data)
	}
	if len(data)%2 != 0 {
		return "", errors.New("nk name has odd length")
	}
	return strenc.DecodeUTF16LE(data), nil
}

// EncodeKeyName converts a UTF-8 string to Windows-1252 bytes for compressed names.
// This is the reverse of DecodeKeyName for compressed names.
func EncodeKeyName(name string) ([]byte, error) {
	return strenc.EncodeWindows1252(name)
}
