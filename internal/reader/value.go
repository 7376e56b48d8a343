package reader

import (
	"errors"

	"github.com/duskforge/reghive/internal/format"
	"github.com/duskforge/reghive/internal/strenc"
)

// DecodeValueName converts the raw name stored in a VK record into UTF-8. VK
// names follow the same compression rules as NK names: when the format.VKFlagASCIIName flag is
// set, the name is Windows-1252; otherwise it is UTF-16LE.
func DecodeValueName(vk format.VKRecord) (string, error) {
	if vk.NameLength == 0 {
		return "", nil
	}
	data := vk.NameRaw
	if vk.NameIsASCII() {
		return strenc.DecodeWindows1252(data)
	}
	if len(data)%2 != 0 {
		return "", errors.New("vk name has odd length")
	}
	return strenc.DecodeUTF16LE(data), nil
}

// DecodeUTF16 decodes a REG_SZ/REG_EXPAND_SZ/REG_LINK payload to UTF-8.
func DecodeUTF16(data []byte) (string, error) {
	return strenc.DecodeUTF16(data)
}

// DecodeMultiString decodes a REG_MULTI_SZ payload into its component strings.
func DecodeMultiString(data []byte) ([]string, error) {
	return strenc.DecodeMultiString(data)
}
