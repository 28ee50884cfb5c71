package radio

import (
	"fmt"
	"strings"
)

// CompressAddr strips the colon separators from a hardware address, the
// compact form addresses take inside payment URIs.
func CompressAddr(addr string) string {
	return strings.ReplaceAll(addr, ":", "")
}

// DecompressAddr expands a compressed hardware address back to its canonical
// colon separated upper case form. Compressed addresses arrive inside
// merchant supplied payment URIs, so malformed input is a data error, never
// a panic.
func DecompressAddr(compressed string) (string, error) {
	if compressed == "" {
		return "", fmt.Errorf("empty radio address")
	}
	if len(compressed)%2 != 0 {
		return "", fmt.Errorf("radio address %q has an odd number of digits", compressed)
	}

	var b strings.Builder
	b.Grow(len(compressed) + len(compressed)/2 - 1)
	for i := 0; i < len(compressed); i++ {
		if i > 0 && i%2 == 0 {
			b.WriteByte(':')
		}
		c := compressed[i]
		switch {
		case c >= '0' && c <= '9', c >= 'A' && c <= 'F':
			b.WriteByte(c)
		case c >= 'a' && c <= 'f':
			b.WriteByte(c - 'a' + 'A')
		default:
			return "", fmt.Errorf("radio address %q is not hexadecimal", compressed)
		}
	}
	return b.String(), nil
}
