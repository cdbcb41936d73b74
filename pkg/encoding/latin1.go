// Package encoding provides text decoding utilities for legacy game asset
// files, whose fixed-size name fields are Latin-1 encoded.
package encoding

import (
	"bytes"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Latin1ToUTF8 converts ISO 8859-1 encoded bytes to a UTF-8 string.
// Returns the input reinterpreted byte-for-byte if decoding fails.
func Latin1ToUTF8(data []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// UTF8ToLatin1 converts a UTF-8 string to ISO 8859-1 bytes.
// Characters outside Latin-1 are replaced by the encoder's substitute.
func UTF8ToLatin1(s string) []byte {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return []byte(s)
	}
	return encoded
}

// TrimNullBytes removes trailing null bytes from a byte slice.
func TrimNullBytes(data []byte) []byte {
	return bytes.TrimRight(data, "\x00")
}

// FixedString decodes a fixed-size Latin-1 field: the string ends at the
// first null byte, and surrounding whitespace is stripped.
func FixedString(data []byte) string {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		data = data[:idx]
	}
	return strings.TrimSpace(Latin1ToUTF8(data))
}

// FixedBytes encodes a string into a fixed-size Latin-1 field, padding
// with null bytes and truncating if it does not fit.
func FixedBytes(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToLatin1(s))
	return result
}
