// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package title

// Policy selects which bytes [Sanitize] replaces.
type Policy int

const (
	// Strict replaces every byte outside [A-Za-z0-9+.-] with '_'.
	Strict Policy = iota

	// PermissiveUnicode applies the Strict rule to 7-bit ASCII bytes
	// only. Bytes with the high bit set pass through untouched so
	// that decoded UTF-8 titles keep their non-ASCII characters.
	PermissiveUnicode
)

// Sanitize replaces unsafe bytes of title with '_' in place. The
// length of title never changes. Callers that need the original must
// copy it first.
func Sanitize(title []byte, policy Policy) {
	for index, char := range title {
		if policy == PermissiveUnicode && char >= 0x80 {
			continue
		}
		if !isFilenameSafe(char) {
			title[index] = '_'
		}
	}
}

// SanitizeString is the copying form of [Sanitize].
func SanitizeString(title string, policy Policy) string {
	buffer := []byte(title)
	Sanitize(buffer, policy)
	return string(buffer)
}

func isFilenameSafe(char byte) bool {
	switch {
	case char >= 'a' && char <= 'z':
		return true
	case char >= 'A' && char <= 'Z':
		return true
	case char >= '0' && char <= '9':
		return true
	}
	switch char {
	case '-', '+', '.':
		return true
	}
	return false
}
