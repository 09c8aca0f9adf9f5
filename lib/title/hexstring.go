// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package title

// IsHexString reports whether title is a complete PostScript hex
// string: a '<', any mix of hex digits and whitespace, and a single
// closing '>' that ends the input.
func IsHexString(title []byte) bool {
	if len(title) == 0 || title[0] != '<' {
		return false
	}
	for index := 1; index < len(title); index++ {
		char := title[index]
		if char == '>' {
			return index == len(title)-1
		}
		if !isHexDigit(char) && !isPostScriptSpace(char) {
			return false
		}
	}
	return false
}

// DecodeHexString decodes a hex string accepted by [IsHexString] in
// place and returns the decoded prefix of title. Digit pairs pack high
// nibble first; a trailing unpaired digit is completed with a zero low
// nibble, as the PostScript language reference prescribes.
//
// The result for input that [IsHexString] rejects is unspecified but
// never reads or writes outside title.
func DecodeHexString(title []byte) []byte {
	if len(title) == 0 {
		return title
	}
	written := 0
	var pending byte
	havePending := false
	for index := 1; index < len(title); index++ {
		char := title[index]
		if char == '>' {
			break
		}
		if !isHexDigit(char) {
			continue
		}
		nibble := hexValue(char)
		if havePending {
			title[written] = pending | nibble
			written++
			havePending = false
		} else {
			pending = nibble << 4
			havePending = true
		}
	}
	if havePending {
		title[written] = pending
		written++
	}
	return title[:written]
}

func isHexDigit(char byte) bool {
	return (char >= '0' && char <= '9') ||
		(char >= 'a' && char <= 'f') ||
		(char >= 'A' && char <= 'F')
}

func hexValue(char byte) byte {
	switch {
	case char >= 'a':
		return char - 'a' + 10
	case char >= 'A':
		return char - 'A' + 10
	default:
		return char - '0'
	}
}

// isPostScriptSpace matches the PostScript whitespace characters.
func isPostScriptSpace(char byte) bool {
	switch char {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}
