// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"io/fs"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FileMask is a permission mask written in octal ("0077").
type FileMask fs.FileMode

// Mode returns the mask as permission bits.
func (m FileMask) Mode() fs.FileMode {
	return fs.FileMode(m) & fs.ModePerm
}

func (m FileMask) String() string {
	return fmt.Sprintf("%04o", uint32(m.Mode()))
}

// ParseFileMask parses an octal mask. Values are always read as
// octal, with or without a leading zero.
func ParseFileMask(value string) (FileMask, error) {
	parsed, err := strconv.ParseUint(value, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid octal mask %q", value)
	}
	if parsed > 0o777 {
		return 0, fmt.Errorf("mask %q exceeds 0777", value)
	}
	return FileMask(parsed), nil
}

// UnmarshalYAML reads the mask from its octal text, so an unquoted
// 0077 in the file is the mask 0077 and not decimal 77.
func (m *FileMask) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: mask must be a scalar", node.Line)
	}
	parsed, err := ParseFileMask(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*m = parsed
	return nil
}

// MarshalYAML writes the mask as a quoted octal string.
func (m FileMask) MarshalYAML() (any, error) {
	return m.String(), nil
}
