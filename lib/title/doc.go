// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package title turns document titles into safe output filename stems.
//
// Titles come from two places: the %%Title: directive of a PostScript
// job (captured by lib/spool) and the title the print server supplied
// on the command line. Both are adversary-controlled. [Normalize] runs
// a title through a fixed sequence of narrowing stages: character
// sanitization ([Sanitize]), optional decoding of PostScript hex
// strings ([IsHexString], [DecodeHexString]), filler and delimiter
// stripping, removal of directory components and short extensions,
// and truncation. An empty result rejects the title. [Stem] tries both
// sources in the configured order, synthesizes an "untitled" stem when
// both are rejected, and applies the job label.
//
// A stem produced by this package never contains a path separator,
// is never empty, and is bounded by the configured truncation length
// plus the job label.
package title
