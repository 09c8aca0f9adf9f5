// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package spool

import (
	"bufio"
	"errors"
	"io"
)

// MaxLineLength is the longest line returned by a single ReadLine call,
// terminator included. Longer lines are split across calls.
const MaxLineLength = 4095

// SplitMode selects the line terminators recognized by [LineReader].
type SplitMode int

const (
	// SplitLF ends lines at LF only.
	SplitLF SplitMode = iota

	// SplitAny ends lines at LF, CR, or FF.
	SplitAny
)

// LineReader reads terminator-inclusive lines from a stream.
type LineReader struct {
	reader *bufio.Reader
	mode   SplitMode
	line   []byte
}

// NewLineReader returns a LineReader over source.
func NewLineReader(source io.Reader, mode SplitMode) *LineReader {
	return &LineReader{
		reader: bufio.NewReader(source),
		mode:   mode,
		line:   make([]byte, 0, MaxLineLength),
	}
}

// ReadLine returns the next line including its terminator. The final
// line of a stream may lack one. At end of stream ReadLine returns
// io.EOF. The returned slice is only valid until the next call.
func (r *LineReader) ReadLine() ([]byte, error) {
	r.line = r.line[:0]
	for len(r.line) < MaxLineLength {
		char, err := r.reader.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && len(r.line) > 0 {
				return r.line, nil
			}
			return nil, err
		}
		r.line = append(r.line, char)
		if r.isTerminator(char) {
			break
		}
	}
	return r.line, nil
}

// Remainder returns a reader over the unconsumed part of the stream,
// including anything already buffered.
func (r *LineReader) Remainder() io.Reader {
	return r.reader
}

func (r *LineReader) isTerminator(char byte) bool {
	if char == '\n' {
		return true
	}
	return r.mode == SplitAny && (char == '\r' || char == '\f')
}
