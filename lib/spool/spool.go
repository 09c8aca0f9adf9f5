// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package spool

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zeebo/blake3"
	"golang.org/x/sys/unix"
)

// Classification is the kind of document found in a job stream.
type Classification int

const (
	// PageDescription is a PostScript program that needs rendering.
	PageDescription Classification = iota

	// FinalForm is an already rendered PDF document.
	FinalForm
)

func (c Classification) String() string {
	if c == FinalForm {
		return "final-form"
	}
	return "page-description"
}

var (
	// ErrSourceNotOpen is returned when the job stream could not be
	// opened. No spool file is created.
	ErrSourceNotOpen = errors.New("spool: source stream not open")

	// ErrNoDocument is returned when the stream ends without a PDF or
	// PostScript signature.
	ErrNoDocument = errors.New("spool: no document signature found")
)

var (
	finalFormSignature       = []byte("%PDF")
	pageDescriptionSignature = []byte("%!")
	fontResourceSignature    = []byte("%!PS-AdobeFont")
	endOfDocument            = []byte("%%EOF")
	titleDirective           = []byte("%%Title:")
)

// Digest is the BLAKE3 digest of the spooled content.
type Digest [32]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Artifact describes a written spool file.
type Artifact struct {
	// Path is the spool file location.
	Path string

	// Size is the number of bytes written.
	Size int64

	// Owner is the uid the file was chowned to.
	Owner int

	// Digest is the BLAKE3 digest of the written bytes.
	Digest Digest
}

// Result is what [Spool] learned about a job.
type Result struct {
	Artifact       Artifact
	Classification Classification

	// Title is the raw value of the outermost %%Title: directive with
	// surrounding whitespace and the line terminator removed. Empty
	// when the document has none or is final-form.
	Title string
}

// Config controls a single [Spool] call.
type Config struct {
	// Path is where the spool file is created. A stale file left at
	// this path by an earlier process is replaced.
	Path string

	// Owner is the uid given to the spool file before any content is
	// written. The group is left unchanged.
	Owner int

	// SplitMode selects the line terminators used while scanning.
	SplitMode SplitMode

	// Fchown changes the owner of the open spool file. Nil means
	// unix.Fchown.
	Fchown func(fd, uid, gid int) error

	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger
}

// Spool copies the document in source to a new spool file. source is
// always closed before Spool returns. On any failure after the spool
// file was created, the file is removed.
func Spool(source io.ReadCloser, config Config) (*Result, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if source == nil {
		logger.Error("failed to open source stream")
		return nil, ErrSourceNotOpen
	}
	defer source.Close()
	logger.Debug("source stream ready")

	if err := os.Remove(config.Path); err == nil {
		logger.Debug("removed stale spool file", "path", config.Path)
	}
	file, err := os.OpenFile(config.Path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		logger.Error("failed to open spool file", "path", config.Path, "error", err)
		return nil, fmt.Errorf("creating spool file: %w", err)
	}

	result, err := fill(file, source, config, logger)
	closeErr := file.Close()
	if err == nil && closeErr != nil {
		err = fmt.Errorf("closing spool file: %w", closeErr)
	}
	if err != nil {
		if removeErr := os.Remove(config.Path); removeErr != nil {
			logger.Error("failed to remove spool file during clean-up", "path", config.Path, "error", removeErr)
		}
		return nil, err
	}

	logger.Debug("all data written to spool file",
		"path", config.Path,
		"bytes", result.Artifact.Size,
		"blake3", result.Artifact.Digest.String(),
		"classification", result.Classification.String(),
	)
	return result, nil
}

// fill chowns file and writes the document into it.
func fill(file *os.File, source io.Reader, config Config, logger *slog.Logger) (*Result, error) {
	fchown := config.Fchown
	if fchown == nil {
		fchown = unix.Fchown
	}
	if err := fchown(int(file.Fd()), config.Owner, -1); err != nil {
		logger.Error("failed to set owner for spool file", "path", config.Path, "uid", config.Owner, "error", err)
		return nil, fmt.Errorf("setting owner of spool file: %w", err)
	}
	logger.Debug("owner set for spool file", "path", config.Path, "uid", config.Owner)

	hasher := blake3.New()
	counter := &countingWriter{}
	buffered := bufio.NewWriter(io.MultiWriter(file, hasher, counter))

	if config.SplitMode == SplitAny {
		logger.Debug("splitting lines at LF, CR and FF")
	}
	lines := NewLineReader(source, config.SplitMode)

	result := &Result{}
	classified := false
	for !classified {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			logger.Error("no PDF or PostScript signature in job")
			return nil, ErrNoDocument
		}
		if err != nil {
			return nil, fmt.Errorf("reading job stream: %w", err)
		}
		switch {
		case bytes.HasPrefix(line, finalFormSignature):
			logger.Debug("found beginning of PDF code")
			result.Classification = FinalForm
			classified = true
		case bytes.HasPrefix(line, pageDescriptionSignature) && !bytes.HasPrefix(line, fontResourceSignature):
			logger.Debug("found beginning of PostScript code", "line", string(line))
			result.Classification = PageDescription
			classified = true
		default:
			continue
		}
		if _, err := buffered.Write(line); err != nil {
			return nil, fmt.Errorf("writing spool file: %w", err)
		}
	}

	var err error
	if result.Classification == FinalForm {
		_, err = io.Copy(buffered, lines.Remainder())
		if err != nil {
			err = fmt.Errorf("copying PDF body: %w", err)
		}
	} else {
		result.Title, err = copyPostScript(buffered, lines, logger)
	}
	if err != nil {
		return nil, err
	}
	if err := buffered.Flush(); err != nil {
		return nil, fmt.Errorf("writing spool file: %w", err)
	}

	result.Artifact = Artifact{
		Path:  config.Path,
		Size:  counter.count,
		Owner: config.Owner,
	}
	copy(result.Artifact.Digest[:], hasher.Sum(nil))
	return result, nil
}

// copyPostScript copies lines up to and including the outermost
// %%EOF and returns the outermost %%Title: value.
func copyPostScript(destination io.Writer, lines *LineReader, logger *slog.Logger) (string, error) {
	logger.Debug("extracting PostScript code")
	title := ""
	haveTitle := false
	depth := 0
	for {
		line, err := lines.ReadLine()
		if errors.Is(err, io.EOF) {
			return title, nil
		}
		if err != nil {
			return "", fmt.Errorf("reading job stream: %w", err)
		}
		if _, err := destination.Write(line); err != nil {
			return "", fmt.Errorf("writing spool file: %w", err)
		}

		if !haveTitle && depth == 0 {
			if value, ok := parseTitle(line); ok {
				logger.Debug("found title in PostScript code", "title", value)
				title = value
				haveTitle = true
			}
		}

		switch {
		case bytes.HasPrefix(line, pageDescriptionSignature):
			logger.Debug("found embedded PostScript code", "depth", depth+1)
			depth++
		case bytes.HasPrefix(line, endOfDocument):
			if depth == 0 {
				logger.Debug("found end of PostScript code")
				return title, nil
			}
			logger.Debug("found end of embedded PostScript code", "depth", depth)
			depth--
		}
	}
}

// parseTitle extracts the value of a %%Title: directive.
func parseTitle(line []byte) (string, bool) {
	if !bytes.HasPrefix(line, titleDirective) {
		return "", false
	}
	value := bytes.TrimLeft(line[len(titleDirective):], " \t")
	value = bytes.TrimRight(value, "\r\n\f")
	if len(value) == 0 {
		return "", false
	}
	return string(value), true
}

type countingWriter struct {
	count int64
}

func (w *countingWriter) Write(data []byte) (int, error) {
	w.count += int64(len(data))
	return len(data), nil
}
