// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package joblog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"golang.org/x/term"

	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
)

// Path returns the log file path for printer under directory.
func Path(directory, printer string) string {
	return filepath.Join(directory, "bureau-pdf-"+printer+"_log")
}

// Open opens the log file for printer in append mode, creating it
// with mode 0600 if needed.
func Open(directory, printer string) (*os.File, error) {
	path := Path(directory, printer)
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	return file, nil
}

// NewStderrHandler returns a warn-level handler for w. When w is a
// terminal records are human-readable text; otherwise they are JSON.
func NewStderrHandler(w io.Writer) slog.Handler {
	options := &slog.HandlerOptions{Level: slog.LevelWarn}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return slog.NewTextHandler(w, options)
	}
	return slog.NewJSONHandler(w, options)
}

// New returns a logger writing mask-filtered text records to file and
// warnings and errors to stderr. Either writer may be nil.
func New(file io.Writer, mask Mask, stderr io.Writer) *slog.Logger {
	var handlers fanoutHandler
	if file != nil {
		text := slog.NewTextHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})
		handlers = append(handlers, maskHandler{mask: mask, inner: text})
	}
	if stderr != nil {
		handlers = append(handlers, NewStderrHandler(stderr))
	}
	if len(handlers) == 0 {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(handlers)
}

// Inherited returns the log file passed down by the parent, as named
// by the invoke.LogDescriptorEnv variable in getenv. It returns nil
// when no usable descriptor was passed.
func Inherited(getenv func(string) string) *os.File {
	value := getenv(invoke.LogDescriptorEnv)
	if value == "" {
		return nil
	}
	descriptor, err := strconv.Atoi(value)
	if err != nil || descriptor < 3 {
		return nil
	}
	return os.NewFile(uintptr(descriptor), "joblog")
}
