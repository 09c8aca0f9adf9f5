// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// DirectoryMode is the mode of a new output directory for mask.
func DirectoryMode(mask fs.FileMode) fs.FileMode {
	return 0o777 &^ mask
}

// FileMode is the mode of an output file for mask.
func FileMode(mask fs.FileMode) fs.FileMode {
	return 0o666 &^ mask
}

// OutputDirectory describes a per-identity output directory.
type OutputDirectory struct {
	Path string

	// Mode is applied when the directory is created.
	Mode fs.FileMode

	// UID and GID own the directory when it is created.
	UID int
	GID int

	// Anonymous only changes the wording of log records.
	Anonymous bool
}

// EnsureOutputDirectory creates the output directory if it does not
// exist, sets its mode and forces its owner to the job's identity. An
// existing directory is accepted without changes.
func EnsureOutputDirectory(directory OutputDirectory, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	kind := "user"
	if directory.Anonymous {
		kind = "anonymous"
	}

	defer SetUmask(0)()
	if isDirectory(directory.Path) {
		return nil
	}

	if err := EnsureDirectory(directory.Path, logger); err != nil {
		logger.Error("failed to create output directory", "kind", kind, "directory", directory.Path)
		return fmt.Errorf("creating %s output directory: %w", kind, err)
	}
	if err := os.Chmod(directory.Path, directory.Mode); err != nil {
		logger.Error("failed to set mode on output directory", "kind", kind, "directory", directory.Path)
		return fmt.Errorf("setting mode of %s output directory: %w", kind, err)
	}
	logger.Debug("output directory created", "kind", kind, "directory", directory.Path, "mode", fmt.Sprintf("%04o", directory.Mode))

	if err := os.Chown(directory.Path, directory.UID, directory.GID); err != nil {
		logger.Error("failed to set owner for output directory", "directory", directory.Path, "uid", directory.UID, "gid", directory.GID)
		return fmt.Errorf("setting owner of output directory: %w", err)
	}
	logger.Debug("owner set for output directory", "directory", directory.Path, "uid", directory.UID)
	return nil
}

// SpoolRootMode is the mode of a newly created spool root.
const SpoolRootMode fs.FileMode = 0o751

// EnsureSpoolRoot creates the spool root if it does not exist and
// hands its group to gid. A failed group change is logged, not
// returned.
func EnsureSpoolRoot(path string, gid int, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	defer SetUmask(0o022)()
	if isDirectory(path) {
		return nil
	}
	if err := EnsureDirectory(path, logger); err != nil {
		logger.Error("failed to create spool directory", "directory", path)
		return fmt.Errorf("creating spool directory: %w", err)
	}
	if err := os.Chmod(path, SpoolRootMode); err != nil {
		logger.Error("failed to set mode on spool directory", "directory", path)
		return fmt.Errorf("setting mode of spool directory: %w", err)
	}
	if err := os.Chown(path, -1, gid); err != nil {
		logger.Error("failed to set group on spool directory (non fatal)", "directory", path, "gid", gid, "error", err)
	}
	logger.Info("spool directory created", "directory", path)
	return nil
}

// LogDirectoryMode is the mode of a newly created log directory.
const LogDirectoryMode fs.FileMode = 0o700

// EnsureLogDirectory creates the log directory if it does not exist.
// It runs before the log file is open, so it does not log.
func EnsureLogDirectory(path string) error {
	defer SetUmask(0o077)()
	if isDirectory(path) {
		return nil
	}
	if err := EnsureDirectory(path, nil); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	if err := os.Chmod(path, LogDirectoryMode); err != nil {
		return fmt.Errorf("setting mode of log directory: %w", err)
	}
	return nil
}
