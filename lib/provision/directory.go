// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// EnsureDirectory creates path and any missing ancestors. Each created
// directory gets its parent's permission bits (subject to the umask)
// and an attempt is made to give it the parent's owner and group;
// failure of that attempt is logged and otherwise ignored. An existing
// directory is left untouched. A nil logger discards records.
//
// Directories created before a failure are not removed: a later call
// picks up where this one stopped.
func EnsureDirectory(path string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	path = trimSeparators(path)

	// Walk up to the nearest existing ancestor, remembering what is
	// missing on the way.
	var missing []string
	current := path
	for !isDirectory(current) {
		missing = append(missing, current)
		parent := filepath.Dir(current)
		if parent == current {
			return fmt.Errorf("no existing ancestor for %s", path)
		}
		current = parent
	}

	// Create from the top down.
	for index := len(missing) - 1; index >= 0; index-- {
		parent := filepath.Dir(missing[index])
		if err := createChild(missing[index], parent, logger); err != nil {
			return err
		}
	}
	return nil
}

// createChild creates directory with the mode and owner of parent.
func createChild(directory, parent string, logger *slog.Logger) error {
	parentInfo, err := os.Stat(parent)
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", parent, err)
	}
	if err := os.Mkdir(directory, parentInfo.Mode().Perm()); err != nil {
		logger.Error("failed to create directory", "directory", directory, "error", err)
		return fmt.Errorf("creating directory %s: %w", directory, err)
	}
	logger.Info("directory created", "directory", directory)

	if stat, ok := parentInfo.Sys().(*syscall.Stat_t); ok {
		if err := os.Chown(directory, int(stat.Uid), int(stat.Gid)); err != nil {
			logger.Debug("failed to set owner on directory (non fatal)", "directory", directory, "error", err)
		}
	}
	return nil
}

// trimSeparators removes trailing separators, keeping a lone root.
func trimSeparators(path string) string {
	trimmed := strings.TrimRight(path, string(filepath.Separator))
	if trimmed == "" && path != "" {
		return string(filepath.Separator)
	}
	if trimmed == "" {
		return "."
	}
	return trimmed
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
