// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"os"
	"path/filepath"
	"testing"
)

func TestModes(t *testing.T) {
	if got := DirectoryMode(0o077); got != 0o700 {
		t.Errorf("DirectoryMode(0077) = %04o", got)
	}
	if got := DirectoryMode(0); got != 0o777 {
		t.Errorf("DirectoryMode(0) = %04o", got)
	}
	if got := FileMode(0o077); got != 0o600 {
		t.Errorf("FileMode(0077) = %04o", got)
	}
	if got := FileMode(0o022); got != 0o644 {
		t.Errorf("FileMode(0022) = %04o", got)
	}
}

func TestEnsureOutputDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "spool", "alice")
	directory := OutputDirectory{
		Path: target,
		Mode: DirectoryMode(0o077),
		UID:  os.Getuid(),
		GID:  os.Getgid(),
	}
	if err := EnsureOutputDirectory(directory, nil); err != nil {
		t.Fatalf("EnsureOutputDirectory: %v", err)
	}
	if got := mode(t, target); got != 0o700 {
		t.Errorf("expected mode 0700, got %04o", got)
	}
	uid, gid := owner(t, target)
	if uid != os.Getuid() || gid != os.Getgid() {
		t.Errorf("expected owner %d:%d, got %d:%d", os.Getuid(), os.Getgid(), uid, gid)
	}
}

func TestEnsureOutputDirectoryAnonymousMode(t *testing.T) {
	target := filepath.Join(t.TempDir(), "ANONYMOUS")
	directory := OutputDirectory{
		Path:      target,
		Mode:      DirectoryMode(0),
		UID:       os.Getuid(),
		GID:       os.Getgid(),
		Anonymous: true,
	}
	if err := EnsureOutputDirectory(directory, nil); err != nil {
		t.Fatalf("EnsureOutputDirectory: %v", err)
	}
	if got := mode(t, target); got != 0o777 {
		t.Errorf("expected mode 0777 despite any umask, got %04o", got)
	}
}

func TestEnsureOutputDirectoryLeavesExistingAlone(t *testing.T) {
	target := t.TempDir()
	if err := os.Chmod(target, 0o751); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	directory := OutputDirectory{Path: target, Mode: 0o700, UID: os.Getuid(), GID: os.Getgid()}
	for range 2 {
		if err := EnsureOutputDirectory(directory, nil); err != nil {
			t.Fatalf("EnsureOutputDirectory: %v", err)
		}
		if got := mode(t, target); got != 0o751 {
			t.Fatalf("existing directory was re-permissioned to %04o", got)
		}
	}
}

func TestEnsureSpoolRoot(t *testing.T) {
	target := filepath.Join(t.TempDir(), "SPOOL")
	if err := EnsureSpoolRoot(target, os.Getgid(), nil); err != nil {
		t.Fatalf("EnsureSpoolRoot: %v", err)
	}
	if got := mode(t, target); got != SpoolRootMode {
		t.Errorf("expected mode %04o, got %04o", SpoolRootMode, got)
	}
}

func TestEnsureLogDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "log", "cups")
	if err := EnsureLogDirectory(target); err != nil {
		t.Fatalf("EnsureLogDirectory: %v", err)
	}
	if got := mode(t, target); got != LogDirectoryMode {
		t.Errorf("expected mode %04o, got %04o", LogDirectoryMode, got)
	}
}
