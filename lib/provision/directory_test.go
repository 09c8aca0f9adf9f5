// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import (
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"
)

func mode(t *testing.T, path string) fs.FileMode {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Mode().Perm()
}

func owner(t *testing.T, path string) (int, int) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	stat := info.Sys().(*syscall.Stat_t)
	return int(stat.Uid), int(stat.Gid)
}

func TestEnsureDirectoryInheritsParentMode(t *testing.T) {
	defer SetUmask(0)()
	root := t.TempDir()
	if err := os.Chmod(root, 0o750); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	target := filepath.Join(root, "a", "b", "c")
	if err := EnsureDirectory(target, nil); err != nil {
		t.Fatalf("EnsureDirectory: %v", err)
	}
	for _, path := range []string{
		filepath.Join(root, "a"),
		filepath.Join(root, "a", "b"),
		target,
	} {
		if got := mode(t, path); got != 0o750 {
			t.Errorf("%s: expected mode 0750, got %04o", path, got)
		}
		uid, gid := owner(t, path)
		rootUID, rootGID := owner(t, root)
		if uid != rootUID || gid != rootGID {
			t.Errorf("%s: expected owner %d:%d, got %d:%d", path, rootUID, rootGID, uid, gid)
		}
	}
}

func TestEnsureDirectoryAppliesUmask(t *testing.T) {
	defer SetUmask(0o077)()
	root := t.TempDir()
	if err := os.Chmod(root, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	target := filepath.Join(root, "private")
	if err := EnsureDirectory(target, nil); err != nil {
		t.Fatalf("EnsureDirectory: %v", err)
	}
	if got := mode(t, target); got != 0o700 {
		t.Errorf("expected mode 0700, got %04o", got)
	}
}

func TestEnsureDirectoryIsIdempotent(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "out")
	if err := EnsureDirectory(target, nil); err != nil {
		t.Fatalf("first EnsureDirectory: %v", err)
	}
	if err := os.Chmod(target, 0o711); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if err := EnsureDirectory(target, nil); err != nil {
		t.Fatalf("second EnsureDirectory: %v", err)
	}
	if got := mode(t, target); got != 0o711 {
		t.Errorf("existing directory was modified: mode %04o", got)
	}
}

func TestEnsureDirectoryTrailingSeparators(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "x", "y") + "///"
	if err := EnsureDirectory(target, nil); err != nil {
		t.Fatalf("EnsureDirectory: %v", err)
	}
	if !isDirectory(filepath.Join(root, "x", "y")) {
		t.Error("directory was not created")
	}
}

func TestEnsureDirectoryRejectsFile(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "occupied")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}
	if err := EnsureDirectory(file, nil); err == nil {
		t.Error("expected an error when a file occupies the path")
	}
	if err := EnsureDirectory(filepath.Join(file, "below"), nil); err == nil {
		t.Error("expected an error when a file occupies an ancestor")
	}
}

func TestEnsureDirectoryRoot(t *testing.T) {
	for _, path := range []string{"/", "//", "."} {
		if err := EnsureDirectory(path, nil); err != nil {
			t.Errorf("EnsureDirectory(%q): %v", path, err)
		}
	}
}

func TestTrimSeparators(t *testing.T) {
	tests := map[string]string{
		"/var/spool/":  "/var/spool",
		"/var/spool//": "/var/spool",
		"/":            "/",
		"///":          "/",
		"relative/":    "relative",
		"":             ".",
	}
	for input, expected := range tests {
		if got := trimSeparators(input); got != expected {
			t.Errorf("trimSeparators(%q) = %q, expected %q", input, got, expected)
		}
	}
}

func TestSetUmaskRestores(t *testing.T) {
	outer := SetUmask(0o027)
	defer outer()

	restore := SetUmask(0o077)
	restore()

	// Setting again returns the mask that was restored.
	again := SetUmask(0o027)
	defer again()
	root := t.TempDir()
	if err := os.Chmod(root, 0o777); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	target := filepath.Join(root, "d")
	if err := os.Mkdir(target, 0o777); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if got := mode(t, target); got != 0o750 {
		t.Errorf("expected the restored 0027 mask to yield 0750, got %04o", got)
	}
}
