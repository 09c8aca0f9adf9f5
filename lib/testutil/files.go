// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"io/fs"
	"os"
	"os/user"
	"strconv"
	"testing"
)

// WriteFile writes content to path with the given permission bits,
// ignoring the process umask.
func WriteFile(t testing.TB, path string, content string, mode fs.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("chmod %s: %v", path, err)
	}
}

// ReadFile returns the content of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

// RequireMode fails the test unless path exists with exactly the given
// permission bits.
func RequireMode(t testing.TB, path string, want fs.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if got := info.Mode().Perm(); got != want {
		t.Fatalf("expected %s to have mode %04o, got %04o", path, want, got)
	}
}

// RequireAbsent fails the test if path exists.
func RequireAbsent(t testing.TB, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Fatalf("expected %s to be absent", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
}

// Account describes the user running the tests.
type Account struct {
	Name string
	UID  int
	GID  int
	Home string
}

// CurrentAccount returns the account of the user running the tests.
func CurrentAccount(t testing.TB) Account {
	t.Helper()
	current, err := user.Current()
	if err != nil {
		t.Fatalf("looking up current user: %v", err)
	}
	uid, err := strconv.Atoi(current.Uid)
	if err != nil {
		t.Fatalf("parsing uid %q: %v", current.Uid, err)
	}
	gid, err := strconv.Atoi(current.Gid)
	if err != nil {
		t.Fatalf("parsing gid %q: %v", current.Gid, err)
	}
	return Account{Name: current.Username, UID: uid, GID: gid, Home: current.HomeDir}
}
