// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package provision

import "golang.org/x/sys/unix"

// SetUmask sets the process file mode creation mask and returns a
// function that restores the previous mask. Callers defer the restore
// so it runs on every exit path:
//
//	defer provision.SetUmask(0o022)()
func SetUmask(mask int) (restore func()) {
	previous := unix.Umask(mask)
	return func() {
		unix.Umask(previous)
	}
}
