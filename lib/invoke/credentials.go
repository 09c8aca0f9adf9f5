// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"fmt"
	"log/slog"
	"syscall"

	"golang.org/x/sys/unix"
)

// Credentials changes the process's identity. Tests substitute a fake
// that records calls.
type Credentials interface {
	Setgid(gid int) error
	Setgroups(gids []int) error
	Setuid(uid int) error
}

// SystemCredentials changes the identity of every thread in the
// process.
type SystemCredentials struct{}

// Setgid sets the real, effective, and saved group id.
func (SystemCredentials) Setgid(gid int) error { return unix.Setgid(gid) }

// Setgroups replaces the supplementary group list. unix.Setgroups only
// affects the calling thread on Linux, so this goes through the
// syscall package, which applies it to all threads.
func (SystemCredentials) Setgroups(gids []int) error { return syscall.Setgroups(gids) }

// Setuid sets the real, effective, and saved user id.
func (SystemCredentials) Setuid(uid int) error { return unix.Setuid(uid) }

// Target is the identity a child drops to.
type Target struct {
	UID    int
	GID    int
	Groups []int
}

// DropPrivileges switches to target in the only safe order: primary
// group, supplementary groups, then user id. Once the user id is
// dropped the process can no longer change its groups.
//
// Under PolicyCompatible every failure is logged and the remaining
// steps still run; the returned error is always nil. Under
// PolicyStrict the first failure is returned and no further steps run.
func DropPrivileges(credentials Credentials, target Target, policy Policy, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{"group id", func() error { return credentials.Setgid(target.GID) }},
		{"supplementary groups", func() error { return credentials.Setgroups(target.Groups) }},
		{"user id", func() error { return credentials.Setuid(target.UID) }},
	}

	for _, step := range steps {
		err := step.run()
		if err == nil {
			continue
		}
		logger.Error("failed to set "+step.name,
			"uid", target.UID,
			"gid", target.GID,
			"groups", target.Groups,
			"policy", policy.String(),
			"error", err,
		)
		if policy == PolicyStrict {
			return fmt.Errorf("setting %s: %w", step.name, err)
		}
	}

	logger.Debug("privileges dropped", "uid", target.UID, "gid", target.GID, "groups", len(target.Groups))
	return nil
}
