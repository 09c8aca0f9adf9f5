// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package provision creates the directories the backend writes into.
//
// [EnsureDirectory] is the generic helper: it creates a path and any
// missing ancestors, each new directory inheriting the permission bits
// and (best effort) the owner of its parent. An existing directory is
// accepted as it is, so calls are idempotent and nothing already on
// disk is ever re-permissioned.
//
// [EnsureOutputDirectory], [EnsureSpoolRoot] and [EnsureLogDirectory]
// apply the policy for each kind of directory on top of that: explicit
// mode bits and, for output directories, ownership forced to the job's
// identity.
//
// The process umask is shared state inherited by the conversion child,
// so every function here changes it only through [SetUmask] and
// restores it before returning.
package provision
