// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for bureau-pdf
// packages.
//
// [WriteFile], [ReadFile], and [RequireMode] wrap the file operations
// that nearly every spool, provisioning, and conversion test performs,
// failing the test instead of returning errors.
//
// [CurrentAccount] returns the uid, gid, and login name of the user
// running the tests. Tests that exercise ownership changes use it to
// "change" ownership to the current user, which succeeds without root.
//
// [CaptureLogger] returns a structured logger writing text records to
// an in-memory buffer so tests can assert on what was logged.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no bureau-pdf dependencies.
package testutil
