// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the bureau-pdf
// binary. These functions centralize the raw stderr writes that happen
// before the job logger exists or after it can no longer be trusted.
//
// The print scheduler reads a backend's stderr line by line and treats
// lines prefixed with "ERROR:" as job errors, so the helpers here use
// that prefix.
package process
