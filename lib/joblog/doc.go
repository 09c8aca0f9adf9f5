// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package joblog builds the structured logger used by a backend
// invocation.
//
// Records go to two places. The per-printer log file
// (<log_dir>/bureau-pdf-<printer>_log, opened in append mode) receives
// text records filtered by a [Mask], the operator-facing log type
// bitmask: 1 selects errors and warnings, 2 selects status messages,
// 4 selects debug output. Stderr, which the print scheduler captures,
// receives warnings and errors only; it uses a text handler on a
// terminal and a JSON handler otherwise.
//
// The conversion child writes to the same log file through an
// inherited descriptor ([Inherited]).
package joblog
