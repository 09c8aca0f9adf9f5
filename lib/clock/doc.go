// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts reading the current time so that code which
// measures durations can be tested deterministically.
//
// Production code injects Real(). Tests inject Fake(epoch) and move
// time forward explicitly with Advance, so logged durations are exact
// values rather than ranges.
package clock
