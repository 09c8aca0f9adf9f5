// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package identity maps the principal that submitted a print job to
// the local account that will own its output.
//
// [Resolve] looks the principal up (with an optional prefix and an
// optional lower-case retry), falls back to a configured anonymous
// account, and reports [ErrDeclined] when neither applies. The result
// carries the account's full supplementary group list and the output
// directory for the job: the fixed anonymous directory, or the
// per-user template with ${HOME} and ${USER} substituted.
//
// Account data comes from a [Database]. [System] reads the host's
// passwd and group databases through os/user; tests substitute fakes.
package identity
