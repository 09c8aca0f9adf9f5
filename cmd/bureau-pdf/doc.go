// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// bureau-pdf is a print scheduler backend that turns print jobs into
// PDF files in a per-user output directory.
//
// The scheduler runs the backend in three ways:
//
//	bureau-pdf                                       device discovery
//	bureau-pdf job-id user title copies options      job read from stdin
//	bureau-pdf job-id user title copies options file job read from file
//
// Any other argument count prints usage and exits 0. Job mode needs
// root: it resolves the submitting user, creates their output
// directory, spools the document, and then re-executes itself as the
// hidden convert-child subcommand, which drops to the user's identity
// before running the renderer.
//
// Exit status in job mode is 0 for success, 2 when the job is declined
// because the user is unknown and anonymous printing is disabled, and
// 5 for any fatal error.
//
// Operator subcommands (check-config, devices, version) run without
// root.
package main
