// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package backend runs one print job from submission to output file.
//
// A [Pipeline] is built once per invocation from an immutable
// configuration. [Pipeline.Setup] switches to the print group and
// provisions the spool root. [Pipeline.Run] then executes the job
// stages strictly in order:
//
//  1. resolve the principal to a local identity
//  2. provision the identity's output directory
//  3. classify the stream and write the spool artifact
//  4. normalize the title into a file name stem
//  5. compute the output path and remove any file already there
//  6. convert under the identity in a separate process
//  7. remove the spool artifact
//
// Every job ends in one of three [Outcome] values. Declined jobs (an
// unknown principal with anonymous printing disabled) are not
// failures; [OutcomeOf] distinguishes them from fatal errors so the
// caller can report a distinct exit status.
//
// [Announce] prints the device discovery lines the print scheduler
// asks for when the backend runs without arguments.
package backend
