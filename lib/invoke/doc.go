// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package invoke runs the conversion step of a job under the resolved
// identity.
//
// The backend runs as root. Conversion must not: the renderer and the
// post-processing hook execute arbitrary programs on user-supplied
// content. The parent therefore re-executes its own binary as a
// conversion child ([Launcher]), sending a [Request] as a single CBOR
// message on the child's stdin and passing the job log file as an
// inherited descriptor. The child ([Child]) then:
//
//  1. drops privileges in the mandatory order: primary group,
//     supplementary groups, user id ([DropPrivileges])
//  2. sets umask 0077
//  3. produces the output file, either by copying a final-form spool
//     artifact or by running the renderer command line through
//     /bin/sh -c
//  4. sets the output file's permission bits (failure is logged)
//  5. runs the post-processing hook if one is configured (failure is
//     logged)
//
// [PolicyCompatible] logs failed privilege transitions and continues
// with the remaining steps. [PolicyStrict] aborts the child before
// anything is executed.
//
// The parent waits for the child without a timeout. The child's exit
// status is logged but is not a pipeline error: the parent always
// proceeds to remove the spool artifact. Only a failure to start the
// child is reported to the caller.
//
// Command lines are built from templates with ${NAME} placeholders
// ([RendererCommand], [PostProcessingCommand]); every substituted value
// is shell-quoted.
package invoke
