// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package spool copies an incoming print job into a private spool file
// and classifies it on the way.
//
// [Spool] reads the job line by line until it finds a document
// signature: "%PDF" marks a final-form document, "%!" (other than a
// "%!PS-AdobeFont" resource) marks a PostScript program. Bytes before
// the signature (PJL headers and similar preambles) are discarded. A
// PDF body is then copied verbatim. A PostScript body is copied line
// by line while tracking embedded documents, so that the %%EOF of an
// embedded EPS file does not end the outer job and a %%Title: inside
// an embedded file is not mistaken for the job's own title.
//
// Lines are read by [LineReader], which either splits on LF only or,
// for transports that mangle line endings, on LF, CR and FF. Lines
// longer than [MaxLineLength] are returned in pieces.
//
// The spool file is created exclusively, chowned to the identity that
// will later read it before any content is written, and removed again
// if spooling fails after creation. The BLAKE3 digest and size of the
// written content are recorded in the returned [Artifact].
package spool
