// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR configuration used between the backend
// and its conversion child.
//
// The parent process runs as root and hands the child everything it
// needs to drop privileges and convert a job in a single CBOR message
// on the child's stdin. Encoding uses Core Deterministic Encoding
// (RFC 8949 §4.2) so identical requests produce identical bytes.
// Decoding is strict: unknown fields and duplicate map keys are
// errors, because a request the child does not fully understand must
// not be acted on with root privileges.
//
//	data, err := codec.Marshal(request)
//	err = codec.Unmarshal(data, &request)
//
// Types that cross this boundary use `cbor` struct tags.
package codec
