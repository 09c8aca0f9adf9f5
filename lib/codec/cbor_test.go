// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"slices"
	"testing"
)

type sampleRequest struct {
	UID    int    `cbor:"uid"`
	Output string `cbor:"output"`
	Groups []int  `cbor:"groups,omitempty"`
}

type widerRequest struct {
	UID    int    `cbor:"uid"`
	Output string `cbor:"output"`
	Shell  string `cbor:"shell"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRequest{UID: 1000, Output: "/var/spool/bureau-pdf/alice/report.pdf", Groups: []int{1000, 24}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.UID != original.UID || decoded.Output != original.Output || !slices.Equal(decoded.Groups, original.Groups) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	request := sampleRequest{UID: 7, Output: "/tmp/x.pdf"}
	first, err := Marshal(request)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(request)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestUnmarshalRejectsUnknownFields(t *testing.T) {
	data, err := Marshal(widerRequest{UID: 1, Output: "/out.pdf", Shell: "/bin/evil"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRequest
	if err := Unmarshal(data, &decoded); err == nil {
		t.Fatal("expected an error for an unknown field")
	}
}

func TestEncoderDecoderStream(t *testing.T) {
	var buffer bytes.Buffer
	if err := NewEncoder(&buffer).Encode(sampleRequest{UID: 3, Output: "/a.pdf"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded sampleRequest
	if err := NewDecoder(&buffer).Decode(&decoded); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.UID != 3 || decoded.Output != "/a.pdf" {
		t.Errorf("unexpected decoded value %+v", decoded)
	}
}
