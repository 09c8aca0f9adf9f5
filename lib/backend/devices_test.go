// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/bureau-pdf/lib/testutil"
)

func TestDevices(t *testing.T) {
	directory := t.TempDir()
	for _, name := range []string{"bureau-pdf-draft.yaml", "bureau-pdf-archive.yaml", "bureau-pdf.yaml", "bureau-pdf-.yaml", "other.yaml"} {
		testutil.WriteFile(t, filepath.Join(directory, name), "", 0o644)
	}

	devices, err := Devices(directory)
	if err != nil {
		t.Fatalf("Devices: %v", err)
	}
	var uris []string
	for _, device := range devices {
		uris = append(uris, device.URI)
	}
	expected := "bureau-pdf:/ bureau-pdf:/archive bureau-pdf:/draft"
	if got := strings.Join(uris, " "); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestAnnounceMissingDirectory(t *testing.T) {
	var output bytes.Buffer
	if err := Announce(&output, filepath.Join(t.TempDir(), "missing")); err != nil {
		t.Fatalf("Announce: %v", err)
	}
	line := strings.TrimSpace(output.String())
	if !strings.HasPrefix(line, `file bureau-pdf:/ "Virtual PDF Printer" "bureau-pdf `) {
		t.Errorf("unexpected device line %q", line)
	}
	if !strings.HasSuffix(line, `CMD:PDF,POSTSCRIPT;"`) {
		t.Errorf("expected device id at end of line, got %q", line)
	}
}
