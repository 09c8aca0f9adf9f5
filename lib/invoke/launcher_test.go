// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/bureau-pdf/lib/clock"
	"github.com/bureau-foundation/bureau-pdf/lib/testutil"
)

func sampleRequest() *Request {
	return &Request{
		UID: 1000, GID: 100,
		Groups:         []int{100, 24},
		Name:           "alice",
		Principal:      "Alice",
		Spool:          "/var/spool/bureau-pdf/SPOOL/bureau-pdf-41",
		Output:         "/home/alice/PDF/report.pdf",
		Command:        "gs -f /var/spool/bureau-pdf/SPOOL/bureau-pdf-41",
		PostProcessing: "/usr/local/bin/notify /home/alice/PDF/report.pdf alice Alice",
		Mode:           0o600,
		Policy:         PolicyStrict,
	}
}

func TestLauncherSendsRequestOnStdin(t *testing.T) {
	directory := t.TempDir()
	capturePath := filepath.Join(directory, "request.cbor")

	launcher := &Launcher{
		Executable: "/bin/sh",
		Args:       []string{"-c", "cat > " + shellQuote(capturePath)},
	}
	original := sampleRequest()
	completion, err := launcher.Convert(context.Background(), original)
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if completion.ExitCode != 0 {
		t.Errorf("expected exit code 0, got %d", completion.ExitCode)
	}

	file, err := os.Open(capturePath)
	if err != nil {
		t.Fatalf("opening captured request: %v", err)
	}
	defer file.Close()
	decoded, err := ReadRequest(file)
	if err != nil {
		t.Fatalf("ReadRequest: %v", err)
	}
	if decoded.Output != original.Output || decoded.Policy != PolicyStrict || !slices.Equal(decoded.Groups, original.Groups) {
		t.Errorf("decoded request mismatch: got %+v", decoded)
	}
}

func TestLauncherReportsExitStatusWithoutError(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	fake.AutoAdvance(2 * time.Second)
	logger, logs := testutil.CaptureLogger()

	launcher := &Launcher{
		Executable: "/bin/sh",
		Args:       []string{"-c", "cat > /dev/null; exit 3"},
		Clock:      fake,
		Logger:     logger,
	}
	completion, err := launcher.Convert(context.Background(), sampleRequest())
	if err != nil {
		t.Fatalf("expected child failure not to be an error, got %v", err)
	}
	if completion.ExitCode != 3 {
		t.Errorf("expected exit code 3, got %d", completion.ExitCode)
	}
	if completion.Duration != 2*time.Second {
		t.Errorf("expected duration 2s, got %v", completion.Duration)
	}
	if !logs.Contains("conversion child failed") {
		t.Errorf("expected failure to be logged, got %q", logs.String())
	}
}

func TestLauncherPassesLogFileAndTempDirectory(t *testing.T) {
	directory := t.TempDir()
	logPath := filepath.Join(directory, "job_log")
	logFile, err := os.OpenFile(logPath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatalf("opening log file: %v", err)
	}
	defer logFile.Close()

	launcher := &Launcher{
		Executable:    "/bin/sh",
		Args:          []string{"-c", `cat > /dev/null; echo "fd=$` + LogDescriptorEnv + ` tmp=$TMPDIR" >&3`},
		TempDirectory: "/var/tmp/renderer",
		LogFile:       logFile,
	}
	if _, err := launcher.Convert(context.Background(), sampleRequest()); err != nil {
		t.Fatalf("Convert: %v", err)
	}

	got := strings.TrimSpace(testutil.ReadFile(t, logPath))
	if expected := "fd=3 tmp=/var/tmp/renderer"; got != expected {
		t.Errorf("expected %q written to inherited descriptor, got %q", expected, got)
	}
}

func TestLauncherStartFailure(t *testing.T) {
	launcher := &Launcher{Executable: filepath.Join(t.TempDir(), "missing")}
	if _, err := launcher.Convert(context.Background(), sampleRequest()); err == nil {
		t.Fatal("expected an error when the child cannot start")
	}
}

func TestLauncherRejectsIncompleteRequest(t *testing.T) {
	launcher := &Launcher{Executable: "/bin/true"}
	request := sampleRequest()
	request.Command = ""
	if _, err := launcher.Convert(context.Background(), request); err == nil {
		t.Fatal("expected an error for a page-description request without a command")
	}
}
