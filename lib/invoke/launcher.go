// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/bureau-foundation/bureau-pdf/lib/clock"
	"github.com/bureau-foundation/bureau-pdf/lib/codec"
)

// LogDescriptorEnv names the environment variable telling the child
// which inherited descriptor holds the job log file.
const LogDescriptorEnv = "BUREAU_PDF_LOG_FD"

// firstExtraDescriptor is the descriptor number of ExtraFiles[0].
const firstExtraDescriptor = 3

// Completion describes a finished conversion child.
type Completion struct {
	// ExitCode is the child's exit status, or -1 if it was killed by
	// a signal.
	ExitCode int
	Duration time.Duration
}

// Launcher starts conversion children by re-executing a binary.
type Launcher struct {
	// Executable and Args start the child, typically the running
	// binary and its internal conversion subcommand.
	Executable string
	Args       []string

	// Environment is the child's base environment. Nil means the
	// parent's environment. TMPDIR and the log descriptor variable are
	// appended.
	Environment []string

	// TempDirectory becomes the child's TMPDIR. Empty leaves TMPDIR
	// as inherited.
	TempDirectory string

	// LogFile is inherited by the child as descriptor 3. Nil means the
	// child logs to stderr only.
	LogFile *os.File

	Stdout io.Writer
	Stderr io.Writer

	Clock  clock.Clock
	Logger *slog.Logger
}

// Convert runs one conversion child and waits for it without a
// timeout. The child's exit status is reported in the Completion and
// logged; only a failure to encode the request or start the child is
// an error.
func (l *Launcher) Convert(ctx context.Context, request *Request) (*Completion, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	clk := l.Clock
	if clk == nil {
		clk = clock.Real()
	}

	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversion request: %w", err)
	}
	payload, err := codec.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("encoding conversion request: %w", err)
	}

	cmd := exec.CommandContext(ctx, l.Executable, l.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	environment := l.Environment
	if environment == nil {
		environment = os.Environ()
	}
	cmd.Env = append([]string(nil), environment...)
	if l.TempDirectory != "" {
		cmd.Env = append(cmd.Env, "TMPDIR="+l.TempDirectory)
	}
	if l.LogFile != nil {
		cmd.ExtraFiles = []*os.File{l.LogFile}
		cmd.Env = append(cmd.Env, LogDescriptorEnv+"="+strconv.Itoa(firstExtraDescriptor))
	}

	start := clk.Now()
	if err := cmd.Start(); err != nil {
		logger.Error("failed to start conversion child", "executable", l.Executable, "error", err)
		return nil, fmt.Errorf("starting conversion child: %w", err)
	}
	logger.Debug("conversion child started", "pid", cmd.Process.Pid, "uid", request.UID, "output", request.Output)

	waitErr := cmd.Wait()
	completion := &Completion{Duration: clock.Since(clk, start)}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		logger.Info("conversion finished", "output", request.Output, "duration", completion.Duration)
	case errors.As(waitErr, &exitErr):
		completion.ExitCode = exitErr.ExitCode()
		logger.Warn("conversion child failed",
			"output", request.Output,
			"exit_code", completion.ExitCode,
			"duration", completion.Duration,
		)
	default:
		completion.ExitCode = -1
		logger.Warn("waiting for conversion child", "output", request.Output, "error", waitErr)
	}
	return completion, nil
}
