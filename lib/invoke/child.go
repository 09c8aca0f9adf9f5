// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"

	"github.com/bureau-foundation/bureau-pdf/lib/provision"
)

// DefaultShell runs renderer and hook command lines.
const DefaultShell = "/bin/sh"

// childUmask is in effect while the child creates the output file.
const childUmask = 0o077

// Child performs the conversion step after privileges are dropped.
type Child struct {
	Credentials Credentials

	// Shell runs command lines as Shell -c <line>. Empty means
	// DefaultShell.
	Shell string

	// Environment is passed to the renderer and the hook. Nil means
	// the child's own environment.
	Environment []string

	// Stdout and Stderr receive the renderer's and the hook's output.
	// Nil discards it.
	Stdout io.Writer
	Stderr io.Writer

	Logger *slog.Logger
}

// Run converts one job. Any file already at the output path is
// removed once privileges are dropped. A renderer or copy failure is returned after
// the mode change and the hook have still been attempted, so the
// child's exit status reflects it. Under PolicyStrict a failed
// privilege transition is returned before anything is executed.
func (c *Child) Run(ctx context.Context, request *Request) error {
	logger := c.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	credentials := c.Credentials
	if credentials == nil {
		credentials = SystemCredentials{}
	}

	target := Target{UID: request.UID, GID: request.GID, Groups: request.Groups}
	if err := DropPrivileges(credentials, target, request.Policy, logger); err != nil {
		return err
	}

	defer provision.SetUmask(childUmask)()

	if err := os.Remove(request.Output); err == nil {
		logger.Debug("removed existing output file", "output", request.Output)
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("failed to remove existing output file", "output", request.Output, "error", err)
	}

	var conversionErr error
	if request.Passthrough {
		logger.Debug("copying final-form document", "spool", request.Spool, "output", request.Output)
		conversionErr = copyFile(request.Spool, request.Output)
		if conversionErr != nil {
			logger.Error("failed to copy final-form document", "output", request.Output, "error", conversionErr)
		}
	} else {
		logger.Debug("running renderer", "command", request.Command)
		conversionErr = c.runShell(ctx, request.Command)
		if conversionErr != nil {
			logger.Error("renderer failed", "command", request.Command, "error", conversionErr)
		}
	}

	if err := os.Chmod(request.Output, request.FileMode()); err != nil {
		logger.Error("failed to set mode on output file", "output", request.Output, "mode", fmt.Sprintf("%04o", request.FileMode()), "error", err)
	} else {
		logger.Debug("output file mode set", "output", request.Output, "mode", fmt.Sprintf("%04o", request.FileMode()))
	}

	if request.PostProcessing != "" {
		logger.Debug("running post-processing", "command", request.PostProcessing)
		if err := c.runShell(ctx, request.PostProcessing); err != nil {
			logger.Error("post-processing failed", "command", request.PostProcessing, "error", err)
		}
	}

	if conversionErr != nil {
		return fmt.Errorf("converting %s: %w", request.Spool, conversionErr)
	}
	logger.Info("output file created", "output", request.Output, "user", request.Name)
	return nil
}

func (c *Child) runShell(ctx context.Context, line string) error {
	shell := c.Shell
	if shell == "" {
		shell = DefaultShell
	}
	cmd := exec.CommandContext(ctx, shell, "-c", line)
	cmd.Env = c.Environment
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// copyFile copies source to destination, creating destination with
// mode 0600 before the final mode is applied.
func copyFile(source, destination string) (err error) {
	input, err := os.Open(source)
	if err != nil {
		return err
	}
	defer input.Close()

	output, err := os.OpenFile(destination, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, output.Close())
	}()

	_, err = io.Copy(output, input)
	return err
}
