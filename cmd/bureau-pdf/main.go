// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/bureau-foundation/bureau-pdf/lib/backend"
	"github.com/bureau-foundation/bureau-pdf/lib/config"
	"github.com/bureau-foundation/bureau-pdf/lib/identity"
	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
	"github.com/bureau-foundation/bureau-pdf/lib/process"
)

const usage = "Usage: bureau-pdf job-id user title copies options [file]"

// childCommand is the hidden subcommand the backend re-executes itself
// with for the conversion step.
const childCommand = "convert-child"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	code := newApp().run(ctx, os.Args)
	stop()
	os.Exit(code)
}

// app holds everything the binary touches outside its own packages so
// tests can substitute it.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string

	// becomeRoot confirms the process can act as root.
	becomeRoot func() error

	// configDirectory is scanned for instance files during discovery.
	configDirectory string

	executable  func() (string, error)
	processID   int
	identities  identity.Database
	credentials invoke.Credentials
}

func newApp() *app {
	return &app{
		stdin:           os.Stdin,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		getenv:          os.Getenv,
		becomeRoot:      func() error { return unix.Setuid(0) },
		configDirectory: config.Directory,
		executable:      os.Executable,
		processID:       os.Getpid(),
		identities:      identity.System(),
		credentials:     invoke.SystemCredentials{},
	}
}

// run dispatches on the argument count the way the scheduler calls
// backends, falling through to operator subcommands.
func (a *app) run(ctx context.Context, args []string) int {
	switch {
	case len(args) <= 1:
		if err := backend.Announce(a.stdout, a.configDirectory); err != nil {
			process.Report(a.stderr, err)
		}
		return backend.ExitSuccess

	case len(args) == 6 || len(args) == 7:
		return a.runJob(ctx, args)
	}

	root := a.commands(ctx)
	if !isHelpFlag(args[1]) && root.Lookup(args[1]) == nil {
		fmt.Fprintln(a.stderr, usage)
		if suggestion := suggestCommand(args[1], root.Subcommands); suggestion != "" {
			fmt.Fprintf(a.stderr, "Did you mean %q? Run 'bureau-pdf --help' for operator commands.\n", suggestion)
		}
		return backend.ExitSuccess
	}
	if err := root.Execute(args[1:]); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(a.stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
