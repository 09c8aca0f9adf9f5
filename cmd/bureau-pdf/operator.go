// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/bureau-pdf/lib/backend"
	"github.com/bureau-foundation/bureau-pdf/lib/config"
	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
	"github.com/bureau-foundation/bureau-pdf/lib/joblog"
	"github.com/bureau-foundation/bureau-pdf/lib/version"
)

func (a *app) commands(ctx context.Context) *Command {
	return &Command{
		Name:        "bureau-pdf",
		Summary:     "Virtual PDF printer backend",
		Description: "Virtual PDF printer backend.\n\n" + usage,
		Output:      a.stderr,
		Subcommands: []*Command{
			a.checkConfigCommand(),
			{
				Name:    "devices",
				Summary: "Print the device discovery lines",
				Run: func(args []string) error {
					return backend.Announce(a.stdout, a.configDirectory)
				},
			},
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					fmt.Fprintf(a.stdout, "bureau-pdf %s\n", version.Full())
					return nil
				},
			},
			{
				Name:    childCommand,
				Summary: "Convert one job under a dropped identity (internal)",
				Hidden:  true,
				Run: func(args []string) error {
					return a.convertChild(ctx)
				},
			},
		},
	}
}

func (a *app) checkConfigCommand() *Command {
	var (
		path    string
		device  string
		options string
	)
	return &Command{
		Name:        "check-config",
		Summary:     "Validate and print the effective configuration",
		Description: "Load a printer's configuration the way a job would, apply PPD defaults\nand job options, validate it, and print the result as YAML.",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check-config", pflag.ContinueOnError)
			flagSet.StringVar(&path, "config", "", "configuration file (default: derived from --device)")
			flagSet.StringVar(&device, "device", config.Scheme+":/", "device URI of the printer instance")
			flagSet.StringVar(&options, "options", "", "job options to apply, as passed by the scheduler")
			return flagSet
		},
		Run: func(args []string) error {
			if path == "" {
				path = config.Locate(a.getenv, device)
			}
			loaded, err := a.loadConfig(path, options)
			if err != nil {
				return err
			}
			if loaded.missing {
				fmt.Fprintf(a.stderr, "warning: %s does not exist, showing defaults\n", path)
			}
			if loaded.ppdErr != nil {
				fmt.Fprintf(a.stderr, "warning: %v\n", loaded.ppdErr)
			}
			for _, rejection := range loaded.rejections {
				fmt.Fprintf(a.stderr, "warning: %v\n", rejection.Err)
			}
			data, err := loaded.config.Dump()
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

// convertChild is the conversion child entrypoint. It reads one
// request from stdin and logs to the descriptor inherited from the
// parent.
func (a *app) convertChild(ctx context.Context) error {
	var logWriter io.Writer
	if logFile := joblog.Inherited(a.getenv); logFile != nil {
		defer logFile.Close()
		logWriter = logFile
	}

	request, err := invoke.ReadRequest(a.stdin)
	if err != nil {
		joblog.New(logWriter, joblog.MaskError, a.stderr).Error("conversion child rejected its request", "error", err)
		return &ExitError{Code: 1}
	}

	logger := joblog.New(logWriter, joblog.Mask(request.LogMask), a.stderr).With("user", request.Name)
	logger.Debug("entering conversion child")
	child := &invoke.Child{
		Credentials: a.credentials,
		Stdout:      a.stderr,
		Stderr:      a.stderr,
		Logger:      logger,
	}
	if err := child.Run(ctx, request); err != nil {
		return &ExitError{Code: 1}
	}
	return nil
}
