// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"

	"github.com/bureau-foundation/bureau-pdf/lib/backend"
	"github.com/bureau-foundation/bureau-pdf/lib/clock"
	"github.com/bureau-foundation/bureau-pdf/lib/config"
	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
	"github.com/bureau-foundation/bureau-pdf/lib/joblog"
	"github.com/bureau-foundation/bureau-pdf/lib/process"
	"github.com/bureau-foundation/bureau-pdf/lib/provision"
)

// loadedConfig is the effective configuration plus everything worth
// logging about how it was assembled. Loading happens before the job
// log is open, so the records are replayed once it is.
type loadedConfig struct {
	config     *config.Config
	path       string
	missing    bool
	ppdErr     error
	rejections []config.Rejection
}

// loadConfig reads the configuration file at path (defaults if it does
// not exist), then applies the printer's PPD defaults and the job
// options.
func (a *app) loadConfig(path, jobOptions string) (*loadedConfig, error) {
	loaded := &loadedConfig{path: path}

	cfg, err := config.LoadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		cfg = config.Default()
		loaded.missing = true
	case err != nil:
		return nil, err
	}

	if ppdPath := a.getenv("PPD"); ppdPath != "" {
		options, err := readPPDDefaults(ppdPath)
		if err != nil {
			loaded.ppdErr = err
		} else {
			var rejections []config.Rejection
			cfg, rejections = cfg.Apply(config.TierPPD, options)
			loaded.rejections = append(loaded.rejections, rejections...)
		}
	}

	var rejections []config.Rejection
	cfg, rejections = cfg.Apply(config.TierJob, config.ParseJobOptions(jobOptions))
	loaded.rejections = append(loaded.rejections, rejections...)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}
	loaded.config = cfg
	return loaded, nil
}

func readPPDDefaults(path string) ([]config.Option, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PPD file: %w", err)
	}
	defer file.Close()
	return config.ParsePPDDefaults(file)
}

func (l *loadedConfig) log(logger *slog.Logger) {
	if l.missing {
		logger.Error("cannot open config, using defaults", "config", l.path)
	}
	if l.ppdErr != nil {
		logger.Error("could not read PPD defaults", "error", l.ppdErr)
	}
	for _, rejection := range l.rejections {
		logger.Error("option refused", "key", rejection.Key, "value", rejection.Value, "error", rejection.Err)
	}
	if data, err := l.config.Dump(); err == nil {
		logger.Debug("final configuration", "config", string(data))
	}
}

// runJob is the backend's job mode: args are device URI, job id,
// user, title, copies, options, and an optional file.
func (a *app) runJob(ctx context.Context, args []string) int {
	if err := a.becomeRoot(); err != nil {
		fmt.Fprintln(a.stderr, "bureau-pdf cannot be called without root privileges!")
		return backend.ExitSuccess
	}
	defer provision.SetUmask(0o077)()

	jobID, err := strconv.Atoi(args[1])
	if err != nil || jobID < 0 {
		process.Report(a.stderr, fmt.Errorf("invalid job id %q", args[1]))
		return backend.ExitCancel
	}

	loaded, err := a.loadConfig(config.Locate(a.getenv, args[0]), args[5])
	if err != nil {
		process.Report(a.stderr, err)
		return backend.ExitCancel
	}
	cfg := loaded.config

	printer := a.getenv("PRINTER")
	var logFile *os.File
	var logWriter io.Writer
	if cfg.LogDir != "" {
		if err := provision.EnsureLogDirectory(cfg.LogDir); err != nil {
			process.Report(a.stderr, err)
			return backend.ExitCancel
		}
		logFile, err = joblog.Open(cfg.LogDir, printer)
		if err != nil {
			process.Report(a.stderr, err)
		} else {
			defer logFile.Close()
			logWriter = logFile
		}
	}
	logger := joblog.New(logWriter, joblog.Mask(cfg.LogType), a.stderr).With("printer", printer)
	loaded.log(logger)

	executable, err := a.executable()
	if err != nil {
		logger.Error("cannot locate own executable", "error", err)
		return backend.ExitCancel
	}

	pipeline := &backend.Pipeline{
		Config:      cfg,
		Identities:  a.identities,
		Credentials: a.credentials,
		Converter: &invoke.Launcher{
			Executable:    executable,
			Args:          []string{childCommand},
			TempDirectory: cfg.RendererTmpdir,
			LogFile:       logFile,
			Stderr:        a.stderr,
			Clock:         clock.Real(),
			Logger:        logger,
		},
		ProcessID: a.processID,
		Logger:    logger,
	}
	if err := pipeline.Setup(); err != nil {
		return backend.ExitCancel
	}
	logger.Debug("initialization finished")

	source, err := a.openSource(args)
	if err != nil {
		logger.Error("cannot open job input", "error", err)
		return backend.ExitCancel
	}

	_, err = pipeline.Run(ctx, backend.Job{
		ID:        jobID,
		Principal: args[2],
		Title:     args[3],
		Source:    source,
	})
	outcome := backend.OutcomeOf(err)
	if outcome == backend.OutcomeFatal {
		logger.Error("job failed", "error", err)
	}
	return outcome.ExitCode()
}

// openSource returns the job file named by the seventh argument, or
// stdin when there is none.
func (a *app) openSource(args []string) (io.ReadCloser, error) {
	if len(args) == 7 {
		return os.Open(args[6])
	}
	return io.NopCloser(a.stdin), nil
}
