// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bureau-foundation/bureau-pdf/lib/config"
	"github.com/bureau-foundation/bureau-pdf/lib/identity"
	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
	"github.com/bureau-foundation/bureau-pdf/lib/provision"
	"github.com/bureau-foundation/bureau-pdf/lib/spool"
	"github.com/bureau-foundation/bureau-pdf/lib/title"
)

// Job is one submission as handed to the backend.
type Job struct {
	ID        int
	Principal string

	// Title is the title supplied with the job. "(stdin)" means none.
	Title string

	// Source is the document stream. Run closes it.
	Source io.ReadCloser
}

// Converter runs the conversion step. invoke.Launcher is the
// production implementation.
type Converter interface {
	Convert(ctx context.Context, request *invoke.Request) (*invoke.Completion, error)
}

// Result describes a finished job.
type Result struct {
	Identity       identity.Identity
	OutputPath     string
	Classification spool.Classification
	Digest         spool.Digest
	Completion     *invoke.Completion
}

// Pipeline runs jobs for one printer.
type Pipeline struct {
	Config *config.Config

	// Identities resolves principals and groups.
	Identities identity.Database

	// Credentials switches the backend itself to the print group.
	Credentials invoke.Credentials

	Converter Converter

	// ProcessID names the spool artifact, which keeps concurrent
	// backend processes apart.
	ProcessID int

	Logger *slog.Logger
}

func (p *Pipeline) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.Logger
}

// Setup switches the process to the print group and makes sure the
// spool root exists. Any failure is fatal for the invocation.
func (p *Pipeline) Setup() error {
	logger := p.logger()

	gid, err := p.Identities.LookupGroupID(p.Config.Group)
	if err != nil {
		logger.Error("print group not found", "group", p.Config.Group, "error", err)
		return fmt.Errorf("looking up print group %q: %w", p.Config.Group, err)
	}
	if err := p.Credentials.Setgid(gid); err != nil {
		logger.Error("failed to set new gid", "group", p.Config.Group, "error", err)
		return fmt.Errorf("switching to print group %q: %w", p.Config.Group, err)
	}
	logger.Debug("set new gid", "group", p.Config.Group, "gid", gid)

	return provision.EnsureSpoolRoot(p.Config.Spool, gid, logger)
}

// SpoolPath is the spool artifact of this process.
func (p *Pipeline) SpoolPath() string {
	return filepath.Join(p.Config.Spool, "bureau-pdf-"+strconv.Itoa(p.ProcessID))
}

// Run executes job. The returned error is identity.ErrDeclined for a
// declined job; [OutcomeOf] classifies it. The source is closed on
// every path, and the spool artifact never outlives Run.
func (p *Pipeline) Run(ctx context.Context, job Job) (*Result, error) {
	cfg := p.Config
	logger := p.logger().With("job", job.ID)

	resolution, err := identity.Resolve(job.Principal, identity.Config{
		Database:               p.Identities,
		UserPrefix:             cfg.UserPrefix,
		LowerCase:              cfg.LowerCase,
		AnonymousUser:          cfg.AnonUser,
		AnonymousDirectory:     cfg.AnonDirName,
		OutputTemplate:         cfg.Out,
		RemovePrefix:           cfg.RemovePrefix,
		CanonicalDirectoryName: cfg.DirPrefix,
		Logger:                 logger,
	})
	if err != nil {
		closeSource(job.Source)
		return nil, err
	}
	who := resolution.Identity
	logger = logger.With("user", who.Name)

	// The anonymous account gets anon_umask whether it was reached by
	// fallback or named directly.
	anonymousAccount := who.Anonymous || (cfg.AnonUser != "" && who.Name == cfg.AnonUser)
	mask := cfg.UserUMask.Mode()
	if anonymousAccount {
		mask = cfg.AnonUMask.Mode()
	}
	err = provision.EnsureOutputDirectory(provision.OutputDirectory{
		Path:      resolution.OutputDirectory,
		Mode:      provision.DirectoryMode(mask),
		UID:       who.UID,
		GID:       who.GID,
		Anonymous: anonymousAccount,
	}, logger)
	if err != nil {
		closeSource(job.Source)
		return nil, err
	}
	logger.Debug("user information prepared", "directory", resolution.OutputDirectory)

	splitMode := spool.SplitLF
	if cfg.FixNewlines {
		splitMode = spool.SplitAny
	}
	spoolPath := p.SpoolPath()
	spooled, err := spool.Spool(job.Source, spool.Config{
		Path:      spoolPath,
		Owner:     who.UID,
		SplitMode: splitMode,
		Logger:    logger,
	})
	if err != nil {
		logger.Error("failed to spool job", "spool", spoolPath, "error", err)
		return nil, fmt.Errorf("spooling job %d: %w", job.ID, err)
	}
	defer removeSpool(spoolPath, logger)
	logger.Debug("spool file written",
		"spool", spoolPath,
		"bytes", spooled.Artifact.Size,
		"blake3", spooled.Artifact.Digest.String(),
		"classification", spooled.Classification.String(),
	)

	titleOptions := cfg.TitleOptions()
	titleOptions.Logger = logger
	stem := title.Stem(spooled.Title, job.Title, job.ID, titleOptions)

	outputPath := OutputPath(resolution.OutputDirectory, stem, cfg.OutExtension)
	logger.Debug("output filename created", "output", outputPath)

	request := &invoke.Request{
		UID:            who.UID,
		GID:            who.GID,
		Groups:         who.Groups,
		Name:           who.Name,
		Principal:      resolution.Principal,
		Passthrough:    spooled.Classification == spool.FinalForm,
		Spool:          spoolPath,
		Output:         outputPath,
		PostProcessing: invoke.PostProcessingCommand(cfg.PostProcessing, outputPath, who.Name, resolution.Principal),
		Mode:           uint32(provision.FileMode(mask)),
		Policy:         cfg.PrivilegePolicy,
		LogMask:        cfg.LogType,
	}
	if !request.Passthrough {
		request.Command = invoke.RendererCommand(cfg.RendererCommand, cfg.Ghostscript, cfg.PDFVersion, outputPath, spoolPath)
		logger.Debug("renderer command line built", "command", request.Command)
	}

	completion, err := p.Converter.Convert(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("converting job %d: %w", job.ID, err)
	}

	logger.Info("PDF creation finished", "output", outputPath)
	return &Result{
		Identity:       who,
		OutputPath:     outputPath,
		Classification: spooled.Classification,
		Digest:         spooled.Artifact.Digest,
		Completion:     completion,
	}, nil
}

// OutputPath joins directory, stem, and extension. An empty extension
// adds no dot.
func OutputPath(directory, stem, extension string) string {
	name := stem
	if extension != "" {
		name += "." + extension
	}
	return filepath.Join(directory, name)
}

func closeSource(source io.ReadCloser) {
	if source != nil {
		source.Close()
	}
}

func removeSpool(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil {
		logger.Error("failed to unlink spool file (non fatal)", "spool", path, "error", err)
		return
	}
	logger.Debug("spool file unlinked", "spool", path)
}
