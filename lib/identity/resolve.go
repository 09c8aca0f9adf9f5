// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package identity

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
)

// ErrDeclined is returned by [Resolve] when the principal has no
// account and anonymous access is not configured. It is a terminal
// outcome for the job, not a failure of the backend.
var ErrDeclined = errors.New("identity: anonymous access not configured")

// Identity is the local account a job runs as. It is never modified
// after [Resolve] returns it.
type Identity struct {
	UID  int
	GID  int
	Name string
	Home string

	// Groups is the complete supplementary group list, primary group
	// included.
	Groups []int

	// Anonymous is set when the principal had no account of its own.
	Anonymous bool
}

// Resolution is the outcome of [Resolve].
type Resolution struct {
	Identity Identity

	// Principal is the name the job was submitted under, lower-cased
	// if the lower-case retry produced the match.
	Principal string

	// OutputDirectory is the directory the job's output goes to.
	OutputDirectory string
}

// Config controls [Resolve].
type Config struct {
	// Database supplies accounts and groups.
	Database Database

	// UserPrefix is prepended to the principal before lookup.
	UserPrefix string

	// LowerCase enables a second lookup with the principal lower-cased.
	LowerCase bool

	// AnonymousUser is the fallback account. Empty disables anonymous
	// access.
	AnonymousUser string

	// AnonymousDirectory is the output directory of anonymous jobs.
	AnonymousDirectory string

	// OutputTemplate is the output directory of named accounts. It may
	// contain ${HOME} and ${USER}.
	OutputTemplate string

	// RemovePrefix is stripped from the principal before it is
	// substituted for ${USER}.
	RemovePrefix string

	// CanonicalDirectoryName substitutes the account name for ${USER}
	// instead of the principal.
	CanonicalDirectoryName bool

	// Logger receives lookup records. Nil discards them.
	Logger *slog.Logger
}

// Resolve finds the identity for principal.
func Resolve(principal string, config Config) (*Resolution, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	account, err := config.Database.LookupAccount(config.UserPrefix + principal)
	if errors.Is(err, ErrUnknownAccount) && config.LowerCase {
		logger.Debug("unknown user", "user", config.UserPrefix+principal)
		principal = strings.ToLower(principal)
		logger.Debug("trying lower case user name", "user", principal)
		account, err = config.Database.LookupAccount(config.UserPrefix + principal)
	}

	resolution := &Resolution{Principal: principal}
	switch {
	case err == nil:
		logger.Debug("user identified", "user", account.Name)
		resolution.OutputDirectory = ExpandOutputTemplate(config.OutputTemplate, account, principal, config)

	case errors.Is(err, ErrUnknownAccount):
		if config.AnonymousUser == "" {
			logger.Info("anonymous access denied", "user", config.UserPrefix+principal)
			return nil, ErrDeclined
		}
		logger.Debug("unknown user, using anonymous account",
			"user", config.UserPrefix+principal,
			"anonymous_user", config.AnonymousUser,
		)
		account, err = config.Database.LookupAccount(config.AnonymousUser)
		if err != nil {
			logger.Error("username for anonymous access unknown", "anonymous_user", config.AnonymousUser, "error", err)
			return nil, fmt.Errorf("anonymous account %q: %w", config.AnonymousUser, err)
		}
		resolution.Identity.Anonymous = true
		resolution.OutputDirectory = trimLineEnding(config.AnonymousDirectory)

	default:
		return nil, err
	}
	logger.Debug("output directory name generated", "directory", resolution.OutputDirectory)

	groups, err := config.Database.GroupIDs(account)
	if err != nil {
		logger.Error("failed to list groups", "user", account.Name, "error", err)
		return nil, err
	}

	resolution.Identity.UID = account.UID
	resolution.Identity.GID = account.GID
	resolution.Identity.Name = account.Name
	resolution.Identity.Home = account.Home
	resolution.Identity.Groups = slices.Clone(groups)
	return resolution, nil
}

var templateVariable = regexp.MustCompile(`\$\{(HOME|USER)\}`)

// ExpandOutputTemplate substitutes ${HOME} and ${USER} in template for
// a named account. Other ${...} sequences are left as written.
func ExpandOutputTemplate(template string, account Account, principal string, config Config) string {
	name := principal
	if config.CanonicalDirectoryName {
		name = account.Name
	} else if config.RemovePrefix != "" && len(name) > len(config.RemovePrefix) {
		name = strings.TrimPrefix(name, config.RemovePrefix)
	}

	expanded := templateVariable.ReplaceAllStringFunc(template, func(match string) string {
		if match == "${HOME}" {
			return account.Home
		}
		return name
	})
	return trimLineEnding(expanded)
}

func trimLineEnding(path string) string {
	return strings.TrimRight(path, "\r\n")
}
