// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package backend

import (
	"errors"
	"strconv"

	"github.com/bureau-foundation/bureau-pdf/lib/identity"
)

// Outcome is the terminal state of a job.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeDeclined
	OutcomeFatal
)

// Backend exit statuses understood by the print scheduler.
const (
	ExitSuccess      = 0
	ExitAuthRequired = 2
	ExitCancel       = 5
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDeclined:
		return "declined"
	case OutcomeFatal:
		return "fatal"
	default:
		return "Outcome(" + strconv.Itoa(int(o)) + ")"
	}
}

// ExitCode maps the outcome to a backend exit status. A fatal job is
// cancelled rather than retried: retrying cannot fix a missing account
// or an unwritable directory.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeSuccess:
		return ExitSuccess
	case OutcomeDeclined:
		return ExitAuthRequired
	default:
		return ExitCancel
	}
}

// OutcomeOf classifies the error returned by [Pipeline.Run].
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, identity.ErrDeclined):
		return OutcomeDeclined
	default:
		return OutcomeFatal
	}
}
