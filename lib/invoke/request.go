// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"

	"github.com/bureau-foundation/bureau-pdf/lib/codec"
)

// Policy controls how the child reacts to a failed privilege
// transition.
type Policy int

const (
	// PolicyCompatible logs each failed transition and continues.
	PolicyCompatible Policy = iota

	// PolicyStrict aborts the child on the first failed transition,
	// before the renderer or the hook is executed.
	PolicyStrict
)

func (p Policy) String() string {
	switch p {
	case PolicyCompatible:
		return "compatible"
	case PolicyStrict:
		return "strict"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	switch p {
	case PolicyCompatible, PolicyStrict:
		return []byte(p.String()), nil
	default:
		return nil, fmt.Errorf("unknown privilege policy %d", int(p))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "compatible":
		*p = PolicyCompatible
	case "strict":
		*p = PolicyStrict
	default:
		return fmt.Errorf("unknown privilege policy %q (expected compatible or strict)", text)
	}
	return nil
}

// Request is everything the conversion child needs. The parent builds
// it after identity resolution, provisioning, and spooling are done.
type Request struct {
	// UID, GID, and Groups are the resolved identity the child drops
	// to. Groups is the full supplementary group list.
	UID    int   `cbor:"uid"`
	GID    int   `cbor:"gid"`
	Groups []int `cbor:"groups"`

	// Name is the resolved account name. Principal is the name the
	// job was submitted under.
	Name      string `cbor:"name"`
	Principal string `cbor:"principal"`

	// Passthrough is set for final-form documents: the spool artifact
	// is copied to Output instead of being rendered.
	Passthrough bool `cbor:"passthrough"`

	Spool  string `cbor:"spool"`
	Output string `cbor:"output"`

	// Command is the fully expanded renderer command line. Unused
	// when Passthrough is set.
	Command string `cbor:"command,omitempty"`

	// PostProcessing is the fully expanded hook command line, or
	// empty when no hook is configured.
	PostProcessing string `cbor:"post_processing,omitempty"`

	// Mode is applied to Output after conversion.
	Mode uint32 `cbor:"mode"`

	Policy Policy `cbor:"policy"`

	// LogMask filters the child's records in the inherited job log.
	LogMask int `cbor:"log_mask"`
}

// FileMode returns Mode as permission bits.
func (r *Request) FileMode() fs.FileMode {
	return fs.FileMode(r.Mode).Perm()
}

// Validate checks that a request is complete enough to act on.
func (r *Request) Validate() error {
	var errs []error
	if r.UID < 0 {
		errs = append(errs, fmt.Errorf("uid must be non-negative, got %d", r.UID))
	}
	if r.GID < 0 {
		errs = append(errs, fmt.Errorf("gid must be non-negative, got %d", r.GID))
	}
	if r.Spool == "" {
		errs = append(errs, errors.New("spool path is required"))
	}
	if r.Output == "" {
		errs = append(errs, errors.New("output path is required"))
	}
	if !r.Passthrough && r.Command == "" {
		errs = append(errs, errors.New("renderer command is required for page-description jobs"))
	}
	if r.Policy != PolicyCompatible && r.Policy != PolicyStrict {
		errs = append(errs, fmt.Errorf("unknown privilege policy %d", int(r.Policy)))
	}
	return errors.Join(errs...)
}

// ReadRequest decodes and validates one request from r.
func ReadRequest(r io.Reader) (*Request, error) {
	var request Request
	if err := codec.NewDecoder(r).Decode(&request); err != nil {
		return nil, fmt.Errorf("decoding conversion request: %w", err)
	}
	if err := request.Validate(); err != nil {
		return nil, fmt.Errorf("invalid conversion request: %w", err)
	}
	return &request, nil
}
