// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/bureau-pdf/lib/invoke"
	"github.com/bureau-foundation/bureau-pdf/lib/title"
)

// Directory holds the per-printer configuration files.
const Directory = "/etc/bureau-pdf"

// Scheme is the device URI scheme served by the backend.
const Scheme = "bureau-pdf"

// EnvironmentVariable overrides the configuration file path.
const EnvironmentVariable = "BUREAU_PDF_CONFIG"

// Config is the complete backend configuration. Once a job starts the
// value is treated as immutable.
type Config struct {
	// AnonDirName is the output directory for jobs resolved to the
	// anonymous identity.
	AnonDirName string `yaml:"anon_dir_name"`

	// AnonUser is the account unknown principals fall back to. Empty
	// disables anonymous printing: such jobs are declined.
	AnonUser string `yaml:"anon_user"`

	// Ghostscript is the renderer binary substituted for ${GHOSTSCRIPT}.
	Ghostscript string `yaml:"ghostscript"`

	// RendererCommand is the renderer command template. See
	// invoke.RendererCommand for its placeholders.
	RendererCommand string `yaml:"renderer_command"`

	// Group is the print group the backend switches to before
	// spooling. It also owns the spool directory.
	Group string `yaml:"group"`

	// RendererTmpdir is the renderer's TMPDIR.
	RendererTmpdir string `yaml:"renderer_tmpdir"`

	// LogDir holds the per-printer log files. Empty disables the log
	// file.
	LogDir string `yaml:"log_dir"`

	PDFVersion string `yaml:"pdf_version"`

	// PostProcessing is a command run after conversion with the output
	// path, account name, and principal appended.
	PostProcessing string `yaml:"post_processing"`

	// Out is the output directory template for named identities.
	// ${HOME} and ${USER} are filled in per job.
	Out string `yaml:"out"`

	// Spool is the directory holding spool artifacts.
	Spool string `yaml:"spool"`

	// UserPrefix is prepended to the principal before account lookup.
	UserPrefix string `yaml:"user_prefix"`

	// RemovePrefix is stripped from the principal before it replaces
	// ${USER} in Out.
	RemovePrefix string `yaml:"remove_prefix"`

	OutExtension string `yaml:"out_extension"`

	// Cut is the longest file extension removed from titles. -1
	// disables extension removal.
	Cut int `yaml:"cut"`

	// Truncate is the maximum title length in bytes. At least 8.
	Truncate int `yaml:"truncate"`

	// DirPrefix makes ${USER} in Out the resolved account name rather
	// than the submitted principal.
	DirPrefix bool `yaml:"dir_prefix"`

	Label           title.Label      `yaml:"label"`
	TitlePreference title.Preference `yaml:"title_preference"`

	// LogType is the log file mask: 1 errors, 2 status, 4 debug.
	LogType int `yaml:"log_type"`

	// LowerCase retries the account lookup with a lower-cased
	// principal.
	LowerCase bool `yaml:"lower_case"`

	DecodeHexStrings bool `yaml:"decode_hex_strings"`

	// FixNewlines accepts CR and FF as line terminators while
	// scanning PostScript.
	FixNewlines bool `yaml:"fix_newlines"`

	// AllowUnsafeOptions lets job options set any key.
	AllowUnsafeOptions bool `yaml:"allow_unsafe_options"`

	AnonUMask FileMask `yaml:"anon_umask"`
	UserUMask FileMask `yaml:"user_umask"`

	// PrivilegePolicy controls how the conversion child reacts to a
	// failed privilege transition.
	PrivilegePolicy invoke.Policy `yaml:"privilege_policy"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		AnonDirName:     "/var/spool/bureau-pdf/ANONYMOUS",
		AnonUser:        "nobody",
		Ghostscript:     "/usr/bin/gs",
		RendererCommand: invoke.DefaultRendererTemplate,
		Group:           "lp",
		RendererTmpdir:  "/var/tmp",
		LogDir:          "/var/log/cups",
		PDFVersion:      "1.4",
		Out:             "/var/spool/bureau-pdf/${USER}",
		Spool:           "/var/spool/bureau-pdf/SPOOL",
		OutExtension:    "pdf",
		Cut:             3,
		Truncate:        64,
		Label:           title.LabelNone,
		TitlePreference: title.PreferStream,
		LogType:         3,
		LowerCase:       true,
		AnonUMask:       0o000,
		UserUMask:       0o077,
		PrivilegePolicy: invoke.PolicyCompatible,
	}
}

// PathForDevice returns the configuration file for a device URI. URIs
// outside the backend's scheme, or naming no instance, map to the
// default file.
func PathForDevice(uri string) string {
	instance, ok := strings.CutPrefix(uri, Scheme+":/")
	if !ok || instance == "" {
		return filepath.Join(Directory, Scheme+".yaml")
	}
	return filepath.Join(Directory, Scheme+"-"+instance+".yaml")
}

// Locate returns the configuration file to load. getenv is consulted
// for EnvironmentVariable and DEVICE_URI; fallbackURI (the backend's
// argv[0]) is used when DEVICE_URI is not set.
func Locate(getenv func(string) string, fallbackURI string) string {
	if path := getenv(EnvironmentVariable); path != "" {
		return path
	}
	uri := getenv("DEVICE_URI")
	if uri == "" {
		uri = fallbackURI
	}
	return PathForDevice(uri)
}

// LoadFile loads configuration from path over the defaults. A missing
// file is reported with an error wrapping fs.ErrNotExist so callers can
// fall back to Default.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	cfg.expandVariables()
	cfg.clamp()
	return cfg, nil
}

// Dump renders the configuration as YAML.
func (c *Config) Dump() ([]byte, error) {
	return yaml.Marshal(c)
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in host
// paths from the environment. Out and RendererCommand carry per-job
// placeholders and are left alone.
func (c *Config) expandVariables() {
	for _, field := range []*string{&c.AnonDirName, &c.Ghostscript, &c.RendererTmpdir, &c.LogDir, &c.Spool} {
		*field = expandVars(*field, os.Getenv)
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns using getenv.
// An unset or empty variable takes the default.
func expandVars(s string, getenv func(string) string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// clamp forces numeric fields into their legal ranges.
func (c *Config) clamp() {
	c.Cut = max(c.Cut, -1)
	c.Truncate = max(c.Truncate, 8)
	c.LogType = min(max(c.LogType, 0), 7)
	c.AnonUMask &= 0o777
	c.UserUMask &= 0o777
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Spool == "" {
		errs = append(errs, errors.New("spool is required"))
	} else if !filepath.IsAbs(c.Spool) {
		errs = append(errs, fmt.Errorf("spool must be an absolute path, got %q", c.Spool))
	}
	if c.Out == "" {
		errs = append(errs, errors.New("out is required"))
	}
	if c.AnonUser != "" && c.AnonDirName == "" {
		errs = append(errs, errors.New("anon_dir_name is required when anon_user is set"))
	}
	if c.Group == "" {
		errs = append(errs, errors.New("group is required"))
	}
	if c.RendererCommand == "" {
		errs = append(errs, errors.New("renderer_command is required"))
	}
	if c.Cut < -1 {
		errs = append(errs, fmt.Errorf("cut must be at least -1, got %d", c.Cut))
	}
	if c.Truncate < 8 {
		errs = append(errs, fmt.Errorf("truncate must be at least 8, got %d", c.Truncate))
	}
	if c.LogType < 0 || c.LogType > 7 {
		errs = append(errs, fmt.Errorf("log_type must be between 0 and 7, got %d", c.LogType))
	}
	if c.Label < title.LabelNone || c.Label > title.LabelSuffix {
		errs = append(errs, fmt.Errorf("invalid label %d", int(c.Label)))
	}
	if c.PrivilegePolicy != invoke.PolicyCompatible && c.PrivilegePolicy != invoke.PolicyStrict {
		errs = append(errs, fmt.Errorf("invalid privilege_policy %d", int(c.PrivilegePolicy)))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// TitleOptions returns the title policy described by the
// configuration.
func (c *Config) TitleOptions() title.Options {
	return title.Options{
		DecodeHexStrings: c.DecodeHexStrings,
		Cut:              c.Cut,
		Truncate:         c.Truncate,
		Preference:       c.TitlePreference,
		Label:            c.Label,
	}
}
