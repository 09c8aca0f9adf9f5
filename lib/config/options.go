// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Tier identifies where an option came from.
type Tier int

const (
	// TierFile is the configuration file.
	TierFile Tier = iota
	// TierPPD is the printer's PPD defaults.
	TierPPD
	// TierJob is the option list attached to a job.
	TierJob
)

func (t Tier) String() string {
	switch t {
	case TierFile:
		return "file"
	case TierPPD:
		return "ppd"
	case TierJob:
		return "job"
	default:
		return "Tier(" + strconv.Itoa(int(t)) + ")"
	}
}

// Option is one key/value pair from an option source.
type Option struct {
	Key   string
	Value string
}

// Rejection records an option that was not applied.
type Rejection struct {
	Option
	Err error
}

// setting describes one configurable key.
type setting struct {
	key    string
	legacy string

	// job keys may be set from TierJob without allow_unsafe_options.
	job bool

	assign func(c *Config, value string) error
}

var settings = []setting{
	{"anon_dir_name", "AnonDirName", false, func(c *Config, v string) error { c.AnonDirName = v; return nil }},
	{"anon_user", "AnonUser", false, func(c *Config, v string) error { c.AnonUser = v; return nil }},
	{"ghostscript", "GhostScript", false, func(c *Config, v string) error { c.Ghostscript = v; return nil }},
	{"renderer_command", "GSCall", false, func(c *Config, v string) error { c.RendererCommand = v; return nil }},
	{"group", "Grp", false, func(c *Config, v string) error { c.Group = v; return nil }},
	{"renderer_tmpdir", "GSTmp", false, func(c *Config, v string) error { c.RendererTmpdir = v; return nil }},
	{"log_dir", "Log", false, func(c *Config, v string) error { c.LogDir = v; return nil }},
	{"pdf_version", "PDFVer", true, func(c *Config, v string) error { c.PDFVersion = v; return nil }},
	{"post_processing", "PostProcessing", true, func(c *Config, v string) error { c.PostProcessing = v; return nil }},
	{"out", "Out", false, func(c *Config, v string) error { c.Out = v; return nil }},
	{"spool", "Spool", false, func(c *Config, v string) error { c.Spool = v; return nil }},
	{"user_prefix", "UserPrefix", false, func(c *Config, v string) error { c.UserPrefix = v; return nil }},
	{"remove_prefix", "RemovePrefix", false, func(c *Config, v string) error { c.RemovePrefix = v; return nil }},
	{"out_extension", "OutExtension", true, func(c *Config, v string) error { c.OutExtension = v; return nil }},
	{"cut", "Cut", true, assignInt(func(c *Config) *int { return &c.Cut })},
	{"truncate", "Truncate", true, assignInt(func(c *Config) *int { return &c.Truncate })},
	{"dir_prefix", "DirPrefix", false, assignFlag(func(c *Config) *bool { return &c.DirPrefix })},
	{"label", "Label", true, func(c *Config, v string) error { return c.Label.UnmarshalText([]byte(v)) }},
	{"log_type", "LogType", false, assignInt(func(c *Config) *int { return &c.LogType })},
	{"lower_case", "LowerCase", false, assignFlag(func(c *Config) *bool { return &c.LowerCase })},
	{"title_preference", "TitlePref", true, func(c *Config, v string) error { return c.TitlePreference.UnmarshalText([]byte(v)) }},
	{"decode_hex_strings", "DecodeHexStrings", false, assignFlag(func(c *Config) *bool { return &c.DecodeHexStrings })},
	{"fix_newlines", "FixNewlines", false, assignFlag(func(c *Config) *bool { return &c.FixNewlines })},
	{"allow_unsafe_options", "AllowUnsafeOptions", false, assignFlag(func(c *Config) *bool { return &c.AllowUnsafeOptions })},
	{"anon_umask", "AnonUMask", false, assignMask(func(c *Config) *FileMask { return &c.AnonUMask })},
	{"user_umask", "UserUMask", true, assignMask(func(c *Config) *FileMask { return &c.UserUMask })},
	{"privilege_policy", "PrivilegePolicy", false, func(c *Config, v string) error { return c.PrivilegePolicy.UnmarshalText([]byte(v)) }},
}

func assignInt(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, value string) error {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		*field(c) = parsed
		return nil
	}
}

// assignFlag accepts boolean words and integers (non-zero is true).
func assignFlag(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, value string) error {
		value = strings.TrimSpace(value)
		if parsed, err := strconv.ParseBool(value); err == nil {
			*field(c) = parsed
			return nil
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		*field(c) = parsed != 0
		return nil
	}
}

func assignMask(field func(*Config) *FileMask) func(*Config, string) error {
	return func(c *Config, value string) error {
		parsed, err := ParseFileMask(strings.TrimSpace(value))
		if err != nil {
			return err
		}
		*field(c) = parsed
		return nil
	}
}

func lookupSetting(key string) (setting, bool) {
	for _, candidate := range settings {
		if strings.EqualFold(key, candidate.key) || strings.EqualFold(key, candidate.legacy) {
			return candidate, true
		}
	}
	return setting{}, false
}

// Apply returns a copy of c with options from tier applied in order.
// Unknown keys are skipped silently. Options the tier may not set, and
// values that fail to parse, are returned as rejections and leave the
// copy unchanged for that key.
func (c *Config) Apply(tier Tier, options []Option) (*Config, []Rejection) {
	result := *c
	var rejections []Rejection
	for _, option := range options {
		target, ok := lookupSetting(option.Key)
		if !ok {
			continue
		}
		if tier == TierJob && !target.job && !result.AllowUnsafeOptions {
			rejections = append(rejections, Rejection{Option: option, Err: fmt.Errorf("unsafe option not allowed from %s options: %s", tier, option.Key)})
			continue
		}
		candidate := result
		if err := target.assign(&candidate, option.Value); err != nil {
			rejections = append(rejections, Rejection{Option: option, Err: fmt.Errorf("option %s: %w", option.Key, err)})
			continue
		}
		result = candidate
	}
	result.clamp()
	return &result, rejections
}

// ParseJobOptions splits a job option string into options. Options
// are separated by whitespace and take the forms name=value, name
// (value "true"), and noname (value "false"). Values may be quoted
// with single or double quotes or braces, and a backslash escapes the
// next character. Underscores in values are read as spaces, so a
// title or hook argument can be written without quoting.
func ParseJobOptions(text string) []Option {
	var options []Option
	position := 0
	for {
		for position < len(text) && isOptionSpace(text[position]) {
			position++
		}
		if position >= len(text) {
			return options
		}

		start := position
		for position < len(text) && text[position] != '=' && !isOptionSpace(text[position]) {
			position++
		}
		name := text[start:position]

		if position >= len(text) || text[position] != '=' {
			if trimmed, ok := strings.CutPrefix(name, "no"); ok && trimmed != "" {
				options = append(options, Option{Key: trimmed, Value: "false"})
			} else {
				options = append(options, Option{Key: name, Value: "true"})
			}
			continue
		}

		position++ // '='
		var value strings.Builder
		var closing byte
	scan:
		for position < len(text) {
			char := text[position]
			switch {
			case closing != 0 && char == closing:
				closing = 0
			case closing == 0 && (char == '\'' || char == '"'):
				closing = char
			case closing == 0 && char == '{':
				closing = '}'
			case char == '\\' && position+1 < len(text):
				position++
				value.WriteByte(text[position])
			case closing == 0 && isOptionSpace(char):
				break scan
			default:
				value.WriteByte(char)
			}
			position++
		}
		if name != "" {
			options = append(options, Option{Key: name, Value: strings.ReplaceAll(value.String(), "_", " ")})
		}
	}
}

func isOptionSpace(char byte) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}

// ParsePPDDefaults reads the default choice of every option from a
// PPD file: each "*Default<Keyword>: <choice>" line becomes an option
// named Keyword.
func ParsePPDDefaults(r io.Reader) ([]Option, error) {
	var options []Option
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		rest, ok := strings.CutPrefix(line, "*Default")
		if !ok {
			continue
		}
		keyword, choice, ok := strings.Cut(rest, ":")
		if !ok || keyword == "" || strings.ContainsAny(keyword, " \t") {
			continue
		}
		choice = strings.TrimSpace(choice)
		choice = strings.Trim(choice, `"`)
		options = append(options, Option{Key: keyword, Value: choice})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading PPD: %w", err)
	}
	return options, nil
}
