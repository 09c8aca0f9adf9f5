// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package title

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"unicode/utf8"
)

// Label controls whether and where the job label ("job_<id>") is
// attached to the stem.
type Label int

const (
	LabelNone Label = iota
	LabelPrefix
	LabelSuffix
)

var labelNames = []string{"none", "prefix", "suffix"}

func (l Label) String() string {
	if l < 0 || int(l) >= len(labelNames) {
		return fmt.Sprintf("Label(%d)", int(l))
	}
	return labelNames[l]
}

// MarshalText encodes the label as its name.
func (l Label) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText accepts a label name or the legacy numeric form
// (0 = none, 1 = prefix, 2 = suffix, out-of-range values clamped).
func (l *Label) UnmarshalText(text []byte) error {
	value := string(text)
	for index, name := range labelNames {
		if value == name {
			*l = Label(index)
			return nil
		}
	}
	number, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid label %q: must be one of %v", value, labelNames)
	}
	*l = Label(min(max(number, 0), int(LabelSuffix)))
	return nil
}

// Preference chooses which title source is tried first.
type Preference int

const (
	// PreferStream tries the %%Title: of the document first.
	PreferStream Preference = iota
	// PreferSupplied tries the title supplied with the job first.
	PreferSupplied
)

func (p Preference) String() string {
	if p == PreferSupplied {
		return "supplied"
	}
	return "stream"
}

// MarshalText encodes the preference as its name.
func (p Preference) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText accepts "stream", "supplied", or the legacy numeric
// form where zero means stream and anything else means supplied.
func (p *Preference) UnmarshalText(text []byte) error {
	switch value := string(text); value {
	case "stream":
		*p = PreferStream
	case "supplied":
		*p = PreferSupplied
	default:
		number, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid title preference %q: must be stream or supplied", value)
		}
		*p = PreferStream
		if number != 0 {
			*p = PreferSupplied
		}
	}
	return nil
}

// Options is the title policy.
type Options struct {
	// DecodeHexStrings enables hex string decoding followed by the
	// PermissiveUnicode sanitizer.
	DecodeHexStrings bool

	// Cut is the longest extension (without the dot) that is removed.
	// -1 disables extension removal.
	Cut int

	// Truncate is the maximum stem length in bytes before labelling.
	// Zero means no limit.
	Truncate int

	// Preference orders the two title sources.
	Preference Preference

	// Label places the job label.
	Label Label

	// Logger receives debug records for each stage that changes the
	// title. Nil discards them.
	Logger *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return o.Logger
}

// Normalize runs raw through every normalization stage and returns
// the resulting stem, or "" when the title is rejected.
func Normalize(raw string, options Options) string {
	logger := options.logger()
	title := []byte(raw)

	if options.DecodeHexStrings && IsHexString(title) {
		logger.Debug("decoding hex string title", "title", raw)
		title = DecodeHexString(title)
		Sanitize(title, PermissiveUnicode)
	} else if options.DecodeHexStrings {
		Sanitize(title, PermissiveUnicode)
	} else {
		Sanitize(title, Strict)
	}

	if len(title) > 1 {
		trimmed := bytes.TrimRight(title, "_")
		if len(trimmed) != len(title) {
			logger.Debug("removing trailing filler from title", "title", string(title))
			title = trimmed
		}
		// A single leading underscore is kept; a longer run is filler.
		leading := len(title) - len(bytes.TrimLeft(title, "_"))
		if leading > 1 {
			logger.Debug("removing leading filler from title", "title", string(title))
			title = title[leading:]
		}
	}

	for len(title) > 2 && title[0] == '(' && title[len(title)-1] == ')' {
		logger.Debug("removing enclosing parentheses from title", "title", string(title))
		title = title[1 : len(title)-1]
	}

	for _, separator := range []byte{'/', '\\'} {
		if cut := bytes.LastIndexByte(title, separator); cut >= 0 {
			logger.Debug("removing directory components from title", "title", string(title))
			title = title[cut+1:]
		}
	}

	if dot := bytes.LastIndexByte(title, '.'); dot > 0 && len(title)-dot <= options.Cut+1 {
		logger.Debug("removing file name extension from title", "extension", string(title[dot:]))
		title = title[:dot]
	}

	if options.Truncate > 0 && len(title) > options.Truncate {
		title = truncate(title, options.Truncate)
		logger.Debug("truncating title", "title", string(title))
	}

	// "." and ".." name directories, not files.
	if stem := string(title); stem != "." && stem != ".." {
		return stem
	}
	logger.Debug("title names a directory", "title", string(title))
	return ""
}

// truncate shortens title to at most limit bytes, backing off up to
// utf8.UTFMax-1 bytes so a multi-byte character is not split.
func truncate(title []byte, limit int) []byte {
	end := limit
	for backoff := 0; backoff < utf8.UTFMax-1 && end > 0 && end < len(title) && !utf8.RuneStart(title[end]); backoff++ {
		end--
	}
	if end == 0 || (end < len(title) && !utf8.RuneStart(title[end])) {
		end = limit
	}
	return title[:end]
}

// Placeholder titles that CUPS passes when a job was read from stdin.
const (
	stdinTitle       = "(stdin)"
	stdinStreamTitle = "((stdin))"
)

// Stem picks the output filename stem for a job. streamTitle is the
// raw %%Title: value (empty when none was found); suppliedTitle is the
// title given with the job. Both are normalized in the configured
// order and the first non-empty result wins.
func Stem(streamTitle, suppliedTitle string, jobID int, options Options) string {
	logger := options.logger()

	sources := []string{dropPlaceholder(streamTitle), dropPlaceholder(suppliedTitle)}
	names := []string{"stream", "supplied"}
	if options.Preference == PreferSupplied {
		sources[0], sources[1] = sources[1], sources[0]
		names[0], names[1] = names[1], names[0]
	}

	stem := ""
	for index, source := range sources {
		logger.Debug("trying title", "source", names[index], "title", source)
		if stem = Normalize(source, options); stem != "" {
			break
		}
		logger.Debug("title rejected", "source", names[index])
	}

	label := "job_" + strconv.Itoa(jobID)
	if stem == "" {
		if options.Label == LabelSuffix {
			stem = "untitled_document-" + label
		} else {
			stem = label + "-untitled_document"
		}
		logger.Debug("no usable title, using default", "stem", stem)
		return stem
	}

	switch options.Label {
	case LabelPrefix:
		stem = label + "-" + stem
	case LabelSuffix:
		stem = stem + "-" + label
	}
	logger.Debug("title retrieved", "stem", stem)
	return stem
}

func dropPlaceholder(title string) string {
	if title == stdinTitle || title == stdinStreamTitle {
		return ""
	}
	return title
}
