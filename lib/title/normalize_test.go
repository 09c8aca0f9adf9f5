// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package title

import (
	"strings"
	"testing"
)

func defaultOptions() Options {
	return Options{Cut: 3, Truncate: 64}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		modify   func(*Options)
		expected string
	}{
		{name: "empty", input: "", expected: ""},
		{name: "space and extension", input: "My Report.txt", expected: "My_Report"},
		{name: "filler both ends", input: "__hello__", expected: "hello"},
		{name: "single leading filler kept", input: "_hello", expected: "_hello"},
		{name: "only filler", input: "___", expected: ""},
		{name: "lone filler", input: "_", expected: "_"},
		{name: "parentheses become filler", input: "((draft))", expected: "draft"},
		{name: "long extension kept", input: "report.final", expected: "report.final"},
		{name: "dotfile kept", input: ".bashrc", expected: ".bashrc"},
		{name: "only last extension cut", input: "archive.tar.gz", expected: "archive.tar"},
		{name: "separators sanitized", input: "/home/alice/notes.md", expected: "_home_alice_notes"},
		{name: "current directory rejected", input: ".", expected: ""},
		{name: "parent directory cut to current and rejected", input: "..", expected: ""},
		{
			name:     "parent directory rejected",
			input:    "..",
			modify:   func(o *Options) { o.Cut = -1 },
			expected: "",
		},
		{
			name:     "three dots kept",
			input:    "...",
			modify:   func(o *Options) { o.Cut = -1 },
			expected: "...",
		},
		{
			name:     "cut disabled",
			input:    "main.c",
			modify:   func(o *Options) { o.Cut = -1 },
			expected: "main.c",
		},
		{
			name:     "cut zero removes trailing dot",
			input:    "file.",
			modify:   func(o *Options) { o.Cut = 0 },
			expected: "file",
		},
		{
			name:     "truncate",
			input:    strings.Repeat("a", 100),
			expected: strings.Repeat("a", 64),
		},
		{
			name:     "hex string decoded",
			input:    "<48656C6C6F20576F726C64>",
			modify:   func(o *Options) { o.DecodeHexStrings = true },
			expected: "Hello_World",
		},
		{
			name:     "hex string with unicode",
			input:    "<c3a974c3a9>",
			modify:   func(o *Options) { o.DecodeHexStrings = true },
			expected: "été",
		},
		{
			name:     "hex string left alone when disabled",
			input:    "<4142>",
			expected: "_4142",
		},
		{
			name:     "permissive without hex",
			input:    "naïve plan",
			modify:   func(o *Options) { o.DecodeHexStrings = true },
			expected: "naïve_plan",
		},
		{
			name:  "truncate keeps utf-8 whole",
			input: "aaaaaaaé",
			modify: func(o *Options) {
				o.DecodeHexStrings = true
				o.Truncate = 8
			},
			expected: "aaaaaaa",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			options := defaultOptions()
			if test.modify != nil {
				test.modify(&options)
			}
			got := Normalize(test.input, options)
			if got != test.expected {
				t.Errorf("Normalize(%q) = %q, expected %q", test.input, got, test.expected)
			}
			if strings.ContainsAny(got, "/\\") {
				t.Errorf("Normalize(%q) = %q contains a path separator", test.input, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"My Report.txt",
		"__hello__",
		"_hello",
		"report.final",
		"Quarterly results (Q3) 2026",
		strings.Repeat("x", 200),
		"<c3a974c3a9>",
	}
	for _, decode := range []bool{false, true} {
		options := defaultOptions()
		options.DecodeHexStrings = decode
		for _, input := range inputs {
			once := Normalize(input, options)
			if once == "" {
				continue
			}
			twice := Normalize(once, options)
			if twice != once {
				t.Errorf("decode=%v: Normalize(%q) = %q, but normalizing again gave %q", decode, input, once, twice)
			}
		}
	}
}

// Each pass removes at most one extension, so a name with several
// short extensions keeps shrinking when normalized again.
func TestNormalizeCutsOneExtensionPerPass(t *testing.T) {
	options := defaultOptions()
	once := Normalize("a.b.c", options)
	if once != "a.b" {
		t.Fatalf("expected a.b after one pass, got %q", once)
	}
	if twice := Normalize(once, options); twice != "a" {
		t.Errorf("expected a after a second pass, got %q", twice)
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		name     string
		stream   string
		supplied string
		jobID    int
		modify   func(*Options)
		expected string
	}{
		{
			name:     "stream title with suffix label",
			stream:   "My Report.txt",
			supplied: "(stdin)",
			jobID:    42,
			modify:   func(o *Options) { o.Label = LabelSuffix },
			expected: "My_Report-job_42",
		},
		{
			name:     "untitled with prefix label",
			stream:   "((stdin))",
			supplied: "(stdin)",
			jobID:    7,
			modify:   func(o *Options) { o.Label = LabelPrefix },
			expected: "job_7-untitled_document",
		},
		{
			name:     "untitled with suffix label",
			jobID:    7,
			modify:   func(o *Options) { o.Label = LabelSuffix },
			expected: "untitled_document-job_7",
		},
		{
			name:     "untitled without label",
			supplied: "___",
			jobID:    3,
			expected: "job_3-untitled_document",
		},
		{
			name:     "stream preferred",
			stream:   "From Stream",
			supplied: "From Command",
			expected: "From_Stream",
		},
		{
			name:     "supplied preferred",
			stream:   "From Stream",
			supplied: "From Command",
			modify:   func(o *Options) { o.Preference = PreferSupplied },
			expected: "From_Command",
		},
		{
			name:     "falls back to supplied",
			stream:   "",
			supplied: "invoice.ps",
			jobID:    9,
			modify:   func(o *Options) { o.Label = LabelPrefix },
			expected: "job_9-invoice",
		},
		{
			name:     "directory title falls back to supplied",
			stream:   "..",
			supplied: "minutes",
			jobID:    5,
			expected: "minutes",
		},
		{
			name:     "directory titles use default stem",
			stream:   "..",
			supplied: ".",
			jobID:    5,
			modify:   func(o *Options) { o.Cut = -1 },
			expected: "job_5-untitled_document",
		},
		{
			name:     "falls back to stream",
			stream:   "letter",
			supplied: "(stdin)",
			modify:   func(o *Options) { o.Preference = PreferSupplied },
			expected: "letter",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			options := defaultOptions()
			if test.modify != nil {
				test.modify(&options)
			}
			got := Stem(test.stream, test.supplied, test.jobID, options)
			if got != test.expected {
				t.Errorf("Stem(%q, %q, %d) = %q, expected %q", test.stream, test.supplied, test.jobID, got, test.expected)
			}
		})
	}
}

func TestLabelUnmarshalText(t *testing.T) {
	tests := []struct {
		input    string
		expected Label
	}{
		{"none", LabelNone},
		{"prefix", LabelPrefix},
		{"suffix", LabelSuffix},
		{"0", LabelNone},
		{"1", LabelPrefix},
		{"2", LabelSuffix},
		{"9", LabelSuffix},
		{"-4", LabelNone},
	}
	for _, test := range tests {
		var label Label
		if err := label.UnmarshalText([]byte(test.input)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", test.input, err)
		}
		if label != test.expected {
			t.Errorf("UnmarshalText(%q) = %v, expected %v", test.input, label, test.expected)
		}
	}

	var label Label
	if err := label.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown label")
	}
}

func TestPreferenceUnmarshalText(t *testing.T) {
	var preference Preference
	for input, expected := range map[string]Preference{
		"stream":   PreferStream,
		"supplied": PreferSupplied,
		"0":        PreferStream,
		"1":        PreferSupplied,
	} {
		if err := preference.UnmarshalText([]byte(input)); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", input, err)
		}
		if preference != expected {
			t.Errorf("UnmarshalText(%q) = %v, expected %v", input, preference, expected)
		}
	}
	if err := preference.UnmarshalText([]byte("either")); err == nil {
		t.Error("expected error for unknown preference")
	}
}
