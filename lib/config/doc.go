// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for bureau-pdf.
//
// Each printer instance has one configuration file. [PathForDevice]
// maps the device URI the print scheduler hands the backend to that
// file: "bureau-pdf:/" uses /etc/bureau-pdf/bureau-pdf.yaml and
// "bureau-pdf:/<name>" uses /etc/bureau-pdf/bureau-pdf-<name>.yaml.
// The BUREAU_PDF_CONFIG environment variable overrides the mapping.
//
// [LoadFile] decodes the file over [Default], expands ${VAR} and
// ${VAR:-default} patterns in the host path fields, and clamps
// numeric fields to their legal ranges. The output directory template
// and the renderer command template are not expanded here; their
// placeholders are filled in per job.
//
// Options can also come from the printer's PPD defaults and from the
// options attached to a job. Each source is a [Tier]. The file and
// PPD tiers may set any key. The job tier may set only the keys
// marked as job options (pdf_version, post_processing, out_extension,
// cut, truncate, label, title_preference, user_umask) unless
// allow_unsafe_options is enabled. [Config.Apply] never mutates its
// receiver: it returns a new Config plus the list of refused options.
//
// Key exports:
//
//   - [Config] -- every tunable of the backend
//   - [Default] -- the built-in defaults
//   - [LoadFile], [PathForDevice] -- file selection and loading
//   - [ParseJobOptions], [ParsePPDDefaults] -- option sources
//   - [Config.Apply] -- tiered overrides
//
// This package depends only on the bureau-pdf title and invoke types
// that appear as fields.
package config
