// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package invoke

import (
	"regexp"
	"strings"
)

// Placeholders recognised in the renderer command template.
const (
	PlaceholderGhostscript = "GHOSTSCRIPT"
	PlaceholderPDFVersion  = "PDFVER"
	PlaceholderOutput      = "OUTPUT"
	PlaceholderSpool       = "SPOOL"
)

// DefaultRendererTemplate converts a PostScript spool file to PDF with
// Ghostscript's pdfwrite device.
const DefaultRendererTemplate = "${GHOSTSCRIPT} -q -dCompatibilityLevel=${PDFVER} -dNOPAUSE -dBATCH -dSAFER " +
	"-sDEVICE=pdfwrite -sOutputFile=${OUTPUT} -dAutoRotatePages=/PageByPage " +
	"-dAutoFilterColorImages=false -dColorImageFilter=/FlateEncode -dPDFSETTINGS=/prepress " +
	"-c .setpdfwrite -f ${SPOOL}"

var placeholderPattern = regexp.MustCompile(`\$\{([A-Z_]+)\}`)

// ExpandCommand replaces each ${NAME} in template with the shell-quoted
// value of values[NAME]. Placeholders with no value are left verbatim
// so that a misspelt template is visible in the log.
func ExpandCommand(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		name := match[2 : len(match)-1]
		value, ok := values[name]
		if !ok {
			return match
		}
		return shellQuote(value)
	})
}

// RendererCommand expands the renderer template for one job.
func RendererCommand(template, ghostscript, pdfVersion, output, spool string) string {
	return ExpandCommand(template, map[string]string{
		PlaceholderGhostscript: ghostscript,
		PlaceholderPDFVersion:  pdfVersion,
		PlaceholderOutput:      output,
		PlaceholderSpool:       spool,
	})
}

// PostProcessingCommand appends the output path, the resolved account
// name, and the submitting principal to hook. The hook itself is used
// verbatim and may carry its own arguments. An empty hook yields an
// empty command.
func PostProcessingCommand(hook, output, name, principal string) string {
	hook = strings.TrimSpace(hook)
	if hook == "" {
		return ""
	}
	return strings.Join([]string{hook, shellQuote(output), shellQuote(name), shellQuote(principal)}, " ")
}

// shellQuote returns s quoted for /bin/sh. Strings made only of safe
// characters are returned unchanged.
func shellQuote(s string) string {
	safe := true
	for _, char := range s {
		if !isShellSafe(char) {
			safe = false
			break
		}
	}
	if safe && s != "" {
		return s
	}

	// Single-quote the string, escaping any internal single quotes.
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// isShellSafe returns true if the character doesn't need shell quoting.
func isShellSafe(char rune) bool {
	if char >= 'a' && char <= 'z' {
		return true
	}
	if char >= 'A' && char <= 'Z' {
		return true
	}
	if char >= '0' && char <= '9' {
		return true
	}
	switch char {
	case '-', '_', '.', '/', ':', '=', '+', ',', '@':
		return true
	}
	return false
}
