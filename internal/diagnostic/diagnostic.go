// SPDX-License-Identifier: MPL-2.0

// Package diagnostic defines the structured, non-fatal findings that the
// config loader, the plugin resolver and the generation driver return to
// their callers. Core packages never print; the CLI decides how to render.
package diagnostic

import (
	"fmt"
	"strings"
)

const (
	// SeverityInfo is an informational note (e.g. a plugin pulled in implicitly).
	SeverityInfo Severity = "info"
	// SeverityWarning indicates a recoverable problem the user should fix.
	SeverityWarning Severity = "warning"
	// SeverityError indicates a non-fatal error; the run still produced a result.
	SeverityError Severity = "error"
)

type (
	// Severity represents diagnostic severity.
	Severity string

	// Diagnostic is a single structured finding.
	Diagnostic struct {
		// Severity is the diagnostic level.
		Severity Severity
		// Code is a machine-readable identifier (e.g., "unused_plugin_override").
		Code string
		// Message is the human-readable description.
		Message string
		// Subject names the plugin, config field or file involved (optional).
		Subject string
		// Cause is the underlying error (optional, for programmatic inspection).
		Cause error
	}

	// List is an ordered collection of diagnostics.
	List []Diagnostic
)

// New builds a diagnostic with a formatted message.
func New(severity Severity, code, subject, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: severity,
		Code:     code,
		Subject:  subject,
		Message:  fmt.Sprintf(format, args...),
	}
}

// String renders the diagnostic on a single line.
func (d Diagnostic) String() string {
	var sb strings.Builder
	sb.WriteString(string(d.Severity))
	sb.WriteString(": ")
	if d.Subject != "" {
		sb.WriteString(d.Subject)
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	if d.Code != "" {
		fmt.Fprintf(&sb, " [%s]", d.Code)
	}
	return sb.String()
}

// Add appends diagnostics to the list.
func (l *List) Add(diags ...Diagnostic) {
	*l = append(*l, diags...)
}

// HasCode reports whether any diagnostic carries the given code.
func (l List) HasCode(code string) bool {
	for _, d := range l {
		if d.Code == code {
			return true
		}
	}
	return false
}

// Filter returns the diagnostics at the given severity.
func (l List) Filter(severity Severity) List {
	var out List
	for _, d := range l {
		if d.Severity == severity {
			out = append(out, d)
		}
	}
	return out
}
