// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is the class of every document parsing failure.
	ErrParse = errors.New("spec parse error")

	// ErrUnsupportedSpecVersion is returned when the document declares no
	// supported swagger/openapi version.
	ErrUnsupportedSpecVersion = errors.New("unsupported spec version")
)

type (
	// UnsupportedSpecVersionError is returned by Detect and Dispatch when the
	// version discriminant is missing or unsupported.
	UnsupportedSpecVersionError struct {
		// Version is the declared version, or empty when neither swagger nor
		// openapi is present.
		Version string
	}

	// ParseError is returned when a dialect parser rejects the document.
	ParseError struct {
		Dialect Dialect
		Source  string
		Cause   error
	}
)

func (e *UnsupportedSpecVersionError) Error() string {
	if e.Version == "" {
		return "document declares neither a swagger nor an openapi version"
	}
	return fmt.Sprintf("unsupported OpenAPI version %q (supported: 2.0, 3.0.0-3.0.4, 3.1.0-3.1.1)", e.Version)
}

// Unwrap returns ErrUnsupportedSpecVersion and ErrParse.
func (e *UnsupportedSpecVersionError) Unwrap() []error {
	return []error{ErrUnsupportedSpecVersion, ErrParse}
}

func (e *ParseError) Error() string {
	source := e.Source
	if source == "" {
		source = "<inline>"
	}
	return fmt.Sprintf("parse %s document %s: %v", e.Dialect, source, e.Cause)
}

// Unwrap returns ErrParse and the cause.
func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Cause}
}
