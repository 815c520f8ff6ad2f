// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/apigen/apigen/internal/config"
)

var (
	// ErrConfiguration is the configuration error class. It is the same
	// sentinel as config.ErrConfiguration so callers can match either.
	ErrConfiguration = config.ErrConfiguration

	// ErrCircularDependency is returned when plugin dependencies form a cycle.
	ErrCircularDependency = errors.New("circular plugin dependency")

	// ErrUnknownPlugin is returned when a requested or required plugin is not
	// registered.
	ErrUnknownPlugin = errors.New("unknown plugin")

	// ErrReservedFieldOverride is returned when user options try to set an
	// engine-owned field.
	ErrReservedFieldOverride = errors.New("reserved plugin field override")

	// ErrInvalidRegistry is returned by NewRegistry for empty or duplicate
	// names.
	ErrInvalidRegistry = errors.New("invalid plugin registry")
)

type (
	// CircularDependencyError is returned when a plugin is reached again
	// while its own dependencies are being resolved.
	CircularDependencyError struct {
		// Name is the plugin that closed the cycle.
		Name string
		// Path is the recursion stack from the first occurrence of Name to
		// the repeated Name.
		Path []string
	}

	// UnknownPluginError is returned when a name has no registered
	// descriptor.
	UnknownPluginError struct {
		Name string
		// RequiredBy is the dependent plugin, or empty when the user
		// requested Name directly.
		RequiredBy string
	}

	// ReservedFieldOverrideError is returned when an override key starts with
	// the reserved prefix.
	ReservedFieldOverrideError struct {
		Plugin string
		Field  string
	}
)

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular plugin dependency detected at %q: %s", e.Name, strings.Join(e.Path, " -> "))
}

// Unwrap returns ErrCircularDependency and ErrConfiguration.
func (e *CircularDependencyError) Unwrap() []error {
	return []error{ErrCircularDependency, ErrConfiguration}
}

func (e *UnknownPluginError) Error() string {
	if e.RequiredBy != "" {
		return fmt.Sprintf("unknown plugin dependency %q required by %q", e.Name, e.RequiredBy)
	}
	return fmt.Sprintf("unknown plugin %q", e.Name)
}

// Unwrap returns ErrUnknownPlugin and ErrConfiguration.
func (e *UnknownPluginError) Unwrap() []error {
	return []error{ErrUnknownPlugin, ErrConfiguration}
}

func (e *ReservedFieldOverrideError) Error() string {
	return fmt.Sprintf("cannot configure plugin %q: option %q is reserved", e.Plugin, e.Field)
}

// Unwrap returns ErrReservedFieldOverride and ErrConfiguration.
func (e *ReservedFieldOverrideError) Unwrap() []error {
	return []error{ErrReservedFieldOverride, ErrConfiguration}
}
