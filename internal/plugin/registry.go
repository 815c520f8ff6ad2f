// SPDX-License-Identifier: MPL-2.0

// Package plugin defines generation plugins and resolves a user's plugin
// request into a dependency-ordered execution plan.
//
// A Descriptor splits engine-owned fields (dependencies, tags, the infer
// hook and the handler) from user-configurable Options. Only Options can be
// overridden from configuration, and override keys starting with "_" are
// rejected.
package plugin

import (
	"fmt"
	"maps"
	"slices"

	"github.com/apigen/apigen/internal/ir"
)

// ReservedPrefix marks engine-owned option keys.
const ReservedPrefix = "_"

type (
	// Options are user-configurable plugin settings.
	Options map[string]any

	// Handler emits declarations for one plugin into the shared context.
	Handler func(ctx *ir.Context, p *Resolved) error

	// View is the read-only resolver state an InferFunc may consult.
	View struct {
		self      string
		requested []string
		registry  *Registry
	}

	// Inference is what an InferFunc adds to a plugin: dependencies are
	// appended when not already present, tags extend the declared tags and
	// options overwrite the merged options.
	Inference struct {
		Dependencies []string
		Tags         []string
		Options      Options
	}

	// InferFunc derives extra dependencies from the merged plugin and the
	// rest of the request. It must be pure.
	InferFunc func(p Resolved, view View) Inference

	// Descriptor is the default definition of a plugin.
	Descriptor struct {
		Name         string
		Description  string
		Dependencies []string
		Tags         []string
		Options      Options
		Infer        InferFunc
		Handler      Handler
	}

	// Registry maps plugin names to their default descriptors. It is
	// immutable after construction and safe for concurrent readers.
	Registry struct {
		byName map[string]Descriptor
		names  []string
	}
)

// PluginByTag returns the first requested plugin, other than the one being
// resolved, whose default descriptor declares tag.
func (v View) PluginByTag(tag string) (string, bool) {
	for _, name := range v.requested {
		if name == v.self {
			continue
		}
		desc, ok := v.registry.Get(name)
		if ok && slices.Contains(desc.Tags, tag) {
			return name, true
		}
	}
	return "", false
}

// Requested returns the names the user asked for, in request order.
func (v View) Requested() []string {
	return slices.Clone(v.requested)
}

// HasTag reports whether the descriptor declares tag.
func (d Descriptor) HasTag(tag string) bool {
	return slices.Contains(d.Tags, tag)
}

// NewRegistry builds a registry. Names must be unique and non-empty.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{byName: make(map[string]Descriptor, len(descs))}
	for i, d := range descs {
		if d.Name == "" {
			return nil, fmt.Errorf("%w: descriptor %d has no name", ErrInvalidRegistry, i)
		}
		if _, dup := r.byName[d.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate plugin %q", ErrInvalidRegistry, d.Name)
		}
		d.Dependencies = slices.Clone(d.Dependencies)
		d.Tags = slices.Clone(d.Tags)
		d.Options = maps.Clone(d.Options)
		r.byName[d.Name] = d
		r.names = append(r.names, d.Name)
	}
	return r, nil
}

// Get returns the default descriptor for name.
func (r *Registry) Get(name string) (Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

// Descriptors returns the registered descriptors in registration order.
func (r *Registry) Descriptors() []Descriptor {
	out := make([]Descriptor, len(r.names))
	for i, name := range r.names {
		out[i] = r.byName[name]
	}
	return out
}
