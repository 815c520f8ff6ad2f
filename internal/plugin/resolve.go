// SPDX-License-Identifier: MPL-2.0

package plugin

import (
	"maps"
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/dag"
	"github.com/apigen/apigen/internal/diagnostic"
)

// Diagnostic codes produced by Resolve.
const (
	CodeDuplicateRequest   = "duplicate_plugin_request"
	CodeUnusedOverride     = "unused_plugin_override"
	CodeImplicitDependency = "implicit_plugin_dependency"
)

type (
	// Resolved is a plugin after defaults, user options and inference have
	// been merged.
	Resolved struct {
		Name string
		// Options are the default options overlaid with the user's.
		Options Options
		// Dependencies are the declared dependencies followed by inferred
		// ones, without duplicates.
		Dependencies []string
		Tags         []string
		Handler      Handler
	}

	// Resolution is the outcome of Resolve.
	Resolution struct {
		// Order is the execution order: every plugin appears once, after all
		// of its dependencies.
		Order []string
		// Plugins holds the merged record of every plugin in Order.
		Plugins     map[string]*Resolved
		Diagnostics diagnostic.List
	}

	resolver struct {
		registry  *Registry
		requested []string
		overrides map[string]Options
		// stack is the active recursion path; onStack indexes it.
		stack   []string
		onStack map[string]bool
		result  *Resolution
	}
)

// Resolve turns the requested plugin names into a dependency-first
// execution order. Plugins are visited depth first in request order and
// each is appended after its dependencies, so the order follows first
// discovery rather than name. Any failure aborts the whole resolution.
func Resolve(requested []string, registry *Registry, overrides map[string]Options) (*Resolution, error) {
	r := &resolver{
		registry:  registry,
		requested: requested,
		overrides: overrides,
		onStack:   make(map[string]bool),
		result:    &Resolution{Plugins: make(map[string]*Resolved)},
	}

	seen := make(map[string]bool, len(requested))
	for _, name := range requested {
		if seen[name] {
			r.result.Diagnostics.Add(diagnostic.New(diagnostic.SeverityWarning, CodeDuplicateRequest, name,
				"plugin %q is requested more than once", name))
			continue
		}
		seen[name] = true
		if err := r.visit(name, ""); err != nil {
			return nil, err
		}
	}

	for _, name := range r.result.Order {
		if !seen[name] {
			r.result.Diagnostics.Add(diagnostic.New(diagnostic.SeverityInfo, CodeImplicitDependency, name,
				"plugin %q was added as a dependency of %s", name, strings.Join(r.dependents(name), ", ")))
		}
	}
	for _, name := range slices.Sorted(maps.Keys(overrides)) {
		if _, ok := r.result.Plugins[name]; !ok {
			r.result.Diagnostics.Add(diagnostic.New(diagnostic.SeverityWarning, CodeUnusedOverride, name,
				"options for plugin %q are ignored because it is not part of the run", name))
		}
	}
	return r.result, nil
}

// ResolveConfig resolves the plugins requested by cfg.
func ResolveConfig(cfg *config.Config, registry *Registry) (*Resolution, error) {
	overrides := make(map[string]Options)
	for name, opts := range cfg.PluginOverrides() {
		overrides[name] = opts
	}
	return Resolve(cfg.PluginNames(), registry, overrides)
}

func (r *resolver) visit(name, requiredBy string) error {
	if r.onStack[name] {
		start := slices.Index(r.stack, name)
		path := append(slices.Clone(r.stack[start:]), name)
		return &CircularDependencyError{Name: name, Path: path}
	}
	if _, done := r.result.Plugins[name]; done {
		return nil
	}

	desc, ok := r.registry.Get(name)
	if !ok {
		return &UnknownPluginError{Name: name, RequiredBy: requiredBy}
	}

	r.stack = append(r.stack, name)
	r.onStack[name] = true

	resolved, err := r.merge(desc)
	if err != nil {
		return err
	}
	for _, dep := range resolved.Dependencies {
		if err := r.visit(dep, name); err != nil {
			return err
		}
	}

	r.stack = r.stack[:len(r.stack)-1]
	delete(r.onStack, name)
	r.result.Order = append(r.result.Order, name)
	r.result.Plugins[name] = resolved
	return nil
}

// merge overlays user options on the defaults and applies inference.
func (r *resolver) merge(desc Descriptor) (*Resolved, error) {
	override := r.overrides[desc.Name]
	for _, key := range slices.Sorted(maps.Keys(override)) {
		if strings.HasPrefix(key, ReservedPrefix) {
			return nil, &ReservedFieldOverrideError{Plugin: desc.Name, Field: key}
		}
	}

	options := maps.Clone(desc.Options)
	if options == nil {
		options = Options{}
	}
	maps.Copy(options, override)

	resolved := &Resolved{
		Name:         desc.Name,
		Options:      options,
		Dependencies: dedupe(desc.Dependencies),
		Tags:         dedupe(desc.Tags),
		Handler:      desc.Handler,
	}

	if desc.Infer != nil {
		view := View{self: desc.Name, requested: r.requested, registry: r.registry}
		inferred := desc.Infer(*resolved.clone(), view)
		for _, dep := range inferred.Dependencies {
			resolved.ensureDependency(dep)
		}
		for _, tag := range inferred.Tags {
			if !slices.Contains(resolved.Tags, tag) {
				resolved.Tags = append(resolved.Tags, tag)
			}
		}
		maps.Copy(resolved.Options, inferred.Options)
	}
	return resolved, nil
}

// dependents returns the resolved plugins that depend on name.
func (r *resolver) dependents(name string) []string {
	var out []string
	for _, candidate := range r.result.Order {
		if slices.Contains(r.result.Plugins[candidate].Dependencies, name) {
			out = append(out, candidate)
		}
	}
	return out
}

func (p *Resolved) ensureDependency(dep string) {
	if dep != "" && !slices.Contains(p.Dependencies, dep) {
		p.Dependencies = append(p.Dependencies, dep)
	}
}

func (p *Resolved) clone() *Resolved {
	return &Resolved{
		Name:         p.Name,
		Options:      maps.Clone(p.Options),
		Dependencies: slices.Clone(p.Dependencies),
		Tags:         slices.Clone(p.Tags),
		Handler:      p.Handler,
	}
}

// StringOption returns an option as a string, or def when unset or not a string.
func (p *Resolved) StringOption(key, def string) string {
	if s, ok := p.Options[key].(string); ok {
		return s
	}
	return def
}

// BoolOption returns an option as a bool, or def when unset or not a bool.
func (p *Resolved) BoolOption(key string, def bool) bool {
	if b, ok := p.Options[key].(bool); ok {
		return b
	}
	return def
}

// HasTag reports whether the resolved plugin carries tag.
func (p *Resolved) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}

// Names returns the execution order.
func (res *Resolution) Names() []string {
	return slices.Clone(res.Order)
}

// Options returns the merged options of a resolved plugin.
func (res *Resolution) Options(name string) (map[string]any, bool) {
	p, ok := res.Plugins[name]
	if !ok {
		return nil, false
	}
	return maps.Clone(p.Options), true
}

// Verify checks that Order contains exactly the resolved plugins and that
// each plugin runs after its dependencies.
func (res *Resolution) Verify() error {
	g := res.graph()
	if _, err := g.TopologicalSort(); err != nil {
		return err
	}
	if len(res.Order) != len(res.Plugins) {
		return &dag.OrderError{Node: missing(res.Order, res.Plugins)}
	}
	return g.CheckOrder(res.Order)
}

// Levels groups the resolved plugins into waves: plugins in one level only
// depend on plugins in earlier levels.
func (res *Resolution) Levels() ([][]string, error) {
	return res.graph().Levels()
}

func (res *Resolution) graph() *dag.Graph {
	g := dag.New()
	for _, name := range res.Order {
		g.AddNode(name)
	}
	for _, name := range res.Order {
		for _, dep := range res.Plugins[name].Dependencies {
			g.AddEdge(dep, name)
		}
	}
	return g
}

func missing(order []string, plugins map[string]*Resolved) string {
	for _, name := range slices.Sorted(maps.Keys(plugins)) {
		if !slices.Contains(order, name) {
			return name
		}
	}
	for _, name := range order {
		if _, ok := plugins[name]; !ok {
			return name
		}
	}
	return ""
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
