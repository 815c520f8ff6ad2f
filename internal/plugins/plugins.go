// SPDX-License-Identifier: MPL-2.0

// Package plugins holds the built-in generation plugins.
//
// Every plugin creates its output file when its handler runs and fills it
// from model events during materialization. Imports are collected while
// declarations are emitted and written ahead of them once the model has been
// fully broadcast.
package plugins

import (
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

// Built-in plugin names.
const (
	TypeScript   = "@hey-api/typescript"
	Schemas      = "@hey-api/schemas"
	SDK          = "@hey-api/sdk"
	Transformers = "@hey-api/transformers"
	Zod          = "zod"
	ReactQuery   = "@tanstack/react-query"
)

// Plugin tags consulted by infer hooks.
const (
	TagTransformer = "transformer"
	TagValidator   = "validator"
)

const generatedHeader = "This file is auto-generated by apigen"

// Descriptors returns the built-in plugin descriptors in registration order.
func Descriptors() []plugin.Descriptor {
	return []plugin.Descriptor{
		typeScriptPlugin(),
		schemasPlugin(),
		sdkPlugin(),
		transformersPlugin(),
		zodPlugin(),
		reactQueryPlugin(),
	}
}

// Registry returns a registry of the built-in plugins.
func Registry() *plugin.Registry {
	reg, err := plugin.NewRegistry(Descriptors()...)
	if err != nil {
		// Built-in names are constants; a failure is a programming error.
		panic(err)
	}
	return reg
}

// relativeModulePath returns the import path of moduleOutput as seen from a
// file at sourceOutput. Both are relative to the output root.
func relativeModulePath(moduleOutput, sourceOutput string) string {
	depth := len(strings.Split(sourceOutput, "/")) - 1
	prefix := strings.Repeat("../", depth)
	if prefix == "" {
		prefix = "./"
	}
	return prefix + moduleOutput
}

// clientModulePath returns the module generated code imports the client
// from. A bundled client lives next to the output.
func clientModulePath(cfg *config.Config, sourceOutput string) string {
	if cfg != nil && cfg.Client.Bundle {
		return relativeModulePath("client", sourceOutput)
	}
	if cfg == nil || cfg.Client.Name == "" {
		return string(config.ClientFetch)
	}
	return string(cfg.Client.Name)
}

// newOutputFile registers a plugin's output file.
func newOutputFile(ctx *ir.Context, id, path string) *ir.File {
	return ctx.CreateFile(ir.FileSpec{ID: id, Path: path, Header: []string{generatedHeader}})
}

type (
	importKey struct {
		module   string
		typeOnly bool
	}

	// module buffers one output file: imports are deduplicated and written
	// before the declarations on flush.
	module struct {
		file    *ir.File
		order   []importKey
		imports map[importKey][]string
		decls   []compiler.Node
	}
)

func newModule(file *ir.File) *module {
	return &module{file: file, imports: make(map[importKey][]string)}
}

func (m *module) use(from string, typeOnly bool, names ...string) {
	key := importKey{module: from, typeOnly: typeOnly}
	current, ok := m.imports[key]
	if !ok {
		m.order = append(m.order, key)
	}
	for _, name := range names {
		if !slices.Contains(current, name) {
			current = append(current, name)
		}
	}
	m.imports[key] = current
}

func (m *module) add(nodes ...compiler.Node) {
	m.decls = append(m.decls, nodes...)
}

// flush writes the buffered nodes. A module without declarations leaves the
// file empty.
func (m *module) flush() {
	if len(m.decls) == 0 {
		return
	}
	for _, key := range m.order {
		names := slices.Clone(m.imports[key])
		slices.Sort(names)
		m.file.Add(compiler.Import{Names: names, Module: key.module, TypeOnly: key.typeOnly})
	}
	m.file.Add(m.decls...)
	m.decls = nil
}

// onAfter flushes m once the model has been broadcast.
func (m *module) onAfter(ctx *ir.Context) error {
	return ctx.Subscribe(ir.EventAfter, func(ir.Payload) error {
		m.flush()
		return nil
	})
}

func typeName(schemaName string) string {
	return compiler.PascalCase(schemaName)
}

func operationTypeName(op *ir.Operation, suffix string) string {
	return compiler.PascalCase(op.ID) + suffix
}

func functionName(op *ir.Operation) string {
	return compiler.CamelCase(op.ID)
}

// isRequested reports whether name is part of the resolved plugin set.
func isRequested(ctx *ir.Context, name string) bool {
	if ctx.Plugins() == nil {
		return false
	}
	_, ok := ctx.Plugins().Options(name)
	return ok
}

func docLines(parts ...string) []string {
	var out []string
	for _, p := range parts {
		for line := range strings.SplitSeq(p, "\n") {
			if strings.TrimSpace(line) != "" {
				out = append(out, strings.TrimRight(line, " \t"))
			}
		}
	}
	return out
}
