// SPDX-License-Identifier: MPL-2.0

package ir

import (
	"path"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
)

const fileExtension = ".ts"

type (
	// FileSpec describes a file to create.
	FileSpec struct {
		ID   string
		Path string
		// ExportFromIndex defaults to true when nil.
		ExportFromIndex *bool
		// Header is emitted as a leading comment block when set.
		Header []string
	}

	// File is an output module being built by plugins.
	File struct {
		id              string
		path            string
		exportFromIndex bool
		header          []string
		nodes           []compiler.Node
	}
)

func newFile(spec FileSpec) *File {
	export := true
	if spec.ExportFromIndex != nil {
		export = *spec.ExportFromIndex
	}
	return &File{
		id:              spec.ID,
		path:            spec.Path,
		exportFromIndex: export,
		header:          spec.Header,
	}
}

// ID returns the registry identifier.
func (f *File) ID() string { return f.id }

// Path returns the output path relative to the output root.
func (f *File) Path() string { return f.path }

// ExportFromIndex reports whether the index file re-exports this file.
func (f *File) ExportFromIndex() bool { return f.exportFromIndex }

// SetExportFromIndex changes whether the index file re-exports this file.
// A plugin may clear it on a file another plugin created.
func (f *File) SetExportFromIndex(export bool) { f.exportFromIndex = export }

// Add appends declarations.
func (f *File) Add(nodes ...compiler.Node) {
	f.nodes = append(f.nodes, nodes...)
}

// Nodes returns the declarations in insertion order.
func (f *File) Nodes() []compiler.Node { return f.nodes }

// IsEmpty reports whether the file has no declarations. A header alone does
// not make a file non-empty.
func (f *File) IsEmpty() bool {
	return len(f.nodes) == 0
}

// NameWithoutExtension returns the slash-separated path with the .ts
// extension stripped.
func (f *File) NameWithoutExtension() string {
	name := path.Clean(strings.ReplaceAll(f.path, "\\", "/"))
	return strings.TrimSuffix(name, fileExtension)
}

// String serializes the file, joining declarations with sep.
func (f *File) String(sep string) string {
	body := compiler.Print(f.nodes, sep)
	header := compiler.Comment{Lines: f.header}.String()
	switch {
	case header == "":
		return body
	case body == "":
		return header
	default:
		return header + sep + body
	}
}
