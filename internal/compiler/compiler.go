// SPDX-License-Identifier: MPL-2.0

// Package compiler is the small code-construction toolkit plugins use to emit
// TypeScript. Every declaration is a Node that prints itself; files hold
// ordered lists of nodes and join their printed forms.
package compiler

import (
	"fmt"
	"strings"
)

const indent = "  "

type (
	// Node is a printable TypeScript declaration or statement.
	Node interface {
		String() string
	}

	// ExportAll re-exports every binding of a sibling module.
	ExportAll struct {
		Module string
	}

	// Import imports named bindings from a module.
	Import struct {
		Names    []string
		Module   string
		TypeOnly bool
	}

	// Comment is a JSDoc block. Empty lines are dropped.
	Comment struct {
		Lines []string
	}

	// TypeAlias declares `type Name = Type;`.
	TypeAlias struct {
		Name    string
		Type    string
		Export  bool
		Comment []string
	}

	// Field is a single interface member.
	Field struct {
		Name     string
		Type     string
		Optional bool
		Comment  []string
	}

	// Interface declares an object type.
	Interface struct {
		Name    string
		Fields  []Field
		Export  bool
		Comment []string
	}

	// Const declares `const Name = Value;`. AsConst appends `as const`.
	Const struct {
		Name    string
		Type    string
		Value   string
		Export  bool
		AsConst bool
		Comment []string
	}

	// Param is a function parameter.
	Param struct {
		Name     string
		Type     string
		Optional bool
	}

	// Function declares an arrow function bound to a const. Body lines are
	// indented one level.
	Function struct {
		Name     string
		Generics []string
		Params   []Param
		Returns  string
		Body     []string
		Export   bool
		Async    bool
		Comment  []string
	}

	// Raw is emitted verbatim.
	Raw string
)

func (n ExportAll) String() string {
	return fmt.Sprintf("export * from %s;", Quote(n.Module))
}

func (n Import) String() string {
	keyword := "import"
	if n.TypeOnly {
		keyword = "import type"
	}
	return fmt.Sprintf("%s { %s } from %s;", keyword, strings.Join(n.Names, ", "), Quote(n.Module))
}

func (n Comment) String() string {
	var lines []string
	for _, line := range n.Lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		// A literal "*/" would close the block early.
		lines = append(lines, strings.ReplaceAll(line, "*/", "*\\/"))
	}
	if len(lines) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("/**\n")
	for _, line := range lines {
		sb.WriteString(" * ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString(" */")
	return sb.String()
}

func (n TypeAlias) String() string {
	return withComment(n.Comment, "", fmt.Sprintf("%stype %s = %s;", exportKeyword(n.Export), n.Name, n.Type))
}

func (n Interface) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sinterface %s {", exportKeyword(n.Export), n.Name)
	if len(n.Fields) == 0 {
		sb.WriteString("}")
		return withComment(n.Comment, "", sb.String())
	}
	sb.WriteString("\n")
	for _, f := range n.Fields {
		optional := ""
		if f.Optional {
			optional = "?"
		}
		member := fmt.Sprintf("%s%s: %s;", PropertyName(f.Name), optional, f.Type)
		sb.WriteString(withComment(f.Comment, indent, indent+member))
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return withComment(n.Comment, "", sb.String())
}

func (n Const) String() string {
	typ := ""
	if n.Type != "" {
		typ = ": " + n.Type
	}
	suffix := ""
	if n.AsConst {
		suffix = " as const"
	}
	return withComment(n.Comment, "", fmt.Sprintf("%sconst %s%s = %s%s;", exportKeyword(n.Export), n.Name, typ, n.Value, suffix))
}

func (n Function) String() string {
	params := make([]string, 0, len(n.Params))
	for _, p := range n.Params {
		optional := ""
		if p.Optional {
			optional = "?"
		}
		if p.Type == "" {
			params = append(params, p.Name+optional)
			continue
		}
		params = append(params, fmt.Sprintf("%s%s: %s", p.Name, optional, p.Type))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%sconst %s = ", exportKeyword(n.Export), n.Name)
	if n.Async {
		sb.WriteString("async ")
	}
	if len(n.Generics) > 0 {
		fmt.Fprintf(&sb, "<%s>", strings.Join(n.Generics, ", "))
	}
	fmt.Fprintf(&sb, "(%s)", strings.Join(params, ", "))
	if n.Returns != "" {
		fmt.Fprintf(&sb, ": %s", n.Returns)
	}
	sb.WriteString(" => {\n")
	for _, line := range n.Body {
		if line == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString(indent)
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("};")
	return withComment(n.Comment, "", sb.String())
}

func (n Raw) String() string {
	return string(n)
}

// Print joins the printed nodes with sep, skipping nodes that print empty.
func Print(nodes []Node, sep string) string {
	parts := make([]string, 0, len(nodes))
	for _, node := range nodes {
		if s := node.String(); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func exportKeyword(export bool) string {
	if export {
		return "export "
	}
	return ""
}

// withComment prefixes decl with a JSDoc block (indented by prefix) when
// lines has content.
func withComment(lines []string, prefix, decl string) string {
	comment := Comment{Lines: lines}.String()
	if comment == "" {
		return decl
	}
	if prefix != "" {
		comment = prefix + strings.ReplaceAll(comment, "\n", "\n"+prefix)
	}
	return comment + "\n" + decl
}
