// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

// Values of the typescript plugin's "enums" option.
const (
	EnumsNone       = "false"
	EnumsJavaScript = "javascript"
	EnumsTypeScript = "typescript"
)

func typeScriptPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        TypeScript,
		Description: "TypeScript types for schemas and operations",
		Options:     plugin.Options{"enums": false},
		Handler:     handleTypeScript,
	}
}

// tsTyper renders schemas as TypeScript type expressions.
type tsTyper struct {
	// dates renders date-time strings as Date.
	dates bool
}

func handleTypeScript(ctx *ir.Context, p *plugin.Resolved) error {
	enums := p.StringOption("enums", EnumsNone)
	switch enums {
	case EnumsNone, EnumsJavaScript, EnumsTypeScript:
	default:
		return fmt.Errorf("option enums: unsupported value %q", enums)
	}

	typer := tsTyper{dates: transformsDates(ctx)}
	m := newModule(newOutputFile(ctx, "types", "types.gen"))

	if err := ctx.Subscribe(ir.EventSchema, func(ev ir.Payload) error {
		m.add(typer.declare(ev.Schema, enums)...)
		return nil
	}); err != nil {
		return err
	}
	if err := ctx.Subscribe(ir.EventOperation, func(ev ir.Payload) error {
		m.add(typer.operation(ev.Operation)...)
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}

// declare emits the type of a component schema plus, when requested, a
// runtime enum for string enumerations.
func (t tsTyper) declare(s *ir.Schema, enums string) []compiler.Node {
	name := typeName(s.Name)
	comment := docLines(s.Description)
	if s.Deprecated {
		comment = append(comment, "@deprecated")
	}

	if len(s.Enum) > 0 && enums == EnumsTypeScript {
		return []compiler.Node{compiler.Comment{Lines: comment}, compiler.Raw(enumDeclaration(name, s.Enum))}
	}

	var decl compiler.Node
	if fields, ok := t.fields(s); ok {
		decl = compiler.Interface{Name: name, Fields: fields, Export: true, Comment: comment}
	} else {
		decl = compiler.TypeAlias{Name: name, Type: t.expr(s), Export: true, Comment: comment}
	}
	out := []compiler.Node{decl}
	if len(s.Enum) > 0 && enums == EnumsJavaScript {
		out = append(out, compiler.Const{Name: name, Value: enumObject(s.Enum), Export: true, AsConst: true})
	}
	return out
}

// fields returns interface members for a plain object schema.
func (t tsTyper) fields(s *ir.Schema) ([]compiler.Field, bool) {
	if s.Ref != "" || s.Nullable || len(s.Properties) == 0 || s.AdditionalProperties != nil ||
		len(s.AllOf)+len(s.OneOf)+len(s.AnyOf) > 0 || (s.Type != "" && s.Type != "object") {
		return nil, false
	}
	fields := make([]compiler.Field, 0, len(s.Properties))
	for _, prop := range s.Properties {
		var comment []string
		if prop.Schema != nil {
			comment = docLines(prop.Schema.Description)
		}
		fields = append(fields, compiler.Field{
			Name:     prop.Name,
			Type:     t.expr(prop.Schema),
			Optional: !prop.Required,
			Comment:  comment,
		})
	}
	return fields, true
}

// expr renders s as an inline type expression.
func (t tsTyper) expr(s *ir.Schema) string {
	if s == nil {
		return "unknown"
	}
	out := t.baseExpr(s)
	if s.Nullable && out != "null" && out != "unknown" {
		out += " | null"
	}
	return out
}

func (t tsTyper) baseExpr(s *ir.Schema) string {
	switch {
	case s.Ref != "":
		return typeName(s.Ref)
	case len(s.Enum) > 0:
		return literalUnion(s.Enum)
	case len(s.AllOf) > 0:
		return t.join(s.AllOf, " & ")
	case len(s.OneOf) > 0:
		return t.join(s.OneOf, " | ")
	case len(s.AnyOf) > 0:
		return t.join(s.AnyOf, " | ")
	}

	switch s.Type {
	case "string":
		switch s.Format {
		case "binary":
			return "Blob | File"
		case "date-time":
			if t.dates {
				return "Date"
			}
		}
		return "string"
	case "integer", "number":
		return "number"
	case "boolean":
		return "boolean"
	case "null":
		return "null"
	case "array":
		return fmt.Sprintf("Array<%s>", t.expr(s.Items))
	case "object", "":
		if len(s.Properties) > 0 {
			return t.inlineObject(s)
		}
		if s.AdditionalProperties != nil {
			return fmt.Sprintf("{ [key: string]: %s }", t.expr(s.AdditionalProperties))
		}
		if s.Type == "object" {
			return "{ [key: string]: unknown }"
		}
	}
	return "unknown"
}

func (t tsTyper) join(schemas []*ir.Schema, sep string) string {
	parts := make([]string, 0, len(schemas))
	for _, s := range schemas {
		expr := t.expr(s)
		if strings.Contains(expr, " | ") && sep == " & " {
			expr = "(" + expr + ")"
		}
		parts = append(parts, expr)
	}
	return strings.Join(parts, sep)
}

func (t tsTyper) inlineObject(s *ir.Schema) string {
	members := make([]string, 0, len(s.Properties))
	for _, prop := range s.Properties {
		optional := "?"
		if prop.Required {
			optional = ""
		}
		members = append(members, fmt.Sprintf("%s%s: %s", compiler.PropertyName(prop.Name), optional, t.expr(prop.Schema)))
	}
	if s.AdditionalProperties != nil {
		members = append(members, fmt.Sprintf("[key: string]: %s", t.expr(s.AdditionalProperties)))
	}
	return "{ " + strings.Join(members, "; ") + " }"
}

// operation emits the request and response types of op.
func (t tsTyper) operation(op *ir.Operation) []compiler.Node {
	var fields []compiler.Field
	if op.HasBody {
		fields = append(fields, compiler.Field{Name: "body", Type: t.expr(op.Body), Optional: !bodyRequired(op)})
	}
	for _, in := range []struct{ place, field string }{
		{"header", "headers"},
		{"path", "path"},
		{"query", "query"},
	} {
		params := op.ParametersIn(in.place)
		if len(params) == 0 {
			continue
		}
		required := false
		members := make([]string, 0, len(params))
		for _, param := range params {
			optional := "?"
			if param.Required {
				optional = ""
				required = true
			}
			members = append(members, fmt.Sprintf("%s%s: %s", compiler.PropertyName(param.Name), optional, t.expr(param.Schema)))
		}
		fields = append(fields, compiler.Field{Name: in.field, Type: "{ " + strings.Join(members, "; ") + " }", Optional: !required})
	}
	fields = append(fields, compiler.Field{Name: "url", Type: compiler.Quote(op.Path)})

	response := "void"
	if r, ok := op.SuccessResponse(); ok && r.Schema != nil {
		response = t.expr(r.Schema)
	}
	return []compiler.Node{
		compiler.Interface{Name: operationTypeName(op, "Data"), Fields: fields, Export: true},
		compiler.TypeAlias{Name: operationTypeName(op, "Response"), Type: response, Export: true},
	}
}

// bodyRequired reports whether op must be called with a body. Documents do
// not carry body requiredness through the model, so any body with a schema
// is treated as required.
func bodyRequired(op *ir.Operation) bool {
	return op.HasBody && op.Body != nil
}

// hasRequiredInput reports whether op cannot be called without options.
func hasRequiredInput(op *ir.Operation) bool {
	if bodyRequired(op) {
		return true
	}
	for _, p := range op.Parameters {
		if p.Required {
			return true
		}
	}
	return false
}

func literal(v any) string {
	switch v := v.(type) {
	case string:
		return compiler.Quote(v)
	case nil:
		return "null"
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "unknown"
		}
		return string(b)
	}
}

func literalUnion(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = literal(v)
	}
	return strings.Join(parts, " | ")
}

// enumKey returns the SCREAMING_SNAKE member name of an enum value.
func enumKey(v any) string {
	s := fmt.Sprint(v)
	if v == nil {
		s = "null"
	}
	var sb strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && prevLower {
				sb.WriteByte('_')
			}
			sb.WriteRune(unicode.ToUpper(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		default:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "_") {
				sb.WriteByte('_')
			}
			prevLower = false
		}
	}
	key := strings.Trim(sb.String(), "_")
	if key == "" || unicode.IsDigit(rune(key[0])) {
		key = "_" + key
	}
	return key
}

func enumObject(values []any) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for _, v := range values {
		fmt.Fprintf(&sb, "  %s: %s,\n", enumKey(v), literal(v))
	}
	sb.WriteString("}")
	return sb.String()
}

func enumDeclaration(name string, values []any) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "export enum %s {\n", name)
	for _, v := range values {
		fmt.Fprintf(&sb, "  %s = %s,\n", enumKey(v), literal(v))
	}
	sb.WriteString("}")
	return sb.String()
}
