// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"fmt"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

func zodPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        Zod,
		Description: "Zod schemas for component schemas and responses",
		Tags:        []string{TagValidator},
		Handler:     handleZod,
	}
}

func zodSchemaName(schemaName string) string {
	return "z" + typeName(schemaName)
}

func zodResponseName(op *ir.Operation) string {
	return "z" + operationTypeName(op, "Response")
}

// validatesResponse reports whether op gets a response schema.
func validatesResponse(op *ir.Operation) bool {
	r, ok := op.SuccessResponse()
	return ok && r.Schema != nil
}

func handleZod(ctx *ir.Context, _ *plugin.Resolved) error {
	m := newModule(newOutputFile(ctx, "zod", "zod.gen"))
	m.use("zod", false, "z")

	if err := ctx.Subscribe(ir.EventSchema, func(ev ir.Payload) error {
		m.add(compiler.Const{Name: zodSchemaName(ev.Schema.Name), Value: zodExpr(ev.Schema), Export: true})
		return nil
	}); err != nil {
		return err
	}
	if err := ctx.Subscribe(ir.EventOperation, func(ev ir.Payload) error {
		if !validatesResponse(ev.Operation) {
			return nil
		}
		r, _ := ev.Operation.SuccessResponse()
		m.add(compiler.Const{Name: zodResponseName(ev.Operation), Value: zodExpr(r.Schema), Export: true})
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}

// zodExpr renders s as a zod schema expression. References are lazy so
// declaration order does not matter.
func zodExpr(s *ir.Schema) string {
	if s == nil {
		return "z.unknown()"
	}
	out := zodBase(s)
	if s.Nullable {
		out += ".nullable()"
	}
	return out
}

func zodBase(s *ir.Schema) string {
	switch {
	case s.Ref != "":
		return fmt.Sprintf("z.lazy(() => %s)", zodSchemaName(s.Ref))
	case len(s.Enum) > 0:
		return zodEnum(s.Enum)
	case len(s.AllOf) > 0:
		return zodGroup(s.AllOf, "z.intersection")
	case len(s.OneOf) > 0:
		return zodUnion(s.OneOf)
	case len(s.AnyOf) > 0:
		return zodUnion(s.AnyOf)
	}

	switch s.Type {
	case "string":
		switch s.Format {
		case "date-time":
			return "z.string().datetime()"
		case "date":
			return "z.string().date()"
		case "email":
			return "z.string().email()"
		case "uuid":
			return "z.string().uuid()"
		case "binary":
			return "z.instanceof(Blob)"
		}
		return "z.string()"
	case "integer":
		return "z.number().int()"
	case "number":
		return "z.number()"
	case "boolean":
		return "z.boolean()"
	case "null":
		return "z.null()"
	case "array":
		return fmt.Sprintf("z.array(%s)", zodExpr(s.Items))
	case "object", "":
		if len(s.Properties) > 0 {
			return zodObject(s)
		}
		if s.AdditionalProperties != nil {
			return fmt.Sprintf("z.record(%s)", zodExpr(s.AdditionalProperties))
		}
		if s.Type == "object" {
			return "z.object({})"
		}
	}
	return "z.unknown()"
}

func zodObject(s *ir.Schema) string {
	var sb strings.Builder
	sb.WriteString("z.object({\n")
	for _, p := range s.Properties {
		expr := zodExpr(p.Schema)
		if !p.Required {
			expr += ".optional()"
		}
		fmt.Fprintf(&sb, "  %s: %s,\n", compiler.PropertyName(p.Name), indentTail(expr))
	}
	sb.WriteString("})")
	return sb.String()
}

// indentTail indents every line of a nested expression but the first.
func indentTail(expr string) string {
	return strings.ReplaceAll(expr, "\n", "\n  ")
}

func zodEnum(values []any) string {
	strs := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			literals := make([]string, len(values))
			for i, v := range values {
				literals[i] = fmt.Sprintf("z.literal(%s)", literal(v))
			}
			if len(literals) == 1 {
				return literals[0]
			}
			return fmt.Sprintf("z.union([%s])", strings.Join(literals, ", "))
		}
		strs = append(strs, compiler.Quote(s))
	}
	return fmt.Sprintf("z.enum([%s])", strings.Join(strs, ", "))
}

func zodUnion(schemas []*ir.Schema) string {
	if len(schemas) == 1 {
		return zodExpr(schemas[0])
	}
	parts := make([]string, len(schemas))
	for i, s := range schemas {
		parts[i] = zodExpr(s)
	}
	return fmt.Sprintf("z.union([%s])", strings.Join(parts, ", "))
}

// zodGroup folds schemas left to right with a binary combinator.
func zodGroup(schemas []*ir.Schema, combinator string) string {
	out := zodExpr(schemas[0])
	for _, s := range schemas[1:] {
		out = fmt.Sprintf("%s(%s, %s)", combinator, out, zodExpr(s))
	}
	return out
}
