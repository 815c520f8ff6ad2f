// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"fmt"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

func transformersPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:         Transformers,
		Description:  "Response transformers that revive date-time strings",
		Dependencies: []string{TypeScript},
		Tags:         []string{TagTransformer},
		Options:      plugin.Options{"dates": true},
		Handler:      handleTransformers,
	}
}

// transformsDates reports whether the run revives date-time strings.
func transformsDates(ctx *ir.Context) bool {
	if ctx.Plugins() == nil {
		return false
	}
	opts, ok := ctx.Plugins().Options(Transformers)
	if !ok {
		return false
	}
	dates, set := opts["dates"].(bool)
	return !set || dates
}

// transformPlan knows which component schemas need a transformer.
type transformPlan struct {
	components map[string]bool
}

// newTransformPlan marks components until no more can be marked, so
// reference cycles terminate.
func newTransformPlan(model *ir.Model, dates bool) transformPlan {
	plan := transformPlan{components: make(map[string]bool)}
	if !dates {
		return plan
	}
	for changed := true; changed; {
		changed = false
		for _, s := range model.Schemas {
			if plan.components[s.Name] {
				continue
			}
			if plan.needs(s) {
				plan.components[s.Name] = true
				changed = true
			}
		}
	}
	return plan
}

// needs reports whether a value of schema s must be transformed.
func (tp transformPlan) needs(s *ir.Schema) bool {
	if s == nil {
		return false
	}
	switch {
	case s.Ref != "":
		return tp.components[s.Ref]
	case s.Type == "string" && s.Format == "date-time":
		return true
	case s.Type == "array":
		_, ok := tp.value(s.Items, "item")
		return ok
	}
	for _, p := range s.Properties {
		if tp.needs(p.Schema) {
			return true
		}
	}
	return false
}

// value returns an expression transforming v, which must satisfy needs.
// Inline objects are handled by statements.
func (tp transformPlan) value(s *ir.Schema, v string) (string, bool) {
	if s == nil {
		return "", false
	}
	switch {
	case s.Ref != "":
		if !tp.components[s.Ref] {
			return "", false
		}
		return fmt.Sprintf("%s(%s)", schemaTransformerName(s.Ref), v), true
	case s.Type == "string" && s.Format == "date-time":
		return fmt.Sprintf("new Date(%s)", v), true
	case s.Type == "array":
		if item, ok := tp.value(s.Items, "item"); ok {
			return fmt.Sprintf("%s.map((item: any) => %s)", v, item), true
		}
	}
	return "", false
}

// statements transforms the value held in v in place.
func (tp transformPlan) statements(s *ir.Schema, v string) []string {
	if expr, ok := tp.value(s, v); ok {
		return []string{fmt.Sprintf("%s = %s;", v, expr)}
	}
	var out []string
	for _, p := range s.Properties {
		if !tp.needs(p.Schema) {
			continue
		}
		field := accessor(v, p.Name)
		out = append(out, fmt.Sprintf("if (%s) {", field))
		for _, line := range tp.statements(p.Schema, field) {
			out = append(out, "  "+line)
		}
		out = append(out, "}")
	}
	return out
}

func accessor(v, name string) string {
	if compiler.IsIdentifier(name) {
		return v + "." + name
	}
	return fmt.Sprintf("%s[%s]", v, compiler.Quote(name))
}

func schemaTransformerName(schemaName string) string {
	return compiler.CamelCase(schemaName) + "SchemaResponseTransformer"
}

func responseTransformerName(op *ir.Operation) string {
	return functionName(op) + "ResponseTransformer"
}

// responseTransformer reports whether op gets a response transformer.
func (tp transformPlan) responseTransformer(op *ir.Operation) bool {
	r, ok := op.SuccessResponse()
	return ok && tp.needs(r.Schema)
}

func handleTransformers(ctx *ir.Context, _ *plugin.Resolved) error {
	plan := newTransformPlan(ctx.Model(), transformsDates(ctx))
	m := newModule(newOutputFile(ctx, "transformers", "transformers.gen"))
	types := relativeModulePath("types.gen", "transformers.gen")

	if err := ctx.Subscribe(ir.EventSchema, func(ev ir.Payload) error {
		if !plan.components[ev.Schema.Name] {
			return nil
		}
		body := append(plan.statements(ev.Schema, "data"), "return data;")
		m.add(compiler.Function{
			Name:   schemaTransformerName(ev.Schema.Name),
			Params: []compiler.Param{{Name: "data", Type: "any"}},
			Body:   body,
		})
		return nil
	}); err != nil {
		return err
	}
	if err := ctx.Subscribe(ir.EventOperation, func(ev ir.Payload) error {
		op := ev.Operation
		if !plan.responseTransformer(op) {
			return nil
		}
		r, _ := op.SuccessResponse()
		response := operationTypeName(op, "Response")
		m.use(types, true, response)
		body := append(plan.statements(r.Schema, "data"), "return data;")
		m.add(compiler.Function{
			Name:    responseTransformerName(op),
			Async:   true,
			Params:  []compiler.Param{{Name: "data", Type: "any"}},
			Returns: fmt.Sprintf("Promise<%s>", response),
			Body:    body,
			Export:  true,
		})
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}
