// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"fmt"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

func sdkPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:         SDK,
		Description:  "One client function per operation",
		Dependencies: []string{TypeScript},
		Options: plugin.Options{
			"throwOnError": false,
			"transformer":  true,
			"validator":    true,
		},
		Infer:   inferSDK,
		Handler: handleSDK,
	}
}

// inferSDK resolves the "transformer" and "validator" options. true picks
// the requested plugin carrying the matching tag, a string names a plugin
// and false disables the feature. The chosen plugin becomes a dependency
// and the option is rewritten to its name, or false when none was found.
func inferSDK(p plugin.Resolved, view plugin.View) plugin.Inference {
	inf := plugin.Inference{Options: plugin.Options{}}
	for _, feature := range []struct{ option, tag string }{
		{"transformer", TagTransformer},
		{"validator", TagValidator},
	} {
		var name string
		switch v := p.Options[feature.option].(type) {
		case string:
			name = v
		case bool:
			if v {
				name, _ = view.PluginByTag(feature.tag)
			}
		}
		if name == "" {
			inf.Options[feature.option] = false
			continue
		}
		inf.Options[feature.option] = name
		inf.Dependencies = append(inf.Dependencies, name)
	}
	return inf
}

func handleSDK(ctx *ir.Context, p *plugin.Resolved) error {
	const path = "sdk.gen"

	throwOnError := p.BoolOption("throwOnError", false)
	transformer := p.StringOption("transformer", "")
	validator := p.StringOption("validator", "")
	plan := newTransformPlan(ctx.Model(), transformer == Transformers && transformsDates(ctx))

	m := newModule(newOutputFile(ctx, "sdk", path))
	clientModule := clientModulePath(ctx.Config(), path)
	types := relativeModulePath("types.gen", path)

	if err := ctx.Subscribe(ir.EventBefore, func(ir.Payload) error {
		m.use(clientModule, false, "createClient", "createConfig", "type Options")
		config := ""
		if servers := ctx.Model().Servers; len(servers) > 0 && servers[0].URL != "" {
			config = fmt.Sprintf("{ baseUrl: %s }", compiler.Quote(servers[0].URL))
		}
		m.add(compiler.Const{Name: "client", Value: fmt.Sprintf("createClient(createConfig(%s))", config), Export: true})
		return nil
	}); err != nil {
		return err
	}

	if err := ctx.Subscribe(ir.EventOperation, func(ev ir.Payload) error {
		op := ev.Operation
		data, response := operationTypeName(op, "Data"), operationTypeName(op, "Response")
		m.use(types, true, data, response)

		clientRef := "(options?.client ?? client)"
		if hasRequiredInput(op) {
			clientRef = "(options.client ?? client)"
		}
		body := []string{
			fmt.Sprintf("return %s.%s<%s, unknown, ThrowOnError>({", clientRef, strings.ToLower(op.Method), response),
			"  ...options,",
		}
		if transformer == Transformers && plan.responseTransformer(op) {
			m.use(relativeModulePath("transformers.gen", path), false, responseTransformerName(op))
			body = append(body, fmt.Sprintf("  responseTransformer: %s,", responseTransformerName(op)))
		}
		if validator == Zod && validatesResponse(op) {
			m.use(relativeModulePath("zod.gen", path), false, zodResponseName(op))
			body = append(body, fmt.Sprintf("  responseValidator: async (data) => await %s.parseAsync(data),", zodResponseName(op)))
		}
		body = append(body, fmt.Sprintf("  url: %s,", compiler.Quote(op.Path)), "});")

		comment := docLines(op.Summary, op.Description)
		if op.Deprecated {
			comment = append(comment, "@deprecated")
		}
		m.add(compiler.Function{
			Name:     functionName(op),
			Generics: []string{fmt.Sprintf("ThrowOnError extends boolean = %t", throwOnError)},
			Params: []compiler.Param{{
				Name:     "options",
				Type:     fmt.Sprintf("Options<%s, ThrowOnError>", data),
				Optional: !hasRequiredInput(op),
			}},
			Body:    body,
			Export:  true,
			Comment: comment,
		})
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}
