// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"fmt"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

func reactQueryPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:         ReactQuery,
		Description:  "TanStack Query options and mutations wrapping the SDK",
		Dependencies: []string{SDK},
		Options: plugin.Options{
			"queryOptions":    true,
			"mutationOptions": true,
		},
		Handler: handleReactQuery,
	}
}

func handleReactQuery(ctx *ir.Context, p *plugin.Resolved) error {
	const path = "@tanstack/react-query.gen"

	queries := p.BoolOption("queryOptions", true)
	mutations := p.BoolOption("mutationOptions", true)

	m := newModule(newOutputFile(ctx, "@tanstack/react-query", path))
	sdk := relativeModulePath("sdk.gen", path)
	types := relativeModulePath("types.gen", path)
	clientModule := clientModulePath(ctx.Config(), path)

	if err := ctx.Subscribe(ir.EventOperation, func(ev ir.Payload) error {
		op := ev.Operation
		fn := functionName(op)
		data := operationTypeName(op, "Data")

		if strings.EqualFold(op.Method, "get") {
			if !queries {
				return nil
			}
			m.use("@tanstack/react-query", false, "queryOptions")
			m.use(sdk, false, fn)
			m.use(clientModule, true, "Options")
			m.use(types, true, data)
			m.add(queryKey(op, data), queryOptionsFunc(op, data))
			return nil
		}

		if !mutations {
			return nil
		}
		response := operationTypeName(op, "Response")
		m.use("@tanstack/react-query", true, "UseMutationOptions")
		m.use(sdk, false, fn)
		m.use(clientModule, true, "Options")
		m.use(types, true, data, response)
		m.add(mutationFunc(op, data, response))
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}

func queryKey(op *ir.Operation, data string) compiler.Function {
	return compiler.Function{
		Name:   functionName(op) + "QueryKey",
		Params: []compiler.Param{{Name: "options", Type: fmt.Sprintf("Options<%s>", data), Optional: !hasRequiredInput(op)}},
		Body: []string{
			fmt.Sprintf("return [{ _id: %s, ...options }] as const;", compiler.Quote(op.ID)),
		},
		Export: true,
	}
}

func queryOptionsFunc(op *ir.Operation, data string) compiler.Function {
	fn := functionName(op)
	return compiler.Function{
		Name:   fn + "Options",
		Params: []compiler.Param{{Name: "options", Type: fmt.Sprintf("Options<%s>", data), Optional: !hasRequiredInput(op)}},
		Body: []string{
			"return queryOptions({",
			"  queryFn: async ({ queryKey, signal }) => {",
			fmt.Sprintf("    const { data } = await %s({", fn),
			"      ...options,",
			"      ...queryKey[0],",
			"      signal,",
			"      throwOnError: true,",
			"    });",
			"    return data;",
			"  },",
			fmt.Sprintf("  queryKey: %sQueryKey(options),", fn),
			"});",
		},
		Export:  true,
		Comment: docLines(op.Summary),
	}
}

func mutationFunc(op *ir.Operation, data, response string) compiler.Function {
	fn := functionName(op)
	return compiler.Function{
		Name:   fn + "Mutation",
		Params: []compiler.Param{{Name: "options", Type: fmt.Sprintf("Partial<Options<%s>>", data), Optional: true}},
		Body: []string{
			fmt.Sprintf("const mutationOptions: UseMutationOptions<%s, unknown, Options<%s>> = {", response, data),
			"  mutationFn: async (localOptions) => {",
			fmt.Sprintf("    const { data } = await %s({", fn),
			"      ...options,",
			"      ...localOptions,",
			"      throwOnError: true,",
			"    });",
			"    return data;",
			"  },",
			"};",
			"return mutationOptions;",
		},
		Export:  true,
		Comment: docLines(op.Summary),
	}
}
