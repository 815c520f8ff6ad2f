// SPDX-License-Identifier: MPL-2.0

package compiler

import "testing"

func TestNodeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"export all", ExportAll{Module: "./types.gen"}, "export * from './types.gen';"},
		{"type import", Import{Names: []string{"Pet", "Owner"}, Module: "./types.gen", TypeOnly: true}, "import type { Pet, Owner } from './types.gen';"},
		{"value import", Import{Names: []string{"client"}, Module: "@hey-api/client-fetch"}, "import { client } from '@hey-api/client-fetch';"},
		{"type alias", TypeAlias{Name: "Id", Type: "string", Export: true}, "export type Id = string;"},
		{
			"type alias with comment",
			TypeAlias{Name: "Id", Type: "string", Comment: []string{"Identifier", ""}},
			"/**\n * Identifier\n */\ntype Id = string;",
		},
		{"empty interface", Interface{Name: "Empty", Export: true}, "export interface Empty {}"},
		{
			"interface",
			Interface{Name: "Pet", Export: true, Fields: []Field{
				{Name: "id", Type: "number"},
				{Name: "x-tag", Type: "string", Optional: true},
			}},
			"export interface Pet {\n  id: number;\n  'x-tag'?: string;\n}",
		},
		{"const", Const{Name: "PetSchema", Value: "{}", Export: true, AsConst: true}, "export const PetSchema = {} as const;"},
		{"typed const", Const{Name: "n", Type: "number", Value: "1"}, "const n: number = 1;"},
		{
			"function",
			Function{
				Name:     "getPet",
				Generics: []string{"T = unknown"},
				Params:   []Param{{Name: "options", Type: "Options<T>"}, {Name: "extra", Optional: true}},
				Returns:  "Promise<T>",
				Body:     []string{"return fetchPet(options);"},
				Export:   true,
			},
			"export const getPet = <T = unknown>(options: Options<T>, extra?): Promise<T> => {\n  return fetchPet(options);\n};",
		},
		{
			"async function",
			Function{Name: "load", Async: true, Params: []Param{{Name: "data", Type: "any"}}, Body: []string{"return data;"}},
			"const load = async (data: any) => {\n  return data;\n};",
		},
		{"empty comment", Comment{Lines: []string{" ", ""}}, ""},
		{"comment escapes close", Comment{Lines: []string{"a */ b"}}, "/**\n * a *\\/ b\n */"},
		{"raw", Raw("// generated"), "// generated"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInterfaceFieldComment(t *testing.T) {
	t.Parallel()

	got := Interface{Name: "P", Fields: []Field{{Name: "a", Type: "string", Comment: []string{"doc"}}}}.String()
	want := "interface P {\n  /**\n   * doc\n   */\n  a: string;\n}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintSkipsEmptyNodes(t *testing.T) {
	t.Parallel()

	got := Print([]Node{Raw("a"), Comment{}, Raw("b")}, "\n\n")
	if got != "a\n\nb" {
		t.Errorf("Print() = %q", got)
	}
}

func TestIdentifierHelpers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, pascal, camel string
	}{
		{"get_pet_by_id", "GetPetById", "getPetById"},
		{"listPets", "ListPets", "listPets"},
		{"HTTPServer", "HTTPServer", "httpServer"},
		{"ID", "ID", "id"},
		{"pet-store v2", "PetStoreV2", "petStoreV2"},
		{"200 response", "_200Response", "_200Response"},
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			if got := PascalCase(tt.in); got != tt.pascal {
				t.Errorf("PascalCase(%q) = %q, want %q", tt.in, got, tt.pascal)
			}
			if got := CamelCase(tt.in); got != tt.camel {
				t.Errorf("CamelCase(%q) = %q, want %q", tt.in, got, tt.camel)
			}
		})
	}
}

func TestPropertyName(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"name":    "name",
		"$ref":    "$ref",
		"x-rate":  "'x-rate'",
		"1st":     "'1st'",
		"default": "'default'",
		"it's":    `'it\'s'`,
	} {
		if got := PropertyName(in); got != want {
			t.Errorf("PropertyName(%q) = %q, want %q", in, got, want)
		}
	}
}
