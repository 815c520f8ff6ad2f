// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

const testSchema = `
#Config: {
	input?:   string
	plugins?: [...(string | {name: string, ...})]
	dry_run?: bool
}
`

func TestDecodeMap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{"valid", `input: "./openapi.yaml", plugins: ["@hey-api/sdk", {name: "zod"}]`, ""},
		{"empty", ``, ""},
		{"wrong type", `dry_run: "yes"`, "dry_run"},
		{"unknown field", `outputs: "x"`, "outputs"},
		{"bad plugin entry", `plugins: ["a", 3]`, "plugins[1]"},
		{"syntax error", `input: `, "config.cue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := DecodeMap([]byte(testSchema), []byte(tt.data), "#Config", WithFilename("config.cue"))
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if tt.data != "" && m["input"] != "./openapi.yaml" {
					t.Errorf("input = %v", m["input"])
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeMapFileSize(t *testing.T) {
	t.Parallel()

	_, err := DecodeMap([]byte(testSchema), []byte(`input: "0123456789"`), "#Config", WithMaxFileSize(4))
	if err == nil || !strings.Contains(err.Error(), "exceeds maximum") {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path []string
		want string
	}{
		{nil, ""},
		{[]string{"output"}, "output"},
		{[]string{"plugins", "0", "name"}, "plugins[0].name"},
		{[]string{"0"}, "0"},
	}
	for _, tt := range tests {
		if got := FormatPath(tt.path); got != tt.want {
			t.Errorf("FormatPath(%v) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestFormatErrorPlain(t *testing.T) {
	t.Parallel()

	if FormatError(nil, "x") != nil {
		t.Error("FormatError(nil) should be nil")
	}
	err := FormatError(errors.New("boom"), "config.cue")
	if err == nil || !strings.HasPrefix(err.Error(), "config.cue: ") || !strings.Contains(err.Error(), "boom") {
		t.Errorf("unexpected error: %v", err)
	}
}
