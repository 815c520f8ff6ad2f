// SPDX-License-Identifier: MPL-2.0

package compiler

import (
	"strings"
	"unicode"
)

// reservedWords cannot be used as bare identifiers.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true, "do": true,
	"else": true, "enum": true, "export": true, "extends": true, "false": true,
	"finally": true, "for": true, "function": true, "if": true, "import": true,
	"in": true, "instanceof": true, "new": true, "null": true, "return": true,
	"super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
}

// Quote returns s as a single-quoted string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", `\r`)
	return "'" + r.Replace(s) + "'"
}

// IsIdentifier reports whether s can be used as a bare identifier.
func IsIdentifier(s string) bool {
	if s == "" || reservedWords[s] {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}

// PropertyName returns name unchanged when it is a valid identifier and
// quoted otherwise.
func PropertyName(name string) string {
	if IsIdentifier(name) {
		return name
	}
	return Quote(name)
}

// words splits s on any non-alphanumeric rune and on lower-to-upper case
// boundaries.
func words(s string) []string {
	var (
		out     []string
		current []rune
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, string(current))
			current = current[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			flush()
			continue
		}
		if i > 0 && unicode.IsUpper(r) && len(current) > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				flush()
			}
		}
		current = append(current, r)
	}
	flush()
	return out
}

// PascalCase converts s to PascalCase. The result is prefixed with an
// underscore when it would start with a digit.
func PascalCase(s string) string {
	var sb strings.Builder
	for _, w := range words(s) {
		r := []rune(w)
		sb.WriteRune(unicode.ToUpper(r[0]))
		sb.WriteString(string(r[1:]))
	}
	return safeStart(sb.String())
}

// CamelCase converts s to camelCase.
func CamelCase(s string) string {
	p := PascalCase(s)
	if p == "" || p[0] == '_' {
		return p
	}
	r := []rune(p)
	// Keep leading acronyms readable: "HTTPServer" becomes "httpServer".
	i := 0
	for i < len(r) && unicode.IsUpper(r[i]) {
		i++
	}
	switch {
	case i == len(r):
		return strings.ToLower(p)
	case i > 1:
		i--
	}
	return strings.ToLower(string(r[:i])) + string(r[i:])
}

func safeStart(s string) string {
	if s == "" {
		return s
	}
	if unicode.IsDigit(rune(s[0])) {
		return "_" + s
	}
	return s
}
