package codehost

import (
	"strings"
)

// ParseSignature extracts the entry-function signature from a node's code:
// the first top-level "def name(params) -> annotation:" found. The param
// list and return annotation may span multiple lines. Parameter type
// annotations default to "any" when absent; a "Tuple[...]"-annotated
// return is flattened into one return type per element, "None" or a
// missing annotation means no return values.
func ParseSignature(code string) (Signature, error) {
	idx := findDef(code)
	if idx < 0 {
		return Signature{}, NewCompileError("no entry function found")
	}

	rest := code[idx+len("def"):]

	open := strings.IndexByte(rest, '(')
	if open < 0 {
		return Signature{}, NewCompileError("malformed entry function: missing parameter list")
	}

	name := strings.TrimSpace(rest[:open])
	if name == "" || !isIdentifier(name) {
		return Signature{}, NewCompileError("malformed entry function name %q", name)
	}

	paramText, after, ok := balanced(rest[open:])
	if !ok {
		return Signature{}, NewCompileError("unbalanced parameter list in %q", name)
	}

	params, err := parseParams(paramText)
	if err != nil {
		return Signature{}, err
	}

	returns, err := parseReturns(name, after)
	if err != nil {
		return Signature{}, err
	}

	return Signature{Name: name, Params: params, Returns: returns}, nil
}

// findDef locates the first "def " keyword at the start of a line.
func findDef(code string) int {
	for _, lineStart := range lineOffsets(code) {
		rest := code[lineStart:]
		trimmed := strings.TrimLeft(rest, " \t")
		if strings.HasPrefix(trimmed, "def ") || strings.HasPrefix(trimmed, "def\t") {
			return lineStart + (len(rest) - len(trimmed))
		}
	}

	return -1
}

func lineOffsets(code string) []int {
	offsets := []int{0}
	for i, r := range code {
		if r == '\n' && i+1 < len(code) {
			offsets = append(offsets, i+1)
		}
	}

	return offsets
}

// balanced returns the text inside the first balanced parenthesis group of
// s (which must start with '(') and everything after the closing paren.
func balanced(s string) (inner, after string, ok bool) {
	depth := 0

	for i := range len(s) {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
			if depth == 0 {
				return s[1:i], s[i+1:], true
			}
		}
	}

	return "", "", false
}

func parseParams(text string) ([]Param, error) {
	params := make([]Param, 0)

	for _, part := range splitTopLevel(text) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		// Defaults are a host concern, not a pin concern.
		if eq := indexTopLevel(part, '='); eq >= 0 {
			part = strings.TrimSpace(part[:eq])
		}

		name := part
		typeTag := "any"

		if colon := indexTopLevel(part, ':'); colon >= 0 {
			name = strings.TrimSpace(part[:colon])
			typeTag = strings.TrimSpace(part[colon+1:])
		}

		// self and star-args do not become pins.
		if name == "self" || strings.HasPrefix(name, "*") {
			continue
		}

		if !isIdentifier(name) {
			return nil, NewCompileError("malformed parameter %q", part)
		}

		params = append(params, Param{Name: name, Type: typeTag})
	}

	return params, nil
}

func parseReturns(fn, after string) ([]string, error) {
	after = strings.TrimSpace(after)
	if strings.HasPrefix(after, ":") {
		return nil, nil
	}

	if !strings.HasPrefix(after, "->") {
		return nil, NewCompileError("malformed signature for %q: expected ':' or '->'", fn)
	}

	annotation := strings.TrimSpace(after[2:])

	end := indexTopLevel(annotation, ':')
	if end < 0 {
		return nil, NewCompileError("malformed return annotation for %q", fn)
	}

	annotation = strings.TrimSpace(annotation[:end])
	annotation = strings.ReplaceAll(annotation, "\n", " ")

	if annotation == "" || annotation == "None" {
		return nil, nil
	}

	lower := strings.ToLower(annotation)
	if strings.HasPrefix(lower, "tuple[") && strings.HasSuffix(annotation, "]") {
		inner := annotation[len("tuple[") : len(annotation)-1]

		types := make([]string, 0)
		for _, part := range splitTopLevel(inner) {
			part = strings.TrimSpace(part)
			if part != "" {
				types = append(types, part)
			}
		}

		return types, nil
	}

	return []string{annotation}, nil
}

// splitTopLevel splits on commas that are not nested inside brackets.
func splitTopLevel(s string) []string {
	parts := make([]string, 0)
	depth := 0
	start := 0

	for i := range len(s) {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}

// indexTopLevel finds the first occurrence of c outside brackets, or -1.
func indexTopLevel(s string, c byte) int {
	depth := 0

	for i := range len(s) {
		switch s[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		default:
			if s[i] == c && depth == 0 {
				return i
			}
		}
	}

	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}
