package toolcall

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Argument pairs in functional calls: key=value where the value is a
// double-quoted string (with backslash escapes), a single-quoted string, a
// flat [...] or {...} literal, or a bare run of non-comma characters.
var argPairRegex = regexp.MustCompile(`(\w+)\s*=\s*("(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'|\[[^\]]*\]|\{[^}]*\}|[^,]+)`)

// ArgumentCoercer decodes the comma-separated key=value argument text of a
// functional call into typed parameters.
type ArgumentCoercer struct{}

// Coerce parses argument text into a parameter map. Each value is first
// decoded as a strict JSON literal, so numbers, booleans, null, quoted
// strings and flat arrays or objects come out as native values. Anything
// that is not valid JSON is kept as a string with matching surrounding
// quotes removed. The result is never nil; unparseable text yields an empty
// map rather than an error.
func (ArgumentCoercer) Coerce(args string) map[string]any {
	params := make(map[string]any)
	for _, m := range argPairRegex.FindAllStringSubmatch(args, -1) {
		key := m[1]
		params[key] = coerceValue(strings.TrimSpace(m[2]))
	}
	return params
}

func coerceValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return stripQuotes(raw)
}

// stripQuotes removes one matching pair of surrounding quotes and unescapes
// that quote character inside the body. Mismatched or absent quotes leave
// the value untouched.
func stripQuotes(s string) string {
	if len(s) < 2 {
		return s
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return s
	}
	body := s[1 : len(s)-1]
	return strings.ReplaceAll(body, `\`+string(q), string(q))
}
