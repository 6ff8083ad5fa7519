package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// DescribeSchema renders a JSON schema definition as an indented outline
// listing field names, types, enum choices, list minimums and whether each
// field is required. Output is deterministic: required fields come first in
// declaration order, then optional fields alphabetically.
func DescribeSchema(def map[string]any) string {
	var b strings.Builder
	b.WriteString("Output: ")
	b.WriteString(summary(def))
	b.WriteString("\n")
	writeChildren(&b, def, 1)
	return b.String()
}

func summary(s map[string]any) string {
	if enum, ok := s["enum"].([]any); ok {
		quoted := make([]string, len(enum))
		for i, v := range enum {
			quoted[i] = fmt.Sprintf("%q", fmt.Sprint(v))
		}
		return "one of " + strings.Join(quoted, " | ")
	}

	typ, _ := s["type"].(string)
	switch typ {
	case "array":
		out := "array"
		if items, ok := s["items"].(map[string]any); ok {
			out += " of " + summary(items)
		}
		if min := intValue(s["minItems"]); min > 0 {
			out += fmt.Sprintf(" (at least %d)", min)
		}
		return out
	case "integer", "number":
		if _, ok := s["minimum"]; ok {
			return fmt.Sprintf("%s (>= %d)", typ, intValue(s["minimum"]))
		}
		return typ
	case "":
		return "any"
	default:
		return typ
	}
}

func writeChildren(b *strings.Builder, s map[string]any, depth int) {
	typ, _ := s["type"].(string)
	switch typ {
	case "array":
		if items, ok := s["items"].(map[string]any); ok {
			writeChildren(b, items, depth)
		}
	case "object":
		props, _ := s["properties"].(map[string]any)
		required := requiredSet(s)
		for _, name := range propertyOrder(props, s["required"]) {
			sub, _ := props[name].(map[string]any)
			writeProperty(b, name, sub, required[name], depth)
		}
	}
}

func writeProperty(b *strings.Builder, name string, s map[string]any, required bool, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("- ")
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(summary(s))
	if required {
		b.WriteString(" [required]")
	} else {
		b.WriteString(" [optional]")
	}
	if def, ok := s["default"]; ok {
		fmt.Fprintf(b, " [default: %v]", def)
	}
	if desc, ok := s["description"].(string); ok && desc != "" {
		b.WriteString(" - ")
		b.WriteString(desc)
	}
	b.WriteString("\n")
	writeChildren(b, s, depth+1)
}

func requiredSet(s map[string]any) map[string]bool {
	out := make(map[string]bool)
	for _, r := range toStrings(s["required"]) {
		out[r] = true
	}
	return out
}

// propertyOrder lists required properties in declaration order followed by
// the remaining properties sorted by name.
func propertyOrder(props map[string]any, required any) []string {
	order := make([]string, 0, len(props))
	seen := make(map[string]bool, len(props))
	for _, r := range toStrings(required) {
		if _, ok := props[r]; ok && !seen[r] {
			order = append(order, r)
			seen[r] = true
		}
	}

	var rest []string
	for name := range props {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func intValue(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
