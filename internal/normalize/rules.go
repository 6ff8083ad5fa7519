package normalize

import (
	"regexp"
	"strings"
)

// Rule is a single text rewrite applied to generated text before parsing.
// Apply must be idempotent: applying a rule to its own output is a no-op.
type Rule interface {
	Name() string
	Apply(text string) string
}

// DefaultRules returns the cleanup rules in the order they run.
func DefaultRules() []Rule {
	return []Rule{
		CodeFenceRule{},
		TrailingCommaRule{},
		TrimSpaceRule{},
	}
}

// fencePattern matches a Markdown fence delimiter with an optional
// language tag and the newline that follows it, at the start of the input.
var fencePattern = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\n?")

// CodeFenceRule removes Markdown code-fence delimiters, tagged or bare,
// wherever they appear outside JSON string literals.
type CodeFenceRule struct{}

func (CodeFenceRule) Name() string { return "strip-code-fences" }

func (CodeFenceRule) Apply(text string) string {
	// Removing one delimiter can splice stray backticks into a new one.
	for {
		out := stripFences(text)
		if out == text {
			return out
		}
		text = out
	}
}

func stripFences(text string) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	inString := false
	escaped := false

	for i := 0; i < len(text); {
		c := text[i]

		if inString {
			b.WriteByte(c)
			i++
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		if c == '`' {
			if loc := fencePattern.FindStringIndex(text[i:]); loc != nil {
				i += loc[1]
				continue
			}
		}
		if c == '"' {
			inString = true
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// TrailingCommaRule removes commas that directly precede a closing brace or
// bracket, ignoring anything inside string literals.
type TrailingCommaRule struct{}

func (TrailingCommaRule) Name() string { return "strip-trailing-commas" }

func (TrailingCommaRule) Apply(text string) string {
	if !strings.Contains(text, ",") {
		return text
	}

	out := make([]byte, 0, len(text))
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]

		if inString {
			out = append(out, c)
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '}', ']':
			out = dropTrailingCommas(out)
		}
		out = append(out, c)
	}

	return string(out)
}

// dropTrailingCommas strips every comma (and the whitespace around it) at
// the tail of buf. buf is returned unchanged when it does not end in a
// comma after optional whitespace.
func dropTrailingCommas(buf []byte) []byte {
	end := len(buf)
	removed := false
	for {
		j := end
		for j > 0 && isSpace(buf[j-1]) {
			j--
		}
		if j == 0 || buf[j-1] != ',' {
			break
		}
		end = j - 1
		removed = true
	}
	if !removed {
		return buf
	}
	return buf[:end]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// TrimSpaceRule trims leading and trailing whitespace.
type TrimSpaceRule struct{}

func (TrimSpaceRule) Name() string { return "trim-space" }

func (TrimSpaceRule) Apply(text string) string { return strings.TrimSpace(text) }
