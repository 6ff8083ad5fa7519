package normalize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Schema is a named JSON Schema definition (draft 2020-12).
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// compile turns the definition into a validator. The definition is
// round-tripped through JSON so numbers reach the compiler as json.Number.
func compile(schema *Schema) (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	return compiled, nil
}

// fieldErrors flattens a validation error tree into its leaf mismatches.
func fieldErrors(verr *jsonschema.ValidationError) []FieldError {
	var out []FieldError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, c := range e.Causes {
				walk(c)
			}
			return
		}
		out = append(out, leafErrors(e)...)
	}
	walk(verr)

	sortFieldErrors(out)
	return out
}

func leafErrors(e *jsonschema.ValidationError) []FieldError {
	path := pointer(e.InstanceLocation)

	switch k := e.ErrorKind.(type) {
	case *kind.Required:
		errs := make([]FieldError, 0, len(k.Missing))
		for _, name := range k.Missing {
			errs = append(errs, FieldError{
				Path:     path + "/" + escapePointer(name),
				Keyword:  "required",
				Expected: "present",
				Actual:   "missing",
				Message:  fmt.Sprintf("missing required field %q", name),
			})
		}
		return errs
	case *kind.Type:
		want := strings.Join(k.Want, " or ")
		return []FieldError{{
			Path:     path,
			Keyword:  "type",
			Expected: want,
			Actual:   k.Got,
			Message:  fmt.Sprintf("got %s, want %s", k.Got, want),
		}}
	case *kind.Enum:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = fmt.Sprint(w)
		}
		got := fmt.Sprint(k.Got)
		return []FieldError{{
			Path:     path,
			Keyword:  "enum",
			Expected: strings.Join(want, "|"),
			Actual:   got,
			Message:  fmt.Sprintf("value %q is not one of %s", got, strings.Join(want, ", ")),
		}}
	case *kind.MinItems:
		return []FieldError{{
			Path:     path,
			Keyword:  "minItems",
			Expected: fmt.Sprintf("at least %d items", k.Want),
			Actual:   fmt.Sprintf("%d items", k.Got),
			Message:  fmt.Sprintf("has %d items, want at least %d", k.Got, k.Want),
		}}
	}

	keyword := ""
	if kp := e.ErrorKind.KeywordPath(); len(kp) > 0 {
		keyword = kp[len(kp)-1]
	}
	msg := e.ErrorKind.LocalizedString(message.NewPrinter(language.English))
	return []FieldError{{
		Path:    path,
		Keyword: keyword,
		Actual:  msg,
		Message: msg,
	}}
}

// integerErrors reports every value at an "integer" schema node whose
// literal is not a plain integer, such as 3.0 or 3e0. The schema accepts
// those but they cannot be decoded into Go integer fields.
func integerErrors(schema map[string]any, doc any, path string) []FieldError {
	switch v := doc.(type) {
	case json.Number:
		if !allowsType(schema["type"], "integer") || allowsType(schema["type"], "number") {
			return nil
		}
		if _, err := v.Int64(); err == nil {
			return nil
		}
		return []FieldError{{
			Path:     path,
			Keyword:  "type",
			Expected: "integer",
			Actual:   v.String(),
			Message:  fmt.Sprintf("got %s, want an integer literal", v),
		}}
	case map[string]any:
		props, _ := schema["properties"].(map[string]any)
		var out []FieldError
		for name, raw := range props {
			sub, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			if val, present := v[name]; present {
				out = append(out, integerErrors(sub, val, path+"/"+escapePointer(name))...)
			}
		}
		return out
	case []any:
		items, ok := schema["items"].(map[string]any)
		if !ok {
			return nil
		}
		var out []FieldError
		for i, el := range v {
			out = append(out, integerErrors(items, el, fmt.Sprintf("%s/%d", path, i))...)
		}
		return out
	}
	return nil
}

func allowsType(t any, want string) bool {
	switch v := t.(type) {
	case string:
		return v == want
	case []any:
		for _, e := range v {
			if e == want {
				return true
			}
		}
	case []string:
		for _, e := range v {
			if e == want {
				return true
			}
		}
	}
	return false
}

func sortFieldErrors(errs []FieldError) {
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].Path != errs[j].Path {
			return errs[i].Path < errs[j].Path
		}
		return errs[i].Keyword < errs[j].Keyword
	})
}

func pointer(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	var b strings.Builder
	for _, t := range tokens {
		b.WriteByte('/')
		b.WriteString(escapePointer(t))
	}
	return b.String()
}

var (
	pointerEscaper   = strings.NewReplacer("~", "~0", "/", "~1")
	pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escapePointer(s string) string   { return pointerEscaper.Replace(s) }
func unescapePointer(s string) string { return pointerUnescaper.Replace(s) }
