// Package normalize turns raw generated text into validated, typed records.
//
// Text passes through an ordered list of cleanup rules, is parsed as JSON,
// validated against a JSON Schema plus optional semantic checks, and has
// schema defaults filled in before decoding. Each stage only runs when the
// previous one succeeded; failures surface as *ParseError or
// *ValidationError and nothing is retried or repaired.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Check is a semantic validation that runs after the schema accepted the
// document. doc is the parsed tree (objects are map[string]any, arrays
// []any, numbers json.Number).
type Check func(doc any) []FieldError

// Config customizes a Normalizer.
type Config struct {
	// Rules overrides DefaultRules when non-nil.
	Rules  []Rule
	Checks []Check
}

// Normalizer runs the cleanup, parse, validate and default stages for one
// schema. It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	schema   *Schema
	compiled *jsonschema.Schema
	rules    []Rule
	checks   []Check
}

// New compiles schema and returns a Normalizer for it.
func New(schema *Schema, cfg Config) (*Normalizer, error) {
	if schema == nil {
		return nil, errors.New("normalize: nil schema")
	}
	compiled, err := compile(schema)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	rules := cfg.Rules
	if rules == nil {
		rules = DefaultRules()
	}

	return &Normalizer{
		schema:   schema,
		compiled: compiled,
		rules:    append([]Rule(nil), rules...),
		checks:   append([]Check(nil), cfg.Checks...),
	}, nil
}

// Schema returns the schema this normalizer validates against.
func (n *Normalizer) Schema() *Schema { return n.schema }

// Clean applies every rule in order.
func (n *Normalizer) Clean(raw string) string {
	text := raw
	for _, r := range n.rules {
		text = r.Apply(text)
	}
	return text
}

// Normalize runs all stages and returns the validated document with
// defaults applied.
func (n *Normalizer) Normalize(raw string) (any, error) {
	cleaned := n.Clean(raw)

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(cleaned))
	if err != nil {
		return nil, &ParseError{Cleaned: cleaned, Err: err}
	}

	if err := n.validate(doc); err != nil {
		return nil, err
	}

	applyDefaults(n.schema.Definition, doc)
	return doc, nil
}

func (n *Normalizer) validate(doc any) error {
	if err := n.compiled.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if !errors.As(err, &verr) {
			return fmt.Errorf("validate %s: %w", n.schema.Name, err)
		}
		return &ValidationError{Schema: n.schema.Name, Errors: fieldErrors(verr)}
	}

	errs := integerErrors(n.schema.Definition, doc, "")
	for _, check := range n.checks {
		errs = append(errs, check(doc)...)
	}
	if len(errs) > 0 {
		sortFieldErrors(errs)
		return &ValidationError{Schema: n.schema.Name, Errors: errs}
	}
	return nil
}

// Decode normalizes raw and decodes the result into T. Unknown fields are
// dropped.
func Decode[T any](n *Normalizer, raw string) (T, error) {
	var out T

	doc, err := n.Normalize(raw)
	if err != nil {
		return out, err
	}

	b, err := json.Marshal(doc)
	if err != nil {
		return out, fmt.Errorf("re-encode %s: %w", n.schema.Name, err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		// Values outside the Go field's range, e.g. 1e30 for an int.
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return out, &ValidationError{Schema: n.schema.Name, Errors: []FieldError{{
				Path:     "/" + strings.ReplaceAll(typeErr.Field, ".", "/"),
				Keyword:  "type",
				Expected: typeErr.Type.String(),
				Actual:   typeErr.Value,
				Message:  fmt.Sprintf("cannot decode %s into %s", typeErr.Value, typeErr.Type),
			}}}
		}
		return out, fmt.Errorf("decode %s: %w", n.schema.Name, err)
	}
	return out, nil
}
