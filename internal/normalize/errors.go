package normalize

import (
	"fmt"
	"strings"
)

// ParseError indicates the cleaned text is not valid JSON.
type ParseError struct {
	// Cleaned is the text after all rules ran, kept for diagnostics.
	Cleaned string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse generated text: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// FieldError is a single schema mismatch.
type FieldError struct {
	// Path is a JSON pointer to the offending value ("" is the document root).
	Path     string
	Keyword  string
	Expected string
	Actual   string
	Message  string
}

func (f FieldError) String() string {
	path := f.Path
	if path == "" {
		path = "(root)"
	}
	return fmt.Sprintf("%s: %s", path, f.Message)
}

// Field returns the last segment of Path, e.g. "difficulty" for
// "/0/projectIdeas/1/difficulty".
func (f FieldError) Field() string {
	i := strings.LastIndexByte(f.Path, '/')
	return unescapePointer(f.Path[i+1:])
}

// ValidationError indicates the text parsed but does not conform to the
// schema. Errors is sorted by path and never empty.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("%s: validation failed: %s", e.Schema, e.Errors[0])
	}
	return fmt.Sprintf("%s: validation failed: %s (and %d more)", e.Schema, e.Errors[0], len(e.Errors)-1)
}

// HasField reports whether any error refers to a value named field.
func (e *ValidationError) HasField(field string) bool {
	for _, f := range e.Errors {
		if f.Field() == field {
			return true
		}
	}
	return false
}
