// Package prompt renders the instructions sent to the generation service
// for a teaching roadmap.
package prompt

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/abhisek/pathwise/internal/roadmap"
)

// DefaultMinNodes is how many nodes the prompt asks for when Params leaves
// MinNodes unset.
const DefaultMinNodes = 4

// Subjects maps subject keys to display names.
var Subjects = map[string]string{
	"computerScience": "Computer Science",
	"mathematics":     "Mathematics",
	"physics":         "Physics",
	"chemistry":       "Chemistry",
	"biology":         "Biology",
}

// GradeLevels maps grade level keys to display names.
var GradeLevels = map[string]string{
	"elementary":   "Elementary School",
	"middleSchool": "Middle School",
	"highSchool":   "High School",
	"college":      "College",
}

// Params are the caller-supplied inputs for one roadmap prompt.
type Params struct {
	Subject    string `json:"subject" validate:"required,oneof=computerScience mathematics physics chemistry biology"`
	GradeLevel string `json:"gradeLevel" validate:"required,oneof=elementary middleSchool highSchool college"`
	Language   string `json:"language" validate:"required,bcp47_language_tag"`
	MinNodes   int    `json:"minNodes,omitempty" validate:"gte=0,lte=20"`
}

// Prompt is the rendered two-part instruction.
type Prompt struct {
	System string
	User   string
}

// ParamsError reports which parameters failed validation.
type ParamsError struct {
	// Fields maps the JSON field name to a short reason.
	Fields map[string]string
}

func (e *ParamsError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %s", name, e.Fields[name])
	}
	return "invalid prompt params: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

// Validate checks p and returns a *ParamsError describing every bad field.
func (p Params) Validate() error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "is required"
		case "oneof":
			fields[fe.Field()] = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
		case "bcp47_language_tag":
			fields[fe.Field()] = "must be a language code such as en or sv"
		default:
			fields[fe.Field()] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
	}
	return &ParamsError{Fields: fields}
}

// LanguageName returns the English name of a language code, e.g.
// "Swedish" for "sv". Unparseable codes are returned unchanged.
func LanguageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

const systemPrompt = `You are an expert teaching assistant. Create a detailed teaching roadmap with pedagogical resources and strategies for instructors.
Format the response as a JSON array of teaching nodes with lesson plans, teaching strategies, student engagement tips and educational resources.

Guidelines:
- For video resources, only use real URLs from YouTube or other educational platforms. Prefer channels like Computerphile, CS50 or Khan Academy, and courses from Coursera, edX or Udacity.
- Populate every field in the schema with meaningful content.
- Keep responses focused and concise.
- Make difficulty levels appropriate for the requested grade level.
- Include practical, hands-on project ideas.
- Ensure all URLs are real and functional.
- Give every node a unique "id". List prerequisite node ids in "dependencies".
- Generate at least %d nodes.
- Each node must include at least %d videos, at least %d project ideas and at least %d educational resources.
- Write all content in %s.
- Return only the raw JSON array. Do not use markdown formatting or code blocks.

The response must follow this schema:
%s`

// Build renders the system and user messages for p. It is deterministic
// and has no side effects.
func Build(p Params, limits roadmap.Limits) (Prompt, error) {
	if err := p.Validate(); err != nil {
		return Prompt{}, err
	}

	minNodes := p.MinNodes
	if minNodes == 0 {
		minNodes = DefaultMinNodes
	}
	if minNodes < limits.MinNodes {
		minNodes = limits.MinNodes
	}

	lang := LanguageName(p.Language)
	schema := roadmap.Schema(limits)

	system := fmt.Sprintf(systemPrompt,
		minNodes,
		limits.MinVideos,
		limits.MinProjectIdeas,
		limits.MinResources,
		lang,
		DescribeSchema(schema.Definition),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", Subjects[p.Subject])
	fmt.Fprintf(&b, "Grade level: %s\n", GradeLevels[p.GradeLevel])
	fmt.Fprintf(&b, "Language: %s\n", lang)
	fmt.Fprintf(&b, "Nodes: at least %d\n", minNodes)
	b.WriteString("\nCreate the teaching roadmap.")

	return Prompt{System: system, User: b.String()}, nil
}
