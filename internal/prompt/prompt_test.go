package prompt

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/roadmap"
)

func validParams() Params {
	return Params{Subject: "physics", GradeLevel: "highSchool", Language: "sv"}
}

func TestBuild_UserMessage(t *testing.T) {
	p, err := Build(validParams(), roadmap.DefaultLimits())
	require.NoError(t, err)

	assert.Contains(t, p.User, "Subject: Physics\n")
	assert.Contains(t, p.User, "Grade level: High School\n")
	assert.Contains(t, p.User, "Language: Swedish\n")
	assert.Contains(t, p.User, "Nodes: at least 4\n")
}

func TestBuild_SystemEmbedsContract(t *testing.T) {
	limits := roadmap.Limits{MinNodes: 1, MinProjectIdeas: 2, MinResources: 5, MinVideos: 3}
	p, err := Build(validParams(), limits)
	require.NoError(t, err)

	for _, want := range []string{
		"at least 3 videos",
		"at least 2 project ideas",
		"at least 5 educational resources",
		"Write all content in Swedish.",
		"Return only the raw JSON array",
		"Output: array of object (at least 1)",
		`- difficulty: one of "easy" | "medium" | "hard" [required]`,
		`- type: one of "video" | "article" | "exercise" | "documentation" | "tutorial" [required]`,
		"- videos: array of object (at least 3) [required]",
		"- resources: array of object (at least 5) [required]",
		"- completed: boolean [optional] [default: false]",
		"- groupSize: integer (>= 1) [required]",
		"- rubric: array of string [optional]",
	} {
		assert.Contains(t, p.System, want)
	}
}

func TestBuild_NoUnresolvedPlaceholders(t *testing.T) {
	p, err := Build(validParams(), roadmap.DefaultLimits())
	require.NoError(t, err)

	for _, text := range []string{p.System, p.User} {
		assert.NotContains(t, text, "%!")
		assert.NotContains(t, text, "%d")
		assert.NotContains(t, text, "%s")
		assert.NotContains(t, text, "${")
	}
}

func TestBuild_Deterministic(t *testing.T) {
	first, err := Build(validParams(), roadmap.DefaultLimits())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Build(validParams(), roadmap.DefaultLimits())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}

func TestBuild_MinNodes(t *testing.T) {
	p := validParams()
	p.MinNodes = 7
	out, err := Build(p, roadmap.DefaultLimits())
	require.NoError(t, err)
	assert.Contains(t, out.System, "Generate at least 7 nodes.")

	// The schema floor wins over a smaller request.
	p.MinNodes = 2
	out, err = Build(p, roadmap.Limits{MinNodes: 5, MinProjectIdeas: 2, MinResources: 4, MinVideos: 3})
	require.NoError(t, err)
	assert.Contains(t, out.User, "Nodes: at least 5")
}

func TestBuild_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		fields []string
	}{
		{"empty", Params{}, []string{"subject", "gradeLevel", "language"}},
		{"unknown subject", Params{Subject: "history", GradeLevel: "college", Language: "en"}, []string{"subject"}},
		{"unknown grade", Params{Subject: "biology", GradeLevel: "kindergarten", Language: "en"}, []string{"gradeLevel"}},
		{"bad language", Params{Subject: "biology", GradeLevel: "college", Language: "not a language"}, []string{"language"}},
		{"too many nodes", Params{Subject: "biology", GradeLevel: "college", Language: "en", MinNodes: 50}, []string{"minNodes"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.params, roadmap.DefaultLimits())
			var perr *ParamsError
			require.True(t, errors.As(err, &perr), "expected ParamsError, got %v", err)
			assert.Len(t, perr.Fields, len(tt.fields))
			for _, f := range tt.fields {
				assert.Contains(t, perr.Fields, f)
			}
		})
	}
}

func TestParamsError_Message(t *testing.T) {
	err := (&ParamsError{Fields: map[string]string{
		"subject":    "is required",
		"gradeLevel": "is required",
	}}).Error()
	assert.Equal(t, "invalid prompt params: gradeLevel is required; subject is required", err)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "Swedish", LanguageName("sv"))
	assert.Equal(t, "???", LanguageName("???"))
}

func TestDescribeSchema_Ordering(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"zeta":  map[string]any{"type": "string"},
			"alpha": map[string]any{"type": "string"},
			"must":  map[string]any{"type": "string", "description": "Always there"},
			"first": map[string]any{"type": "integer"},
		},
		"required": []any{"must", "first"},
	}

	got := DescribeSchema(def)
	want := strings.Join([]string{
		"Output: object",
		"  - must: string [required] - Always there",
		"  - first: integer [required]",
		"  - alpha: string [optional]",
		"  - zeta: string [optional]",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestDescribeSchema_Nested(t *testing.T) {
	got := DescribeSchema(roadmap.Schema(roadmap.DefaultLimits()).Definition)

	// Nested object fields are indented under their parent.
	assert.Contains(t, got, "  - projectIdeas: array of object (at least 2) [required]\n    - title: string [required]\n")
	assert.True(t, strings.HasPrefix(got, "Output: array of object (at least 1)\n  - id: string [required]"))
}
