package normalize_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/normalize"
	"github.com/abhisek/pathwise/internal/roadmap"
	"github.com/abhisek/pathwise/internal/roadmap/roadmaptest"
)

var node = roadmaptest.Node

func encode(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func newNormalizer(t *testing.T) *normalize.Normalizer {
	t.Helper()
	n, err := roadmap.NewNormalizer(roadmap.DefaultLimits())
	require.NoError(t, err)
	return n
}

func requireValidationError(t *testing.T, err error) *normalize.ValidationError {
	t.Helper()
	var verr *normalize.ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T: %v", err, err)
	require.NotEmpty(t, verr.Errors)
	return verr
}

func TestDecode_FencedSingleNode(t *testing.T) {
	n := newNormalizer(t)
	n1 := node("1", "Intro")

	raw := "```json\n" + encode(t, []any{n1}) + "\n```"
	nodes, err := normalize.Decode[[]roadmap.Node](n, raw)
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	assert.Equal(t, "1", nodes[0].ID)
	assert.Equal(t, "Intro", nodes[0].Title)
	assert.False(t, nodes[0].Completed)
	assert.Len(t, nodes[0].Videos, 3)
	assert.Equal(t, roadmap.DifficultyMedium, nodes[0].ProjectIdeas[0].Difficulty)
	assert.Equal(t, 3, nodes[0].ProjectIdeas[0].GroupSize)
}

func TestDecode_FencedEqualsUnwrapped(t *testing.T) {
	n := newNormalizer(t)
	body := encode(t, []any{node("a", "Loops"), node("b", "Functions")})

	wrappers := []string{
		"```json\n%s\n```",
		"```\n%s\n```",
		"```json%s```",
		"Sure! Here is the roadmap:\n```json\n%s\n```\n",
	}

	plain, err := normalize.Decode[[]roadmap.Node](n, body)
	require.NoError(t, err)

	for _, w := range wrappers {
		got, err := normalize.Decode[[]roadmap.Node](n, fmt.Sprintf(w, body))
		if w == wrappers[3] {
			// Prose around the fence is not stripped and fails to parse.
			var perr *normalize.ParseError
			assert.True(t, errors.As(err, &perr), "expected ParseError for %q", w)
			continue
		}
		require.NoError(t, err, "wrapper %q", w)
		if diff := cmp.Diff(plain, got); diff != "" {
			t.Errorf("wrapper %q changed records (-plain +fenced):\n%s", w, diff)
		}
	}
}

func TestDecode_TrailingCommas(t *testing.T) {
	n := newNormalizer(t)
	body := encode(t, []any{node("1", "Intro")})

	withCommas := strings.Replace(body, `"paper"]`, `"paper",]`, 1)
	withCommas = strings.TrimSuffix(withCommas, "}]") + ",}\n,]"
	require.NotEqual(t, body, withCommas)

	want, err := normalize.Decode[[]roadmap.Node](n, body)
	require.NoError(t, err)
	got, err := normalize.Decode[[]roadmap.Node](n, withCommas)
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("trailing commas changed records:\n%s", diff)
	}
}

func TestDecode_ParseError(t *testing.T) {
	n := newNormalizer(t)

	for _, raw := range []string{"{not json", "", "```json\n```", "[] []", "[{\"id\":\"1\"}"} {
		_, err := normalize.Decode[[]roadmap.Node](n, raw)
		var perr *normalize.ParseError
		require.True(t, errors.As(err, &perr), "input %q: expected ParseError, got %T: %v", raw, err, err)

		var verr *normalize.ValidationError
		assert.False(t, errors.As(err, &verr))
	}

	_, err := normalize.Decode[[]roadmap.Node](n, "```json\n{not json\n```")
	var perr *normalize.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "{not json", perr.Cleaned)
}

func TestDecode_MissingRequiredField(t *testing.T) {
	n := newNormalizer(t)

	for _, field := range []string{"id", "title", "timeEstimate", "videos", "dependencies", "studentMotivationTips"} {
		t.Run(field, func(t *testing.T) {
			nd := node("1", "Intro")
			delete(nd, field)

			_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
			verr := requireValidationError(t, err)
			assert.True(t, verr.HasField(field), "errors %v do not mention %q", verr.Errors, field)
			assert.Equal(t, "/0/"+field, verr.Errors[0].Path)
			assert.Equal(t, "required", verr.Errors[0].Keyword)
		})
	}
}

func TestDecode_MissingNestedField(t *testing.T) {
	n := newNormalizer(t)
	nd := node("1", "Intro")
	delete(nd["projectIdeas"].([]any)[1].(map[string]any), "groupSize")

	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	verr := requireValidationError(t, err)
	assert.Equal(t, "/0/projectIdeas/1/groupSize", verr.Errors[0].Path)
}

func TestDecode_CompletedDefaultsOnlyWhenAbsent(t *testing.T) {
	n := newNormalizer(t)

	absent := node("1", "Intro")
	explicit := node("2", "Next")
	explicit["completed"] = true

	nodes, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{absent, explicit}))
	require.NoError(t, err)
	assert.False(t, nodes[0].Completed)
	assert.True(t, nodes[1].Completed)

	doc, err := n.Normalize(encode(t, []any{absent}))
	require.NoError(t, err)
	assert.Equal(t, false, doc.([]any)[0].(map[string]any)["completed"])
}

func TestDecode_EnumOutsideSet(t *testing.T) {
	n := newNormalizer(t)

	tests := []struct {
		name   string
		mutate func(map[string]any)
		field  string
		actual string
	}{
		{
			name: "project difficulty",
			mutate: func(nd map[string]any) {
				nd["projectIdeas"].([]any)[0].(map[string]any)["difficulty"] = "impossible"
			},
			field:  "difficulty",
			actual: "impossible",
		},
		{
			name: "resource type",
			mutate: func(nd map[string]any) {
				nd["resources"].([]any)[2].(map[string]any)["type"] = "podcast"
			},
			field:  "type",
			actual: "podcast",
		},
		{
			name: "case is not coerced",
			mutate: func(nd map[string]any) {
				nd["projectIdeas"].([]any)[1].(map[string]any)["difficulty"] = "Easy"
			},
			field:  "difficulty",
			actual: "Easy",
		},
		{
			name: "assessment type",
			mutate: func(nd map[string]any) {
				nd["assessmentIdeas"].([]any)[0].(map[string]any)["type"] = "exam"
			},
			field:  "type",
			actual: "exam",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nd := node("1", "Intro")
			tt.mutate(nd)

			_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
			verr := requireValidationError(t, err)
			require.True(t, verr.HasField(tt.field), "errors %v do not name %q", verr.Errors, tt.field)
			assert.Equal(t, "enum", verr.Errors[0].Keyword)
			assert.Equal(t, tt.actual, verr.Errors[0].Actual)
		})
	}
}

func TestDecode_StrictTyping(t *testing.T) {
	n := newNormalizer(t)

	nd := node("1", "Intro")
	nd["projectIdeas"].([]any)[0].(map[string]any)["groupSize"] = "3"

	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	verr := requireValidationError(t, err)
	assert.Equal(t, "/0/projectIdeas/0/groupSize", verr.Errors[0].Path)
	assert.Equal(t, "type", verr.Errors[0].Keyword)
	assert.Equal(t, "string", verr.Errors[0].Actual)

	nd = node("1", "Intro")
	nd["completed"] = "false"
	_, err = normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	verr = requireValidationError(t, err)
	assert.True(t, verr.HasField("completed"))
}

func TestDecode_TopLevelShape(t *testing.T) {
	n := newNormalizer(t)

	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, node("1", "Intro")))
	verr := requireValidationError(t, err)
	assert.Equal(t, "", verr.Errors[0].Path)
	assert.Equal(t, "type", verr.Errors[0].Keyword)
	assert.Equal(t, "object", verr.Errors[0].Actual)

	_, err = normalize.Decode[[]roadmap.Node](n, "[]")
	verr = requireValidationError(t, err)
	assert.Equal(t, "minItems", verr.Errors[0].Keyword)

	_, err = normalize.Decode[[]roadmap.Node](n, `["not a node"]`)
	verr = requireValidationError(t, err)
	assert.Equal(t, "/0", verr.Errors[0].Path)
}

func TestDecode_VideosMinimum(t *testing.T) {
	n := newNormalizer(t)
	min := roadmap.DefaultLimits().MinVideos

	atMin := node("1", "Intro")
	require.Len(t, atMin["videos"], min)
	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{atMin}))
	require.NoError(t, err)

	below := node("1", "Intro")
	below["videos"] = below["videos"].([]any)[:min-1]
	_, err = normalize.Decode[[]roadmap.Node](n, encode(t, []any{below}))
	verr := requireValidationError(t, err)
	assert.Equal(t, "/0/videos", verr.Errors[0].Path)
	assert.Equal(t, "minItems", verr.Errors[0].Keyword)
	assert.Equal(t, fmt.Sprintf("%d items", min-1), verr.Errors[0].Actual)
}

func TestDecode_OtherMinimums(t *testing.T) {
	n := newNormalizer(t)

	nd := node("1", "Intro")
	nd["resources"] = nd["resources"].([]any)[:3]
	nd["projectIdeas"] = nd["projectIdeas"].([]any)[:1]

	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 2)
	// Sorted by path.
	assert.Equal(t, "/0/projectIdeas", verr.Errors[0].Path)
	assert.Equal(t, "/0/resources", verr.Errors[1].Path)
}

func TestDecode_UnknownFieldsIgnored(t *testing.T) {
	n := newNormalizer(t)

	nd := node("1", "Intro")
	nd["practicePrompt"] = "legacy field"
	nd["videos"].([]any)[0].(map[string]any)["difficulty"] = "children"

	nodes, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestDecode_DuplicateIDs(t *testing.T) {
	n := newNormalizer(t)

	_, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{node("1", "A"), node("2", "B"), node("1", "C")}))
	verr := requireValidationError(t, err)
	assert.Equal(t, "/2/id", verr.Errors[0].Path)
	assert.Equal(t, "uniqueId", verr.Errors[0].Keyword)
}

func TestDecode_DanglingDependenciesAccepted(t *testing.T) {
	n := newNormalizer(t)

	nd := node("1", "Intro")
	nd["dependencies"] = []any{"does-not-exist", "1"}

	nodes, err := normalize.Decode[[]roadmap.Node](n, encode(t, []any{nd}))
	require.NoError(t, err)
	assert.Equal(t, []string{"does-not-exist", "1"}, nodes[0].Dependencies)
}

func TestDecode_Idempotent(t *testing.T) {
	n := newNormalizer(t)

	bad := node("1", "Intro")
	bad["projectIdeas"].([]any)[0].(map[string]any)["difficulty"] = "impossible"

	inputs := []string{
		"```json\n" + strings.TrimSuffix(encode(t, []any{node("1", "Intro"), node("2", "Next")}), "]") + ",]\n```",
		encode(t, []any{bad}),
		"{not json",
	}

	for _, raw := range inputs {
		first, err1 := normalize.Decode[[]roadmap.Node](n, raw)
		second, err2 := normalize.Decode[[]roadmap.Node](n, raw)

		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("records differ between runs:\n%s", diff)
		}
		if (err1 == nil) != (err2 == nil) {
			t.Fatalf("error presence differs: %v vs %v", err1, err2)
		}
		if err1 != nil {
			assert.Equal(t, err1.Error(), err2.Error())
			var v1, v2 *normalize.ValidationError
			if errors.As(err1, &v1) && errors.As(err2, &v2) {
				assert.Equal(t, v1.Errors, v2.Errors)
			}
		}
	}
}

func TestNormalizer_ConcurrentUse(t *testing.T) {
	n := newNormalizer(t)

	good := "```json\n" + encode(t, []any{node("1", "Intro")}) + "\n```"
	bad := encode(t, []any{node("1", "A"), node("1", "B")})

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				nodes, err := normalize.Decode[[]roadmap.Node](n, good)
				if err != nil || len(nodes) != 1 || nodes[0].Completed {
					errs <- fmt.Errorf("good input: nodes=%v err=%v", nodes, err)
				}
				return
			}
			if _, err := normalize.Decode[[]roadmap.Node](n, bad); err == nil {
				errs <- errors.New("bad input: expected error")
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestNew_InvalidSchema(t *testing.T) {
	_, err := normalize.New(&normalize.Schema{
		Name:       "broken",
		Definition: map[string]any{"type": 42},
	}, normalize.Config{})
	assert.Error(t, err)

	_, err = normalize.New(nil, normalize.Config{})
	assert.Error(t, err)
}

func TestNormalizer_CustomRules(t *testing.T) {
	n, err := normalize.New(&normalize.Schema{
		Name:       "numbers",
		Definition: map[string]any{"type": "array", "items": map[string]any{"type": "integer"}},
	}, normalize.Config{Rules: []normalize.Rule{normalize.TrimSpaceRule{}}})
	require.NoError(t, err)

	got, err := normalize.Decode[[]int](n, "  [1, 2]  ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)

	// Fence stripping was not configured.
	_, err = normalize.Decode[[]int](n, "```\n[1]\n```")
	var perr *normalize.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestDecode_IntegralFloatForIntField(t *testing.T) {
	n, err := normalize.New(&normalize.Schema{
		Name: "sizes",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"size": map[string]any{"type": "integer"},
			},
		},
	}, normalize.Config{})
	require.NoError(t, err)

	type sizes struct {
		Size int `json:"size"`
	}

	got, err := normalize.Decode[sizes](n, `{"size": 2}`)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Size)

	// JSON Schema treats 2.0 as an integer; Go's decoder does not.
	_, err = normalize.Decode[sizes](n, `{"size": 2.0}`)
	verr := requireValidationError(t, err)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "/size", verr.Errors[0].Path)
	assert.Equal(t, "integer", verr.Errors[0].Expected)
}

func TestDecode_IntegralFloatsReportedPerValue(t *testing.T) {
	n := newNormalizer(t)

	raw := encode(t, []any{node("1", "Intro"), node("2", "Next")})
	raw = strings.ReplaceAll(raw, `"groupSize":3,`, `"groupSize":3.0,`)

	_, err := normalize.Decode[[]roadmap.Node](n, raw)
	verr := requireValidationError(t, err)

	var paths []string
	for _, fe := range verr.Errors {
		assert.Equal(t, "type", fe.Keyword)
		assert.Equal(t, "3.0", fe.Actual)
		paths = append(paths, fe.Path)
	}
	assert.Equal(t, []string{
		"/0/projectIdeas/0/groupSize",
		"/0/projectIdeas/1/groupSize",
		"/1/projectIdeas/0/groupSize",
		"/1/projectIdeas/1/groupSize",
	}, paths)
	assert.True(t, verr.HasField("groupSize"))
}
