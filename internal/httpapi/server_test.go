package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/pathwise/internal/llm"
	"github.com/abhisek/pathwise/internal/normalize"
	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/roadmap"
	"github.com/abhisek/pathwise/internal/roadmap/roadmaptest"
	"github.com/abhisek/pathwise/internal/roadmapgen"
	"github.com/abhisek/pathwise/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router   *gin.Engine
	mock     *llm.MockProvider
	roadmaps *roadmap.Repository
	board    *projects.Board
}

func newFixture(t *testing.T, responses ...llm.MockResponse) *fixture {
	t.Helper()
	kv := store.NewMemoryKV()
	mock := llm.NewMockProvider(responses...)
	gen, err := roadmapgen.New(mock, roadmapgen.DefaultConfig(), nil)
	require.NoError(t, err)

	f := &fixture{
		mock:     mock,
		roadmaps: roadmap.NewRepository(kv),
		board:    projects.NewBoard(kv),
	}
	f.router = NewRouter(Config{Generator: gen, Roadmaps: f.roadmaps, Projects: f.board})
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

var physics = map[string]any{"subject": "physics", "gradeLevel": "highSchool", "language": "en"}

func TestHealthz(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGenerateRoadmap(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: roadmaptest.Fenced(roadmaptest.Roadmap("a", "b", "c"))})

	w := f.do(t, http.MethodPost, "/api/roadmaps/s1/generate", physics)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decode[roadmapResponse](t, w)
	assert.Equal(t, "s1", resp.Session)
	require.Len(t, resp.Nodes, 3)
	assert.Equal(t, "physics", resp.Nodes[0].Subject)
	assert.Equal(t, 3, resp.Progress.TotalNodes)
	assert.Equal(t, []string{"a"}, resp.Progress.NextUp)
	assert.Equal(t, []string{"a", "b", "c"}, resp.Order)
	assert.Empty(t, resp.Warnings)

	w = f.do(t, http.MethodGet, "/api/roadmaps/s1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[roadmapResponse](t, w).Nodes, 3)
}

func TestGenerateRoadmap_Errors(t *testing.T) {
	tests := []struct {
		name     string
		response llm.MockResponse
		body     any
		status   int
		code     string
	}{
		{
			name:   "bad params",
			body:   map[string]any{"subject": "history", "gradeLevel": "college", "language": "en"},
			status: http.StatusBadRequest,
			code:   "invalid_params",
		},
		{
			name:     "unparseable",
			response: llm.MockResponse{Text: "Sorry, I cannot help with that."},
			body:     physics,
			status:   http.StatusUnprocessableEntity,
			code:     "unparseable_response",
		},
		{
			name:     "schema violation",
			response: llm.MockResponse{Text: `[{"id":"1"}]`},
			body:     physics,
			status:   http.StatusUnprocessableEntity,
			code:     "invalid_roadmap",
		},
		{
			name:     "upstream",
			response: llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("slow down")}},
			body:     physics,
			status:   http.StatusBadGateway,
			code:     "upstream_failed",
		},
		{
			name:   "malformed body",
			body:   "not an object",
			status: http.StatusBadRequest,
			code:   "bad_request",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.response)
			w := f.do(t, http.MethodPost, "/api/roadmaps/s/generate", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[errorEnvelope](t, w).Error.Code)

			_, err := f.roadmaps.Load(context.Background(), "s")
			assert.ErrorIs(t, err, roadmap.ErrRoadmapNotFound, "failed generation must not store anything")
		})
	}
}

func TestGenerateRoadmap_ValidationFields(t *testing.T) {
	f := newFixture(t, llm.MockResponse{Text: `[{"id":"1"}]`})
	w := f.do(t, http.MethodPost, "/api/roadmaps/s/generate", physics)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	env := decode[errorEnvelope](t, w)
	require.NotEmpty(t, env.Error.Fields)
	paths := make([]string, len(env.Error.Fields))
	for i, fd := range env.Error.Fields {
		paths[i] = fd.Path
	}
	assert.Contains(t, paths, "/0/title")
}

func TestGenerateRoadmap_NoGenerator(t *testing.T) {
	kv := store.NewMemoryKV()
	router := NewRouter(Config{Roadmaps: roadmap.NewRepository(kv), Projects: projects.NewBoard(kv)})

	req := httptest.NewRequest(http.MethodPost, "/api/roadmaps/s/generate", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func seedRoadmap(t *testing.T, f *fixture, session string, ids ...string) {
	t.Helper()
	n, err := roadmap.NewNormalizer(roadmap.DefaultLimits())
	require.NoError(t, err)
	nodes, err := normalize.Decode[[]roadmap.Node](n, roadmaptest.Roadmap(ids...))
	require.NoError(t, err)
	require.NoError(t, f.roadmaps.Save(context.Background(), session, nodes))
}

func TestRoadmapProgress(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/api/roadmaps/none/progress", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	seedRoadmap(t, f, "s", "a", "b", "c", "d")

	w = f.do(t, http.MethodPut, "/api/roadmaps/s/nodes/a/completed", map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/roadmaps/s/progress", nil)
	require.Equal(t, http.StatusOK, w.Code)
	p := decode[roadmap.Progress](t, w)
	assert.Equal(t, []string{"a"}, p.CompletedNodes)
	assert.Equal(t, 25, p.Percent)
	assert.Equal(t, 100, p.XPPoints)
	assert.Equal(t, []string{"b"}, p.NextUp)

	w = f.do(t, http.MethodPut, "/api/roadmaps/s/nodes/zz/completed", map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPut, "/api/roadmaps/s/nodes/a/completed", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "completed flag is required")

	w = f.do(t, http.MethodDelete, "/api/roadmaps/s", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/api/roadmaps/s", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	f := newFixture(t)
	seedRoadmap(t, f, "s", "a", "b")

	w := f.do(t, http.MethodPost, "/api/projects", map[string]any{"session": "s", "nodeId": "b", "ideaIndex": 1})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[projects.Project](t, w)
	assert.Equal(t, projects.StatusDraft, created.Status)
	assert.Equal(t, "b", created.SourceNode)
	assert.Equal(t, "Project 2", created.Title)

	w = f.do(t, http.MethodPatch, "/api/projects/"+created.ID, map[string]any{"title": "Renamed", "groupSize": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[projects.Project](t, w)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 5, updated.GroupSize)
	assert.Equal(t, projects.StatusDraft, updated.Status)

	w = f.do(t, http.MethodPost, "/api/projects/"+created.ID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodPost, "/api/projects/"+created.ID+"/activate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, projects.StatusActive, decode[projects.Project](t, w).Status)

	w = f.do(t, http.MethodPost, "/api/projects/"+created.ID+"/activate", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "invalid_transition", decode[errorEnvelope](t, w).Error.Code)

	w = f.do(t, http.MethodGet, "/api/projects?status=active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct{ Projects []projects.Project }](t, w)
	assert.Len(t, list.Projects, 1)

	w = f.do(t, http.MethodGet, "/api/projects?status=draft", nil)
	list = decode[struct{ Projects []projects.Project }](t, w)
	assert.Empty(t, list.Projects)

	w = f.do(t, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = f.do(t, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProject_InvalidPatch(t *testing.T) {
	f := newFixture(t)
	seedRoadmap(t, f, "s", "a")

	w := f.do(t, http.MethodPost, "/api/projects", map[string]any{"session": "s", "nodeId": "a"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[projects.Project](t, w)

	w = f.do(t, http.MethodPatch, "/api/projects/"+created.ID, map[string]any{"difficulty": "impossible", "groupSize": -4})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	env := decode[errorEnvelope](t, w)
	assert.Equal(t, "invalid_patch", env.Error.Code)
	require.Len(t, env.Error.Fields, 2)
	assert.Equal(t, "difficulty", env.Error.Fields[0].Path)
	assert.Equal(t, "groupSize", env.Error.Fields[1].Path)

	got, err := f.board.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, roadmap.DifficultyMedium, got.Difficulty)
	assert.Equal(t, 3, got.GroupSize)
}

func TestCreateProject_NotFound(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/projects", map[string]any{"session": "missing", "nodeId": "a"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	seedRoadmap(t, f, "s", "a")
	w = f.do(t, http.MethodPost, "/api/projects", map[string]any{"session": "s", "nodeId": "zz"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/projects", map[string]any{"session": "s", "nodeId": "a", "ideaIndex": 9})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/projects", map[string]any{"nodeId": "a"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
