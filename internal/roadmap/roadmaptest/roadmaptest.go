// Package roadmaptest provides generated-roadmap fixtures for tests.
package roadmaptest

import (
	"encoding/json"
	"fmt"
)

// Node returns a node, as the generation service would send it, that
// satisfies the default limits. Callers may mutate the returned map.
func Node(id, title string) map[string]any {
	videos := make([]any, 3)
	for i := range videos {
		videos[i] = map[string]any{
			"title":    fmt.Sprintf("Video %d", i+1),
			"url":      fmt.Sprintf("https://www.youtube.com/watch?v=%s%d", id, i),
			"duration": "10:00",
		}
	}
	resources := make([]any, 4)
	for i := range resources {
		resources[i] = map[string]any{
			"title": fmt.Sprintf("Resource %d", i+1),
			"url":   fmt.Sprintf("https://example.org/%s/%d", id, i),
			"type":  "article",
		}
	}
	ideas := make([]any, 2)
	for i := range ideas {
		ideas[i] = map[string]any{
			"title":              fmt.Sprintf("Project %d", i+1),
			"description":        "Build something",
			"difficulty":         "medium",
			"groupSize":          3,
			"materials":          []any{"paper"},
			"estimatedDuration":  "1 week",
			"learningObjectives": []any{"apply the idea"},
		}
	}
	return map[string]any{
		"id":                        id,
		"title":                     title,
		"description":               "About " + title,
		"timeEstimate":              "2 weeks",
		"learningObjectives":        []any{"understand " + title},
		"teachingStrategies":        []any{"demonstration"},
		"projectIdeas":              ideas,
		"resources":                 resources,
		"videos":                    videos,
		"studentMotivationTips":     []any{"make it relevant"},
		"commonMisconceptions":      []any{"it is hard"},
		"differentiationStrategies": []any{"pair work"},
		"assessmentIdeas": []any{
			map[string]any{"type": "quiz", "description": "Short quiz"},
		},
		"dependencies": []any{},
	}
}

// Roadmap returns the JSON text of a roadmap with one node per id. Each
// node depends on the one before it.
func Roadmap(ids ...string) string {
	nodes := make([]any, len(ids))
	for i, id := range ids {
		n := Node(id, "Topic "+id)
		if i > 0 {
			n["dependencies"] = []any{ids[i-1]}
		}
		nodes[i] = n
	}
	b, err := json.Marshal(nodes)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// Fenced wraps text in a json code fence.
func Fenced(text string) string {
	return "```json\n" + text + "\n```"
}
