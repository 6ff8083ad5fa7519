package roadmap

import (
	"fmt"

	"github.com/abhisek/pathwise/internal/normalize"
)

// Limits are the minimum list lengths a generated roadmap must meet.
type Limits struct {
	MinNodes        int `yaml:"min_nodes"`
	MinProjectIdeas int `yaml:"min_project_ideas"`
	MinResources    int `yaml:"min_resources"`
	MinVideos       int `yaml:"min_videos"`
}

// DefaultLimits returns the minimums enforced on generated roadmaps.
// MinNodes is the hard floor; prompts may ask for more.
func DefaultLimits() Limits {
	return Limits{
		MinNodes:        1,
		MinProjectIdeas: 2,
		MinResources:    4,
		MinVideos:       3,
	}
}

var difficultyEnum = []any{"easy", "medium", "hard"}

func stringList(description string) map[string]any {
	return map[string]any{
		"type":        "array",
		"items":       map[string]any{"type": "string"},
		"description": description,
	}
}

// Schema returns the JSON schema for a generated roadmap: an array of
// nodes. Unknown properties are accepted and ignored on decode.
func Schema(l Limits) *normalize.Schema {
	projectIdea := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       map[string]any{"type": "string"},
			"description": map[string]any{"type": "string"},
			"difficulty": map[string]any{
				"type": "string",
				"enum": difficultyEnum,
			},
			"groupSize": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"description": "Number of students working together",
			},
			"materials":          stringList("Materials needed"),
			"estimatedDuration":  map[string]any{"type": "string"},
			"learningObjectives": stringList("What students learn from the project"),
		},
		"required": []any{"title", "description", "difficulty", "groupSize", "materials", "estimatedDuration", "learningObjectives"},
	}

	resource := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"url":   map[string]any{"type": "string"},
			"type": map[string]any{
				"type": "string",
				"enum": []any{"video", "article", "exercise", "documentation", "tutorial"},
			},
			"duration": map[string]any{"type": "string"},
			"difficulty": map[string]any{
				"type": "string",
				"enum": difficultyEnum,
			},
		},
		"required": []any{"title", "url", "type"},
	}

	video := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":    map[string]any{"type": "string"},
			"url":      map[string]any{"type": "string", "description": "Real URL on YouTube or another educational platform"},
			"duration": map[string]any{"type": "string"},
		},
		"required": []any{"title", "url", "duration"},
	}

	assessment := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"type": map[string]any{
				"type": "string",
				"enum": []any{"quiz", "project", "presentation", "homework"},
			},
			"description": map[string]any{"type": "string"},
			"rubric":      stringList("Grading criteria"),
		},
		"required": []any{"type", "description"},
	}

	node := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"id":                 map[string]any{"type": "string", "description": "Unique within the roadmap"},
			"title":              map[string]any{"type": "string"},
			"description":        map[string]any{"type": "string"},
			"timeEstimate":       map[string]any{"type": "string", "description": "Free text, e.g. \"2 weeks\""},
			"learningObjectives": stringList("Ordered learning objectives"),
			"teachingStrategies": stringList("Strategies for instructors"),
			"projectIdeas": map[string]any{
				"type":     "array",
				"items":    projectIdea,
				"minItems": l.MinProjectIdeas,
			},
			"resources": map[string]any{
				"type":     "array",
				"items":    resource,
				"minItems": l.MinResources,
			},
			"videos": map[string]any{
				"type":     "array",
				"items":    video,
				"minItems": l.MinVideos,
			},
			"studentMotivationTips":     stringList("Ways to keep students engaged"),
			"commonMisconceptions":      stringList("Misconceptions to watch for"),
			"differentiationStrategies": stringList("Adjustments for different learners"),
			"assessmentIdeas": map[string]any{
				"type":  "array",
				"items": assessment,
			},
			"dependencies": stringList("Ids of nodes that should come first"),
			"completed": map[string]any{
				"type":    "boolean",
				"default": false,
			},
			"subject": map[string]any{"type": "string"},
		},
		"required": []any{
			"id", "title", "description", "timeEstimate", "learningObjectives",
			"teachingStrategies", "projectIdeas", "resources", "videos",
			"studentMotivationTips", "commonMisconceptions", "differentiationStrategies",
			"assessmentIdeas", "dependencies",
		},
	}

	return &normalize.Schema{
		Name:        "teaching-roadmap",
		Description: "An ordered teaching roadmap of topic nodes",
		Definition: map[string]any{
			"$schema":  "https://json-schema.org/draft/2020-12/schema",
			"type":     "array",
			"items":    node,
			"minItems": l.MinNodes,
		},
	}
}

// UniqueIDs rejects roadmaps that reuse a node id.
func UniqueIDs(doc any) []normalize.FieldError {
	nodes, ok := doc.([]any)
	if !ok {
		return nil
	}

	var errs []normalize.FieldError
	seen := make(map[string]int, len(nodes))
	for i, raw := range nodes {
		node, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id, ok := node["id"].(string)
		if !ok {
			continue
		}
		if first, dup := seen[id]; dup {
			errs = append(errs, normalize.FieldError{
				Path:     fmt.Sprintf("/%d/id", i),
				Keyword:  "uniqueId",
				Expected: "unique id",
				Actual:   id,
				Message:  fmt.Sprintf("id %q already used by node %d", id, first),
			})
			continue
		}
		seen[id] = i
	}
	return errs
}

// NewNormalizer returns a normalizer for roadmaps under l.
func NewNormalizer(l Limits) (*normalize.Normalizer, error) {
	return normalize.New(Schema(l), normalize.Config{
		Checks: []normalize.Check{UniqueIDs},
	})
}
