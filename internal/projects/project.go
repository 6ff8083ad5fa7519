// Package projects tracks project ideas a learner has picked up from a
// roadmap, from draft through completion.
package projects

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/pathwise/internal/roadmap"
)

// Status is the lifecycle stage of a project.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Project is a project idea adopted from a roadmap node.
type Project struct {
	ID         string    `json:"id"`
	SourceNode string    `json:"sourceNode"`
	Subject    string    `json:"subject,omitempty"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	roadmap.ProjectIdea
}

// Patch holds optional replacements for a project's idea fields. Nil
// fields are left untouched.
type Patch struct {
	Title              *string             `json:"title,omitempty" validate:"omitempty,min=1"`
	Description        *string             `json:"description,omitempty"`
	Difficulty         *roadmap.Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	GroupSize          *int                `json:"groupSize,omitempty" validate:"omitempty,gte=1"`
	Materials          []string            `json:"materials,omitempty"`
	EstimatedDuration  *string             `json:"estimatedDuration,omitempty"`
	LearningObjectives []string            `json:"learningObjectives,omitempty"`
}

// PatchError reports which patch fields would break a project idea.
type PatchError struct {
	// Fields maps the JSON field name to a short reason.
	Fields map[string]string
}

func (e *PatchError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %s", name, e.Fields[name])
	}
	return "invalid project patch: " + strings.Join(parts, "; ")
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

// Validate checks that every set field keeps the idea well formed. It
// returns a *PatchError naming each bad field.
func (p Patch) Validate() error {
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
		case "oneof":
			fields[fe.Field()] = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
		case "gte":
			fields[fe.Field()] = fmt.Sprintf("must be at least %s", fe.Param())
		case "min":
			fields[fe.Field()] = "must not be empty"
		default:
			fields[fe.Field()] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		}
	}
	return &PatchError{Fields: fields}
}

func (p Patch) apply(idea *roadmap.ProjectIdea) {
	if p.Title != nil {
		idea.Title = *p.Title
	}
	if p.Description != nil {
		idea.Description = *p.Description
	}
	if p.Difficulty != nil {
		idea.Difficulty = *p.Difficulty
	}
	if p.GroupSize != nil {
		idea.GroupSize = *p.GroupSize
	}
	if p.Materials != nil {
		idea.Materials = append([]string(nil), p.Materials...)
	}
	if p.EstimatedDuration != nil {
		idea.EstimatedDuration = *p.EstimatedDuration
	}
	if p.LearningObjectives != nil {
		idea.LearningObjectives = append([]string(nil), p.LearningObjectives...)
	}
}
