// Package roadmap defines the teaching roadmap records produced by
// generation, the schema they are validated against, and their
// persistence and progress tracking.
package roadmap

// Node is a single topic within a teaching roadmap.
type Node struct {
	ID                        string           `json:"id"`
	Title                     string           `json:"title"`
	Description               string           `json:"description"`
	TimeEstimate              string           `json:"timeEstimate"`
	LearningObjectives        []string         `json:"learningObjectives"`
	TeachingStrategies        []string         `json:"teachingStrategies"`
	ProjectIdeas              []ProjectIdea    `json:"projectIdeas"`
	Resources                 []Resource       `json:"resources"`
	Videos                    []Video          `json:"videos"`
	StudentMotivationTips     []string         `json:"studentMotivationTips"`
	CommonMisconceptions      []string         `json:"commonMisconceptions"`
	DifferentiationStrategies []string         `json:"differentiationStrategies"`
	AssessmentIdeas           []AssessmentIdea `json:"assessmentIdeas"`

	// Dependencies lists ids of other nodes in the same roadmap. Cycles and
	// dangling references are not rejected.
	Dependencies []string `json:"dependencies"`

	Completed bool   `json:"completed"`
	Subject   string `json:"subject,omitempty"`
}

// Difficulty is shared by project ideas and resources.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ProjectIdea is a hands-on activity suggested for a node.
type ProjectIdea struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Difficulty         Difficulty `json:"difficulty"`
	GroupSize          int        `json:"groupSize"`
	Materials          []string   `json:"materials"`
	EstimatedDuration  string     `json:"estimatedDuration"`
	LearningObjectives []string   `json:"learningObjectives"`
}

// ResourceType classifies a teaching resource.
type ResourceType string

const (
	ResourceVideo         ResourceType = "video"
	ResourceArticle       ResourceType = "article"
	ResourceExercise      ResourceType = "exercise"
	ResourceDocumentation ResourceType = "documentation"
	ResourceTutorial      ResourceType = "tutorial"
)

// Resource is a teaching resource linked from a node.
type Resource struct {
	Title      string       `json:"title"`
	URL        string       `json:"url"`
	Type       ResourceType `json:"type"`
	Duration   string       `json:"duration,omitempty"`
	Difficulty Difficulty   `json:"difficulty,omitempty"`
}

type Video struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	Duration string `json:"duration"`
}

// AssessmentType is the kind of assessment suggested for a node.
type AssessmentType string

const (
	AssessmentQuiz         AssessmentType = "quiz"
	AssessmentProject      AssessmentType = "project"
	AssessmentPresentation AssessmentType = "presentation"
	AssessmentHomework     AssessmentType = "homework"
)

type AssessmentIdea struct {
	Type        AssessmentType `json:"type"`
	Description string         `json:"description"`
	Rubric      []string       `json:"rubric,omitempty"`
}

// Find returns the node with the given id and its index, or -1.
func Find(nodes []Node, id string) (*Node, int) {
	for i := range nodes {
		if nodes[i].ID == id {
			return &nodes[i], i
		}
	}
	return nil, -1
}
