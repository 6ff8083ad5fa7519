package roadmapgen

import "github.com/abhisek/pathwise/internal/roadmap"

// Config controls roadmap generation.
type Config struct {
	// Limits are the minimum list lengths enforced on every roadmap and
	// requested in the prompt.
	Limits roadmap.Limits `yaml:"limits"`

	// MaxTokens is the token budget for the LLM response. Roadmaps with
	// several nodes are long; a small budget truncates them.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64 `yaml:"temperature"`

	// Concurrency caps in-flight requests in GenerateAll.
	Concurrency int `yaml:"concurrency"`
}

// DefaultConfig returns the recommended generation settings.
func DefaultConfig() Config {
	return Config{
		Limits:      roadmap.DefaultLimits(),
		MaxTokens:   8192,
		Temperature: 0.7,
		Concurrency: 4,
	}
}
