package llm

import "context"

// Provider is the core abstraction for the text-generation service.
// Consumers send role-tagged turns and receive a single text response.
// Providers do not interpret the text; structure is enforced downstream.
type Provider interface {
	// Generate sends the turns to the model and returns its text response.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt. Sets the model's role and constraints.
	System string

	// Messages is the conversation history. Roadmap generation sends a
	// single user turn; prior turns may be replayed for follow-ups.
	Messages []Message

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	// Default: 0.0 (deterministic) when not set.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turns flattens the request into the ordered role-tagged turn list,
// system message first.
func (r Request) Turns() []Message {
	out := make([]Message, 0, len(r.Messages)+1)
	if r.System != "" {
		out = append(out, Message{Role: RoleSystem, Content: r.System})
	}
	return append(out, r.Messages...)
}

// Response holds the model's output.
type Response struct {
	// Text is the raw generated text, exactly as returned by the model.
	Text string

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason indicates why generation stopped.
	// Normalized to: "end", "max_tokens", "error"
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
