// Package llm provides a provider-neutral interface over the language-model
// backends used by the intent classifier and fallback responder, with
// implementations for Gemini, Claude, OpenAI, and Ollama.
package llm

import "context"

// Role represents the author of a message in a completion request.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a completion request.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest is a synchronous text-generation request.
type CompletionRequest struct {
	Messages    []Message
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the model's reply.
type CompletionResponse struct {
	Content string
}

// Client is the minimal language-model interface the collaborators need.
type Client interface {
	Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error)
	ModelName() string
}

// NewCompletionRequest builds a request with the service defaults.
func NewCompletionRequest(messages []Message) CompletionRequest {
	return CompletionRequest{
		Messages:    messages,
		MaxTokens:   256,
		Temperature: 0.7,
	}
}
