package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiClient wraps the Google GenAI client.
type GeminiClient struct {
	client *genai.Client
	apiKey string
	model  string
}

// NewGeminiClient creates a Gemini-backed client. The underlying genai client
// is created lazily because its constructor requires a context.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, model: model}
}

func (g *GeminiClient) ModelName() string { return g.model }

// Complete implements Client.
func (g *GeminiClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	if g.client == nil {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return CompletionResponse{}, fmt.Errorf("create Gemini client: %w", err)
		}
		g.client = client
	}

	contents, systemInstruction := convertMessagesToGemini(in.Messages)
	if len(contents) == 0 {
		return CompletionResponse{}, fmt.Errorf("message list cannot be empty")
	}

	//nolint:gosec // MaxTokens is validated small at config load
	maxTokens := int32(in.MaxTokens)
	cfg := &genai.GenerateContentConfig{
		Temperature:     &in.Temperature,
		MaxOutputTokens: maxTokens,
	}
	if systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("Gemini API call failed: %w", err)
	}
	if result == nil {
		return CompletionResponse{}, fmt.Errorf("empty response from Gemini API")
	}
	return CompletionResponse{Content: result.Text()}, nil
}

// convertMessagesToGemini maps our messages onto Gemini contents, pulling
// system messages out into the system instruction.
func convertMessagesToGemini(messages []Message) ([]*genai.Content, string) {
	var system string
	contents := make([]*genai.Content, 0, len(messages))

	for i := range messages {
		msg := &messages[i]
		if msg.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += msg.Content
			continue
		}

		role := genai.RoleUser
		if msg.Role == RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: msg.Content}},
		})
	}
	return contents, system
}
