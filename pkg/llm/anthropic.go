package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ClaudeClient wraps the Anthropic API client.
type ClaudeClient struct {
	client anthropic.Client
	model  anthropic.Model
}

// NewClaudeClient creates a Claude-backed client.
func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return &ClaudeClient{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  anthropic.Model(model),
	}
}

func (c *ClaudeClient) ModelName() string { return string(c.model) }

// Complete implements Client.
func (c *ClaudeClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	systemPrompt, alternating, err := ensureAlternation(in.Messages)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("message alternation: %w", err)
	}

	messages := make([]anthropic.MessageParam, 0, len(alternating))
	for i := range alternating {
		msg := &alternating[i]
		messages = append(messages, anthropic.MessageParam{
			Role:    anthropic.MessageParamRole(msg.Role),
			Content: []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(msg.Content)},
		})
	}

	params := anthropic.MessageNewParams{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   int64(in.MaxTokens),
		Temperature: anthropic.Float(float64(in.Temperature)),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt, Type: "text"}}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("Claude API call failed: %w", err)
	}
	if resp == nil || len(resp.Content) == 0 {
		return CompletionResponse{}, fmt.Errorf("empty response from Claude API")
	}

	var text string
	for i := range resp.Content {
		block := &resp.Content[i]
		if block.Type == "text" {
			text += block.AsText().Text
		}
	}
	return CompletionResponse{Content: text}, nil
}

// ensureAlternation prepares messages for the Anthropic API: system messages
// move to the system parameter, consecutive user messages merge, and the
// sequence must start and end with a user turn.
func ensureAlternation(messages []Message) (systemPrompt string, alternating []Message, err error) {
	if len(messages) == 0 {
		return "", nil, fmt.Errorf("message list cannot be empty")
	}

	var systemParts []string
	var rest []Message
	for i := range messages {
		if messages[i].Role == RoleSystem {
			systemParts = append(systemParts, messages[i].Content)
		} else {
			rest = append(rest, messages[i])
		}
	}
	systemPrompt = strings.Join(systemParts, "\n\n")
	if len(rest) == 0 {
		return "", nil, fmt.Errorf("must have at least one non-system message")
	}

	var merged []Message
	var pendingUser []string
	flush := func() {
		if len(pendingUser) > 0 {
			merged = append(merged, Message{Role: RoleUser, Content: strings.Join(pendingUser, "\n\n")})
			pendingUser = nil
		}
	}
	for i := range rest {
		msg := &rest[i]
		if msg.Role == RoleAssistant {
			flush()
			merged = append(merged, *msg)
		} else {
			pendingUser = append(pendingUser, msg.Content)
		}
	}
	flush()

	if merged[0].Role != RoleUser {
		return "", nil, fmt.Errorf("first message must be user role, got %s", merged[0].Role)
	}
	if merged[len(merged)-1].Role != RoleUser {
		return "", nil, fmt.Errorf("last message must be user role, got %s", merged[len(merged)-1].Role)
	}
	return systemPrompt, merged, nil
}
