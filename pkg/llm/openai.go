package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAIClient wraps the official OpenAI Go client using the Responses API.
type OpenAIClient struct {
	client openai.Client
	model  string
}

// NewOpenAIClient creates an OpenAI-backed client.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

func (o *OpenAIClient) ModelName() string { return o.model }

// Complete implements Client.
func (o *OpenAIClient) Complete(ctx context.Context, in CompletionRequest) (CompletionResponse, error) {
	// The Responses API takes a single input string; fold the conversation
	// into one with role prefixes.
	var input string
	for i := range in.Messages {
		msg := &in.Messages[i]
		switch msg.Role {
		case RoleSystem:
			input += fmt.Sprintf("System: %s\n\n", msg.Content)
		case RoleAssistant:
			input += fmt.Sprintf("Assistant: %s\n\n", msg.Content)
		case RoleUser:
			input += msg.Content + "\n"
		}
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(int64(in.MaxTokens)),
		Input:           responses.ResponseNewParamsInputUnion{OfString: openai.String(input)},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("OpenAI Responses API failed: %w", err)
	}
	if resp == nil {
		return CompletionResponse{}, fmt.Errorf("empty response from OpenAI Responses API")
	}
	return CompletionResponse{Content: resp.OutputText()}, nil
}
