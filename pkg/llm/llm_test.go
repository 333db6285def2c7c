package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/config"
)

func TestMockClientReplaysQueue(t *testing.T) {
	m := NewMockClient()
	m.QueueResponse("first")
	m.QueueError(errors.New("quota"))
	m.QueueResponse("second")

	ctx := context.Background()
	req := NewCompletionRequest([]Message{{Role: RoleUser, Content: "hi"}})

	resp, err := m.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Content)

	_, err = m.Complete(ctx, req)
	assert.Error(t, err)

	resp, err = m.Complete(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "second", resp.Content)

	// Drained queue returns empty without failing.
	resp, err = m.Complete(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, resp.Content)

	assert.Len(t, m.Calls(), 4)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Intent string `json:"intent"`
	}

	require.NoError(t, DecodeJSON(`{"intent": "greeting"}`, &out))
	assert.Equal(t, "greeting", out.Intent)

	require.NoError(t, DecodeJSON("```json\n{\"intent\": \"negative\"}\n```", &out))
	assert.Equal(t, "negative", out.Intent)

	require.NoError(t, DecodeJSON("Sure! Here you go:\n{\"intent\": \"affirmative\"}\nHope that helps.", &out))
	assert.Equal(t, "affirmative", out.Intent)

	assert.Error(t, DecodeJSON("no json here at all", &out))
	assert.Error(t, DecodeJSON("{broken", &out))
}

func TestNewClientFactory(t *testing.T) {
	client, err := NewClient(config.LLMConfig{Provider: config.ProviderOffline})
	require.NoError(t, err)
	assert.Nil(t, client)

	client, err = NewClient(config.LLMConfig{
		Provider:   config.ProviderOllama,
		Model:      "llama3.2",
		OllamaHost: "http://localhost:11434",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, "llama3.2", client.ModelName())

	_, err = NewClient(config.LLMConfig{Provider: config.ProviderGemini, Model: "gemini-2.0-flash-lite"})
	assert.Error(t, err, "missing API key must fail fast")

	_, err = NewClient(config.LLMConfig{Provider: "skynet"})
	assert.Error(t, err)
}

func TestCompletionRequestDefaults(t *testing.T) {
	req := NewCompletionRequest([]Message{{Role: RoleSystem, Content: "s"}})
	assert.Equal(t, 256, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 0.001)
}
