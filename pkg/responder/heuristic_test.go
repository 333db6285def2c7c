package responder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctrlfix/pkg/proto"
)

func TestExtractUserName(t *testing.T) {
	h := NewHeuristic()

	res, err := h.ExtractUserName(context.Background(), "s1", "my name is jane doe")
	require.NoError(t, err)
	assert.True(t, res.Fulfilled)
	assert.Equal(t, "Jane Doe", res.Name)

	// A lone first name asks for the rest.
	res, _ = h.ExtractUserName(context.Background(), "s1", "Alex")
	assert.False(t, res.Fulfilled)
	assert.Contains(t, res.Clarification, "last name")

	res, _ = h.ExtractUserName(context.Background(), "s1", "I'm Wong Ka Ming")
	assert.True(t, res.Fulfilled)
	assert.Equal(t, "Wong Ka Ming", res.Name)

	res, _ = h.ExtractUserName(context.Background(), "s1", "4242")
	assert.False(t, res.Fulfilled)
	assert.NotEmpty(t, res.Clarification)

	res, _ = h.ExtractUserName(context.Background(), "s1", "this is a really long sentence that is clearly not a name")
	assert.False(t, res.Fulfilled)
}

func TestExtractBrandModel(t *testing.T) {
	h := NewHeuristic()

	res, err := h.ExtractBrandModel(context.Background(), "s1", "laptop", "ASUS ROG G614J")
	require.NoError(t, err)
	assert.True(t, res.Fulfilled)
	assert.Equal(t, "ASUS ROG G614J", res.BrandModel)

	res, _ = h.ExtractBrandModel(context.Background(), "s1", "phone", "it's an iPhone 13")
	assert.True(t, res.Fulfilled)

	res, _ = h.ExtractBrandModel(context.Background(), "s1", "laptop", "the grey one")
	assert.False(t, res.Fulfilled)
	assert.Contains(t, res.Clarification, "laptop")
}

func TestExtractAdditionalInfo(t *testing.T) {
	h := NewHeuristic()

	res, err := h.ExtractAdditionalInfo(context.Background(), "s1", "16gb ram, 512 ssd")
	require.NoError(t, err)
	assert.True(t, res.Relevant)
	assert.Equal(t, "16gb ram, 512 ssd", res.Info)

	for _, skip := range []string{"no", "skip", "nah", "none"} {
		res, _ = h.ExtractAdditionalInfo(context.Background(), "s1", skip)
		assert.True(t, res.Skipped, "input %q should skip", skip)
	}

	res, _ = h.ExtractAdditionalInfo(context.Background(), "s1", "sausages")
	assert.False(t, res.Relevant)
	assert.False(t, res.Skipped)
	assert.NotEmpty(t, res.Reply)
}

func TestDetectParts(t *testing.T) {
	h := NewHeuristic()

	parts, err := h.DetectParts(context.Background(), "laptop", "hardware", "the screen cracked and the battery drains fast")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"laptop_screen", "laptop_battery"}, parts)

	parts, _ = h.DetectParts(context.Background(), "phone", "hardware", "charging port is loose")
	assert.Contains(t, parts, "phone_port")

	// Hardware issues with no recognizable part still cost a generic part.
	parts, _ = h.DetectParts(context.Background(), "laptop", "hardware", "it just died")
	assert.Equal(t, []string{"generic_part"}, parts)

	parts, _ = h.DetectParts(context.Background(), "laptop", "software", "windows is slow")
	assert.Empty(t, parts)
}

func TestDiagnosticTurnScript(t *testing.T) {
	h := NewHeuristic()

	res, err := h.DiagnosticTurn(context.Background(), "s1", nil, "the screen flickers")
	require.NoError(t, err)
	assert.False(t, res.Done)

	history := []proto.Message{
		{Role: proto.RoleBot, Content: "q1"},
	}
	res, _ = h.DiagnosticTurn(context.Background(), "s1", history, "only sometimes")
	assert.False(t, res.Done)

	history = append(history, proto.Message{Role: proto.RoleBot, Content: "q2"})
	res, _ = h.DiagnosticTurn(context.Background(), "s1", history, "it gets hot too")
	assert.True(t, res.Done)

	res, _ = h.DiagnosticTurn(context.Background(), "s1", nil, "skip")
	assert.True(t, res.Done)
}

func TestFallbackNamesTheStep(t *testing.T) {
	h := NewHeuristic()
	res, err := h.Fallback(context.Background(), "s1", "Collecting device type", nil, "whatever")
	require.NoError(t, err)
	assert.Contains(t, res.Reply, "collecting device type")
	assert.Empty(t, res.Entities)
}
