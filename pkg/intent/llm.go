package intent

import (
	"context"
	"fmt"
	"strings"

	"ctrlfix/pkg/llm"
	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/proto"
)

const classifierSystemPrompt = `You classify a single user utterance from a device-repair intake chat.
Respond with JSON only, no prose:
{"intent": "<intent>", "confidence": <0.0-1.0>, "parameters": {}, "fulfillment_text": ""}

Valid intents:
- phone_number (parameters: {"phone_number": "..."})
- devicetype (parameters: {"devicetype": "laptop|phone|tablet|desktop"})
- affirmative, negative, detailed_text
- greeting, location.question, pricing.question, timeline.question,
  warranty.question, help.request, data.safety
- unknown

For the question intents, leave fulfillment_text empty; stock answers are
filled in later.`

// LLMClassifier asks a chat model to label the utterance. Phone numbers are
// still validated locally, never by the model.
type LLMClassifier struct {
	client llm.Client
	logger *logx.Logger
}

func NewLLMClassifier(client llm.Client) *LLMClassifier {
	return &LLMClassifier{client: client, logger: logx.NewLogger("intent-llm")}
}

type classifierReply struct {
	Intent          string            `json:"intent"`
	Confidence      float64           `json:"confidence"`
	Parameters      map[string]string `json:"parameters"`
	FulfillmentText string            `json:"fulfillment_text"`
}

func (c *LLMClassifier) Detect(ctx context.Context, sessionID, text string) (proto.IntentResult, error) {
	if formatted, ok := NormalizePhone(text); ok {
		return proto.IntentResult{
			Intent:          proto.IntentPhoneNumber,
			Confidence:      1.0,
			Parameters:      map[string]string{"phone_number": formatted},
			FulfillmentText: fmt.Sprintf("Got it, I have your number as %s.", formatted),
		}, nil
	}
	if LooksLikePhone(text) {
		return proto.IntentResult{Intent: proto.IntentPhoneNumber, Confidence: 0.0}, nil
	}

	req := llm.NewCompletionRequest([]llm.Message{
		{Role: llm.RoleSystem, Content: classifierSystemPrompt},
		{Role: llm.RoleUser, Content: text},
	})
	req.Temperature = 0.0

	resp, err := c.client.Complete(ctx, req)
	if err != nil {
		return proto.UnknownResult(), fmt.Errorf("classify utterance: %w", err)
	}

	var reply classifierReply
	if err := llm.DecodeJSON(resp.Content, &reply); err != nil {
		c.logger.Debug("session %s: unparsable classifier reply: %q", sessionID, resp.Content)
		return proto.UnknownResult(), err
	}

	result := proto.IntentResult{
		Intent:          proto.Intent(strings.TrimSpace(reply.Intent)),
		Confidence:      reply.Confidence,
		Parameters:      reply.Parameters,
		FulfillmentText: reply.FulfillmentText,
	}
	if result.Intent == "" {
		result.Intent = proto.IntentUnknown
	}
	if result.Intent.IsInterrupt() && result.FulfillmentText == "" {
		result.FulfillmentText = CannedAnswer(result.Intent)
	}
	return result, nil
}
