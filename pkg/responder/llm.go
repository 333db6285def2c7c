package responder

import (
	"context"
	"fmt"
	"strings"

	"ctrlfix/pkg/llm"
	"ctrlfix/pkg/logx"
	"ctrlfix/pkg/proto"
)

// LLM is the model-backed responder. Every contract asks for a small JSON
// object so results stay machine-checkable; malformed replies surface as
// errors and let the resilient wrapper degrade.
type LLM struct {
	client       llm.Client
	historyLimit int
	logger       *logx.Logger
}

// NewLLM builds the model-backed responder. historyTokenBudget bounds how
// much transcript is replayed into diagnostic and fallback prompts.
func NewLLM(client llm.Client, historyTokenBudget int) *LLM {
	return &LLM{
		client:       client,
		historyLimit: historyTokenBudget,
		logger:       logx.NewLogger("responder-llm"),
	}
}

func (l *LLM) complete(ctx context.Context, system, user string) (string, error) {
	req := llm.NewCompletionRequest([]llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: user},
	})
	resp, err := l.client.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (l *LLM) ExtractUserName(ctx context.Context, sessionID, text string) (NameResult, error) {
	const system = `Extract the person's name from a chat message in a repair-booking flow.
Reply with JSON only: {"name": "...", "fulfilled": true/false, "clarification": "..."}
Set fulfilled=false and write a short friendly clarification when no plausible name is present.`
	raw, err := l.complete(ctx, system, text)
	if err != nil {
		return NameResult{}, fmt.Errorf("extract name: %w", err)
	}
	var out struct {
		Name          string `json:"name"`
		Fulfilled     bool   `json:"fulfilled"`
		Clarification string `json:"clarification"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return NameResult{}, err
	}
	return NameResult{Name: strings.TrimSpace(out.Name), Fulfilled: out.Fulfilled, Clarification: out.Clarification}, nil
}

func (l *LLM) ExtractBrandModel(ctx context.Context, sessionID, deviceType, text string) (BrandModelResult, error) {
	system := fmt.Sprintf(`Extract the brand and model of a %s from a chat message.
Reply with JSON only: {"brandmodel": "...", "fulfilled": true/false, "clarification": "..."}
Set fulfilled=false with a short clarification when no manufacturer is identifiable.`, deviceType)
	raw, err := l.complete(ctx, system, text)
	if err != nil {
		return BrandModelResult{}, fmt.Errorf("extract brandmodel: %w", err)
	}
	var out struct {
		BrandModel    string `json:"brandmodel"`
		Fulfilled     bool   `json:"fulfilled"`
		Clarification string `json:"clarification"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return BrandModelResult{}, err
	}
	return BrandModelResult{BrandModel: strings.TrimSpace(out.BrandModel), Fulfilled: out.Fulfilled, Clarification: out.Clarification}, nil
}

func (l *LLM) ExtractAdditionalInfo(ctx context.Context, sessionID, text string) (InfoResult, error) {
	const system = `The user was asked for extra device details (specs, age, storage) in a repair-booking flow.
Classify their message. Reply with JSON only:
{"relevant": true/false, "skipped": true/false, "info": "...", "reply": "..."}
skipped=true when they decline ("no", "skip"). relevant=true when the message
contains device details; put the cleaned details in info. Otherwise both
false, and write a short playful reply steering them back on topic.`
	raw, err := l.complete(ctx, system, text)
	if err != nil {
		return InfoResult{}, fmt.Errorf("extract additional info: %w", err)
	}
	var out struct {
		Relevant bool   `json:"relevant"`
		Skipped  bool   `json:"skipped"`
		Info     string `json:"info"`
		Reply    string `json:"reply"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return InfoResult{}, err
	}
	return InfoResult{Info: strings.TrimSpace(out.Info), Relevant: out.Relevant, Skipped: out.Skipped, Reply: out.Reply}, nil
}

func (l *LLM) DetectParts(ctx context.Context, deviceType, issueType, description string) ([]string, error) {
	system := fmt.Sprintf(`From a %s repair description, list the replacement parts likely needed.
Reply with JSON only: {"parts": ["%s_screen", ...]}
Use names of the form "<devicetype>_<part>" (screen, battery, keyboard, port).
An empty list is valid for software issues.`, deviceType, deviceType)
	raw, err := l.complete(ctx, system, fmt.Sprintf("Issue type: %s\nDescription: %s", issueType, description))
	if err != nil {
		return nil, fmt.Errorf("detect parts: %w", err)
	}
	var out struct {
		Parts []string `json:"parts"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return nil, err
	}
	return out.Parts, nil
}

func (l *LLM) DiagnosticTurn(ctx context.Context, sessionID string, history []proto.Message, text string) (DiagnosticResult, error) {
	const system = `You are a repair technician running a short diagnostic chat about a device problem.
Ask at most one concise follow-up question per turn. After two or three
exchanges, or when the user declines, wrap up.
Reply with JSON only: {"reply": "...", "done": true/false}`
	var b strings.Builder
	for _, m := range truncateHistory(history, l.historyLimit) {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "user: %s", text)
	raw, err := l.complete(ctx, system, b.String())
	if err != nil {
		return DiagnosticResult{}, fmt.Errorf("diagnostic turn: %w", err)
	}
	var out struct {
		Reply string `json:"reply"`
		Done  bool   `json:"done"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return DiagnosticResult{}, err
	}
	return DiagnosticResult{Reply: out.Reply, Done: out.Done}, nil
}

func (l *LLM) Fallback(ctx context.Context, sessionID, stepLabel string, history []proto.Message, text string) (FallbackResult, error) {
	system := fmt.Sprintf(`You are a friendly device-repair intake assistant. The conversation is
currently at: %s. The user's last message did not answer the question.
Acknowledge it briefly and steer them back in one or two sentences.
If the message also corrects an intake detail, report it in entities.
Reply with JSON only:
{"reply": "...", "entities": {"phone_number": "...", "issue_description": "..."}}
Omit entity keys the message does not mention.`, stepLabel)
	var b strings.Builder
	for _, m := range truncateHistory(history, l.historyLimit) {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	fmt.Fprintf(&b, "user: %s", text)
	raw, err := l.complete(ctx, system, b.String())
	if err != nil {
		return FallbackResult{}, fmt.Errorf("fallback reply: %w", err)
	}
	var out struct {
		Reply    string            `json:"reply"`
		Entities map[string]string `json:"entities"`
	}
	if err := llm.DecodeJSON(raw, &out); err != nil {
		return FallbackResult{}, err
	}
	if strings.TrimSpace(out.Reply) == "" {
		return FallbackResult{}, fmt.Errorf("empty fallback reply")
	}
	return FallbackResult{Reply: strings.TrimSpace(out.Reply), Entities: out.Entities}, nil
}
