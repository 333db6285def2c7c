package llm

import (
	"fmt"

	"ctrlfix/pkg/config"
)

// NewClient constructs the provider client named by cfg. The offline provider
// returns a nil client; callers fall back to deterministic collaborators.
func NewClient(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY")
		}
		return NewGeminiClient(cfg.APIKey, cfg.Model), nil
	case config.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY")
		}
		return NewClaudeClient(cfg.APIKey, cfg.Model), nil
	case config.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires OPENAI_API_KEY")
		}
		return NewOpenAIClient(cfg.APIKey, cfg.Model), nil
	case config.ProviderOllama:
		return NewOllamaClient(cfg.OllamaHost, cfg.Model), nil
	case config.ProviderOffline:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
