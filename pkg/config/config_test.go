package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ProviderOffline, cfg.LLM.Provider)
	assert.Equal(t, "HKD", cfg.Business.Currency)
	assert.Equal(t, 100.0, cfg.Business.BaseServiceFee)
	assert.Equal(t, 7.8, cfg.Pricing.USDToHKD)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := Defaults()
	cfg.LLM.Provider = "skynet"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.LLM.Provider = ProviderGemini
	cfg.LLM.Model = ""
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Pricing.USDToHKD = 0
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Server.ListenAddr = ""
	assert.Error(t, cfg.Validate())
}

func TestLoadYAMLAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: ollama
  model: llama3.2
business:
  base_service_fee: 150
`), 0o644))

	t.Setenv("CTRLFIX_LISTEN_ADDR", ":9999")
	t.Setenv("OLLAMA_HOST", "http://ollama.local:11434")

	require.NoError(t, Load(path))
	cfg := GetConfig()
	assert.Equal(t, ProviderOllama, cfg.LLM.Provider)
	assert.Equal(t, "llama3.2", cfg.LLM.Model)
	assert.Equal(t, 150.0, cfg.Business.BaseServiceFee)
	assert.Equal(t, ":9999", cfg.Server.ListenAddr)
	assert.Equal(t, "http://ollama.local:11434", cfg.LLM.OllamaHost)

	// Untouched sections keep their defaults.
	assert.Equal(t, "HKD", cfg.Business.Currency)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	require.NoError(t, Load(filepath.Join(t.TempDir(), "absent.yaml")))
	cfg := GetConfig()
	assert.Equal(t, ProviderOffline, cfg.LLM.Provider)
}

func TestProviderEnvSelectsAPIKey(t *testing.T) {
	t.Setenv("CTRLFIX_LLM_PROVIDER", "anthropic")
	t.Setenv("CTRLFIX_LLM_MODEL", "claude-sonnet-4-0")
	t.Setenv("ANTHROPIC_API_KEY", "test-key")

	require.NoError(t, Load(""))
	cfg := GetConfig()
	assert.Equal(t, ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}

func TestSetValidatesBeforeInstall(t *testing.T) {
	bad := Defaults()
	bad.Store.SQLitePath = ""
	assert.Error(t, Set(bad))

	good := Defaults()
	good.Business.BaseServiceFee = 42
	require.NoError(t, Set(good))
	assert.Equal(t, 42.0, GetConfig().Business.BaseServiceFee)
}
