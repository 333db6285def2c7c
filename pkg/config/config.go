// Package config provides configuration loading, validation, and management
// for the diagnostics service.
//
// A single global Config instance is maintained in memory, protected by a
// mutex. GetConfig returns the config BY VALUE so callers cannot mutate the
// shared instance. Configuration comes from an optional YAML file plus a
// .env overlay for secrets; validation runs before the config is installed.
package config

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ctrlfix/pkg/logx"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
	// ProviderOffline disables LLM collaborators entirely; the deterministic
	// keyword heuristics serve every request.
	ProviderOffline Provider = "offline"
)

// LLMConfig selects the model backing the classifier and fallback responder.
type LLMConfig struct {
	Provider    Provider `yaml:"provider"`
	Model       string   `yaml:"model"`
	APIKey      string   `yaml:"-"` // env only, never from file
	OllamaHost  string   `yaml:"ollama_host"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature float32  `yaml:"temperature"`
	// HistoryTokenBudget caps the transcript context included in prompts.
	HistoryTokenBudget int `yaml:"history_token_budget"`
}

// PricingConfig covers the part price lookup.
type PricingConfig struct {
	SerpAPIKey string  `yaml:"-"` // env only
	USDToHKD   float64 `yaml:"usd_to_hkd"`
	TimeoutSec int     `yaml:"timeout_sec"`
}

// StoreConfig covers ticket persistence.
type StoreConfig struct {
	SQLitePath  string `yaml:"sqlite_path"`
	TicketsFile string `yaml:"tickets_file"`
}

// ServerConfig covers the HTTP API daemon.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	// PrometheusURL points at a Prometheus server scraping this service.
	// When empty, the aggregated stats endpoint is disabled.
	PrometheusURL string `yaml:"prometheus_url"`
}

// BusinessConfig holds the repair-shop constants surfaced in prompts and
// tickets.
type BusinessConfig struct {
	Currency       string  `yaml:"currency"`
	BaseServiceFee float64 `yaml:"base_service_fee"`
	DropoffAddress string  `yaml:"dropoff_address"`
	MechanicPhone  string  `yaml:"mechanic_phone"`
}

// Config is the complete service configuration.
type Config struct {
	LLM      LLMConfig      `yaml:"llm"`
	Pricing  PricingConfig  `yaml:"pricing"`
	Store    StoreConfig    `yaml:"store"`
	Server   ServerConfig   `yaml:"server"`
	Business BusinessConfig `yaml:"business"`
}

//nolint:gochecknoglobals // Intentional singleton pattern for config management
var (
	config *Config
	mu     sync.RWMutex
	logger *logx.Logger
)

func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// Defaults returns the built-in configuration used when no file is present.
func Defaults() Config {
	return Config{
		LLM: LLMConfig{
			Provider:           ProviderOffline,
			Model:              "gemini-2.0-flash-lite",
			OllamaHost:         "http://localhost:11434",
			MaxTokens:          256,
			Temperature:        0.7,
			HistoryTokenBudget: 1200,
		},
		Pricing: PricingConfig{
			USDToHKD:   7.8,
			TimeoutSec: 30,
		},
		Store: StoreConfig{
			SQLitePath:  "ctrlfix.db",
			TicketsFile: "tickets.json",
		},
		Server: ServerConfig{
			ListenAddr: ":8080",
		},
		Business: BusinessConfig{
			Currency:       "HKD",
			BaseServiceFee: 100.0,
			DropoffAddress: "Room 939a, Homantin Halls, PolyU",
			MechanicPhone:  "+852 5489 9626",
		},
	}
}

// Load reads the YAML file at path (optional), overlays .env and process
// environment secrets, validates, and installs the singleton. Subsequent
// GetConfig calls return the installed value.
func Load(path string) error {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("parse config %s: %w", path, err)
			}
			getLogger().Info("Loaded config from %s", path)
		case os.IsNotExist(err):
			getLogger().Info("No config file at %s, using defaults", path)
		default:
			return fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// .env is optional; process env always wins over file values.
	if err := godotenv.Load(); err == nil {
		getLogger().Debug("Loaded .env overlay")
	}
	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	mu.Lock()
	config = &cfg
	mu.Unlock()
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("CTRLFIX_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = Provider(strings.ToLower(v))
	}
	if v := os.Getenv("CTRLFIX_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	switch cfg.LLM.Provider {
	case ProviderGemini:
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	case ProviderAnthropic:
		cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case ProviderOpenAI:
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderOllama, ProviderOffline:
		// no key required
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		cfg.LLM.OllamaHost = v
	}
	cfg.Pricing.SerpAPIKey = os.Getenv("SERPAPI_API_KEY")
	if v := os.Getenv("CTRLFIX_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("CTRLFIX_PROMETHEUS_URL"); v != "" {
		cfg.Server.PrometheusURL = v
	}
	if v := os.Getenv("CTRLFIX_SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
}

// Validate checks internal consistency. A missing API key is not an error:
// the service degrades to offline heuristics at runtime.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderOpenAI, ProviderOllama, ProviderOffline:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Provider != ProviderOffline && c.LLM.Model == "" {
		return fmt.Errorf("llm model must be set for provider %q", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.LLM.HistoryTokenBudget <= 0 {
		return fmt.Errorf("llm history_token_budget must be positive, got %d", c.LLM.HistoryTokenBudget)
	}
	if c.Pricing.USDToHKD <= 0 {
		return fmt.Errorf("pricing usd_to_hkd must be positive, got %f", c.Pricing.USDToHKD)
	}
	if c.Pricing.TimeoutSec <= 0 {
		return fmt.Errorf("pricing timeout_sec must be positive, got %d", c.Pricing.TimeoutSec)
	}
	if c.Business.BaseServiceFee < 0 {
		return fmt.Errorf("base_service_fee must be non-negative, got %f", c.Business.BaseServiceFee)
	}
	if c.Business.Currency == "" {
		return fmt.Errorf("currency must be set")
	}
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("listen_addr must be set")
	}
	if c.Store.SQLitePath == "" {
		return fmt.Errorf("sqlite_path must be set")
	}
	return nil
}

// GetConfig returns the installed configuration by value. If Load was never
// called, it returns validated defaults.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	if config == nil {
		return Defaults()
	}
	return *config
}

// Set installs the given config after validation. Intended for tests and for
// embedding callers that assemble config programmatically.
func Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mu.Lock()
	config = &cfg
	mu.Unlock()
	return nil
}
