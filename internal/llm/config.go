package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// Config holds all generation provider configuration. Fields are populated
// from the environment via ConfigFromEnv.
type Config struct {
	// Provider selects which backend to use.
	// Values: "gemini", "anthropic", "openai", "mock".
	Provider string `env:"BANDUP_LLM_PROVIDER" envDefault:"gemini"`

	Anthropic AnthropicConfig
	OpenAI    OpenAIConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout is the maximum duration for a single request, retries
	// included.
	Timeout time.Duration `env:"BANDUP_LLM_TIMEOUT" envDefault:"60s"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `env:"BANDUP_ANTHROPIC_API_KEY"`
	Model  string `env:"BANDUP_ANTHROPIC_MODEL" envDefault:"claude-haiku"`
}

// OpenAIConfig holds OpenAI-specific configuration. BaseURL makes it serve
// OpenRouter and other OpenAI-compatible APIs.
type OpenAIConfig struct {
	APIKey  string `env:"BANDUP_OPENAI_API_KEY"`
	Model   string `env:"BANDUP_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"BANDUP_OPENAI_BASE_URL"`
}

// GeminiConfig holds Gemini-specific configuration. Gemini is the only
// backend that also carries the speech and image capabilities.
type GeminiConfig struct {
	APIKey      string `env:"BANDUP_GEMINI_API_KEY"`
	Model       string `env:"BANDUP_GEMINI_MODEL" envDefault:"gemini-flash"`
	SpeechModel string `env:"BANDUP_GEMINI_SPEECH_MODEL" envDefault:"gemini-2.5-flash-preview-tts"`
	ImageModel  string `env:"BANDUP_GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image"`
	Voice       string `env:"BANDUP_GEMINI_VOICE" envDefault:"Kore"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `env:"BANDUP_LLM_RETRY_ATTEMPTS" envDefault:"3"`
	InitialWait time.Duration `env:"BANDUP_LLM_RETRY_WAIT" envDefault:"1s"`
	MaxWait     time.Duration `env:"BANDUP_LLM_RETRY_MAX_WAIT" envDefault:"10s"`
	Multiplier  float64       `env:"BANDUP_LLM_RETRY_MULTIPLIER" envDefault:"2.0"`
}

// DefaultConfig returns a Config with the documented defaults and no keys.
func DefaultConfig() Config {
	cfg, _ := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	return cfg
}

// ConfigFromEnv builds a Config from BANDUP_* environment variables,
// falling back to the generic provider key variables (GEMINI_API_KEY and
// friends) when no BANDUP key is set.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse llm config: %w", err)
	}

	if cfg.Gemini.APIKey == "" {
		cfg.Gemini.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.OpenAI.APIKey == "" {
		cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Anthropic.APIKey == "" {
		cfg.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	return cfg, nil
}

// DiscoverConfig probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none
// found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		cfg.OpenAI.BaseURL = openRouterBaseURL
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("BANDUP_GEMINI_API_KEY is required for the gemini provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("BANDUP_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("BANDUP_OPENAI_API_KEY is required for the openai provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown generation provider: %q", c.Provider)
	}
	return nil
}
