package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single request including retries. Default: 30s.
	Timeout time.Duration
}

type AnthropicConfig struct {
	APIKey  string
	Model   string // Default: "claude-haiku"
	BaseURL string
}

// OpenAIConfig also serves OpenAI-compatible gateways via BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string
}

type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-flash"
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-exp"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "anthropic",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-exp",
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from PEERPATH_LLM_* variables, falling
// back to defaults for unset values. Model, key and base URL apply to
// whichever provider is selected.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if p := os.Getenv("PEERPATH_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}
	cfg.apply(
		os.Getenv("PEERPATH_LLM_API_KEY"),
		os.Getenv("PEERPATH_LLM_MODEL"),
		os.Getenv("PEERPATH_LLM_BASE_URL"),
	)

	if v := os.Getenv("PEERPATH_LLM_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return Config{}, fmt.Errorf("PEERPATH_LLM_MAX_RETRIES: invalid value %q", v)
		}
		cfg.Retry.MaxAttempts = n + 1
	}
	if v := os.Getenv("PEERPATH_LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("PEERPATH_LLM_TIMEOUT: %w", err)
		}
		cfg.Timeout = d
	}

	return cfg, nil
}

// apply sets non-empty values on the selected provider's section.
func (c *Config) apply(key, model, baseURL string) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	switch c.Provider {
	case "anthropic":
		set(&c.Anthropic.APIKey, key)
		set(&c.Anthropic.Model, model)
		set(&c.Anthropic.BaseURL, baseURL)
	case "openai":
		set(&c.OpenAI.APIKey, key)
		set(&c.OpenAI.Model, model)
		set(&c.OpenAI.BaseURL, baseURL)
	case "gemini":
		set(&c.Gemini.APIKey, key)
		set(&c.Gemini.Model, model)
		set(&c.Gemini.BaseURL, baseURL)
	case "openrouter":
		set(&c.OpenRouter.APIKey, key)
		set(&c.OpenRouter.Model, model)
		set(&c.OpenRouter.BaseURL, baseURL)
	}
}

// DiscoverConfig probes standard API key env vars in priority order
// (Anthropic → OpenAI → Gemini → OpenRouter) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	for _, p := range []struct{ provider, env string }{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
		{"openrouter", "OPENROUTER_API_KEY"},
	} {
		if k := os.Getenv(p.env); k != "" {
			cfg.Provider = p.provider
			cfg.apply(k, "", "")
			return cfg, true
		}
	}

	return Config{}, false
}

// Configured reports whether an explicit provider or a discoverable key
// is present in the environment.
func Configured() bool {
	if os.Getenv("PEERPATH_LLM_PROVIDER") != "" {
		return true
	}
	_, ok := DiscoverConfig()
	return ok
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "gemini":
		key = c.Gemini.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	case "mock":
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		return fmt.Errorf("PEERPATH_LLM_API_KEY is required for the %s provider", c.Provider)
	}
	return nil
}
