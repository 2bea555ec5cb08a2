package llm

import (
	"context"
	"fmt"
	"os"

	"github.com/peerpath/peerpath/internal/logger"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
// rec may be nil, in which case requests are only logged.
func NewProvider(ctx context.Context, cfg Config, rec Recorder, log *logger.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Each attempt is logged and recorded; retries wrap the whole chain.
	logged := WithLogging(base, cfg.Provider, rec, log)
	return WithRetry(logged, cfg.Retry, log), nil
}

// NewProviderFromEnv resolves configuration from PEERPATH_LLM_* variables,
// or from a standard provider API key when no provider is named.
func NewProviderFromEnv(ctx context.Context, rec Recorder, log *logger.Logger) (Provider, error) {
	cfg, err := EnvConfig()
	if err != nil {
		return nil, err
	}
	return NewProvider(ctx, cfg, rec, log)
}

// EnvConfig returns the explicit PEERPATH_LLM_* configuration when a
// provider is named, and the discovered configuration otherwise.
func EnvConfig() (Config, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return Config{}, err
	}
	if os.Getenv("PEERPATH_LLM_PROVIDER") != "" || cfg.selectedKey() != "" {
		return cfg, nil
	}
	if discovered, ok := DiscoverConfig(); ok {
		discovered.Retry = cfg.Retry
		discovered.Timeout = cfg.Timeout
		return discovered, nil
	}
	return Config{}, fmt.Errorf("no LLM provider configured: set PEERPATH_LLM_PROVIDER and PEERPATH_LLM_API_KEY, or a provider API key such as ANTHROPIC_API_KEY")
}

func (c Config) selectedKey() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	}
	return ""
}
