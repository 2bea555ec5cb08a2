package llm

import (
	"errors"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouter shows these on its usage dashboard.
const (
	openRouterReferer = "https://github.com/peerpath/peerpath"
	openRouterTitle   = "PeerPath"
)

var openRouterAliases = map[string]string{
	"gemini-flash":  "google/gemini-2.0-flash-exp",
	"claude-haiku":  "anthropic/claude-haiku-4.5",
	"gpt-4o-mini":   "openai/gpt-4o-mini",
	"llama-small":   "meta-llama/llama-3.1-8b-instruct",
	"mistral-small": "mistralai/mistral-small",
}

// NewOpenRouterProvider returns an OpenAI-compatible provider pointed at
// OpenRouter. Requests carry the app attribution headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenAIProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openrouter API key is required")
	}
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = defaultOpenRouterBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = attributionDoer{next: http.DefaultClient}
	return &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, openRouterAliases),
	}, nil
}

type attributionDoer struct {
	next openai.HTTPDoer
}

func (d attributionDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return d.next.Do(req)
}
