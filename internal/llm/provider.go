// Package llm sends enrichment prompts to hosted language models. Every
// provider returns either schema-checked JSON or the completion text
// wrapped as a JSON string, so callers handle one Response shape.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider generates one completion per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a prompt for a single completion.
type Request struct {
	System   string
	Messages []Message

	// Schema asks the provider for native structured output. The reply is
	// validated against it before it is returned. Nil means free text.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Prompt builds the single-turn request every enrichment call uses.
func Prompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema. Name doubles as the OpenAI schema name,
// so keep it kebab-case.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a finished completion.
type Response struct {
	// Content is the validated JSON object for schema requests and a JSON
	// string holding the completion text otherwise. Use Text for the latter.
	Content json.RawMessage

	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

const defaultMaxTokens = 1024

// finish turns raw completion text into a Response. Every provider ends
// here, so truncation and schema checks behave the same everywhere.
func finish(req Request, raw, model, stop string, usage Usage) (*Response, error) {
	var content json.RawMessage
	if req.Schema != nil {
		content = json.RawMessage(StripCodeFences(raw))
	} else {
		content = textContent(raw)
	}

	if stop == StopMaxTokens {
		return nil, &ErrMaxTokensExceeded{Content: content}
	}
	if req.Schema != nil && len(content) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("empty %s completion", req.Schema.Name)}
	}
	if err := ValidateJSON(req.Schema, content); err != nil {
		return nil, err
	}

	if usage.TotalTokens == 0 {
		usage.TotalTokens = usage.InputTokens + usage.OutputTokens
	}
	return &Response{
		Content:    content,
		Usage:      usage,
		Model:      model,
		StopReason: stop,
	}, nil
}

// resolveModel maps a short alias to a full model ID. Unknown names pass
// through so any ID the provider accepts can be configured.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[strings.ToLower(name)]; ok {
		return id
	}
	return name
}
