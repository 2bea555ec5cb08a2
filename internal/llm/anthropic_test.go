package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

func newTestAnthropicProvider(t *testing.T, handler http.HandlerFunc) *AnthropicProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := anthropic.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(server.URL),
		option.WithMaxRetries(0),
	)
	return &AnthropicProvider{
		client: &client,
		model:  "claude-haiku-4-5-20251001",
	}
}

// anthropicReply answers with one message whose text is split over blocks.
func anthropicReply(stop string, blocks ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		content := make([]map[string]any, 0, len(blocks))
		for _, b := range blocks {
			content = append(content, map[string]any{"type": "text", "text": b})
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     content,
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": stop,
			"usage":       map[string]any{"input_tokens": 50, "output_tokens": 30},
		})
	}
}

func anthropicFailure(status int, retryAfter string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if retryAfter != "" {
			w.Header().Set("Retry-After", retryAfter)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "api_error", "message": http.StatusText(status)},
		})
	}
}

func TestAnthropicProvider_FreeTextReply(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("end_turn",
		"Here is your quiz:\n```json\n[",
		osmosisItem+"]\n```",
	))
	resp, err := p.Generate(context.Background(), Prompt("You write quiz questions.", "Lesson: Osmosis"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != StopEnd || resp.Model != "claude-haiku-4-5-20251001" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Usage.InputTokens != 50 || resp.Usage.TotalTokens != 80 {
		t.Errorf("usage = %+v", resp.Usage)
	}

	span, err := ExtractJSONArray(resp.Text())
	if err != nil {
		t.Fatalf("ExtractJSONArray(%q): %v", resp.Text(), err)
	}
	if string(span) != "["+osmosisItem+"]" {
		t.Errorf("span = %s", span)
	}
}

func TestAnthropicProvider_SchemaRequest(t *testing.T) {
	var body map[string]any
	reply := anthropicReply("end_turn", `{"questions":[`+osmosisItem+`]}`)
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		reply(w, r)
	})

	req := Prompt("You write quiz questions.", "Lesson: Osmosis")
	req.Schema = quizSetSchema()
	resp, err := p.Generate(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"questions":[`+osmosisItem+`]}` {
		t.Errorf("content = %s", resp.Content)
	}

	cfg, _ := body["output_config"].(map[string]any)
	format, _ := cfg["format"].(map[string]any)
	if format["type"] != "json_schema" || format["schema"] == nil {
		t.Errorf("output_config = %v", body["output_config"])
	}
}

func TestAnthropicProvider_Truncated(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("max_tokens", `[{"question":"What does`))
	_, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
	var trunc *ErrMaxTokensExceeded
	if !errors.As(err, &trunc) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_EmptyReply(t *testing.T) {
	p := newTestAnthropicProvider(t, anthropicReply("end_turn"))
	_, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_ErrorClasses(t *testing.T) {
	t.Run("rate limit with retry-after", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicFailure(http.StatusTooManyRequests, "7"))
		_, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
		var rl *ErrRateLimit
		if !errors.As(err, &rl) {
			t.Fatalf("expected ErrRateLimit, got %T (%v)", err, err)
		}
		if rl.RetryAfter != 7*time.Second {
			t.Errorf("RetryAfter = %s, want 7s", rl.RetryAfter)
		}
	})

	t.Run("bad key", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicFailure(http.StatusUnauthorized, ""))
		_, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
		var rejected *ErrRequestRejected
		if !errors.As(err, &rejected) || rejected.Status != http.StatusUnauthorized {
			t.Fatalf("expected ErrRequestRejected(401), got %T (%v)", err, err)
		}
	})

	t.Run("server error", func(t *testing.T) {
		p := newTestAnthropicProvider(t, anthropicFailure(http.StatusInternalServerError, ""))
		_, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
		var unavail *ErrProviderUnavailable
		if !errors.As(err, &unavail) {
			t.Fatalf("expected ErrProviderUnavailable, got %T (%v)", err, err)
		}
	})
}

func TestNewAnthropicProvider(t *testing.T) {
	if _, err := NewAnthropicProvider(AnthropicConfig{}); err == nil {
		t.Fatal("expected error for empty API key")
	}
	p, err := NewAnthropicProvider(AnthropicConfig{APIKey: "sk-test", Model: "claude-sonnet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "claude-sonnet-4-20250514" {
		t.Errorf("model = %q", p.ModelID())
	}
}
