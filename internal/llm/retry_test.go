package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 1 * time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func down() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(down(), MockResponse{Text: "[" + osmosisItem + "]"})
	p := WithRetry(mock, retryConfig(), nil)

	resp, err := p.Generate(context.Background(), Prompt("sys", "quiz"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text() != "["+osmosisItem+"]" {
		t.Fatalf("unexpected text: %q", resp.Text())
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_StopsAtMaxAttempts(t *testing.T) {
	mock := NewMockProvider(down(), down(), down(), down())
	p := WithRetry(mock, retryConfig(), nil)

	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if mock.CallCount() != 3 {
		t.Fatalf("expected 3 calls, got %d", mock.CallCount())
	}
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	for _, n := range []int{0, -2} {
		mock := NewMockProvider(down(), down())
		cfg := retryConfig()
		cfg.MaxAttempts = n
		_, err := WithRetry(mock, cfg, nil).Generate(context.Background(), Request{})
		if err == nil {
			t.Fatalf("MaxAttempts=%d: expected error", n)
		}
		if mock.CallCount() != 1 {
			t.Fatalf("MaxAttempts=%d: expected 1 call, got %d", n, mock.CallCount())
		}
	}
}

func TestRetry_PermanentErrorsNotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"truncated", &ErrMaxTokensExceeded{}},
		{"rejected", &ErrRequestRejected{Status: http.StatusUnauthorized, Err: errors.New("bad key")}},
		{"canceled", context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockResponse{Text: "[]"})
			_, err := WithRetry(mock, retryConfig(), nil).Generate(context.Background(), Request{})
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}
			if mock.CallCount() != 1 {
				t.Fatalf("expected 1 call, got %d", mock.CallCount())
			}
		})
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: "not json"},
		MockResponse{Text: "still not json"},
		MockResponse{Text: `{"questions":[]}`},
	)
	req := Prompt("sys", "quiz")
	req.Schema = quizSetSchema()

	_, err := WithRetry(mock, retryConfig(), nil).Generate(context.Background(), req)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetry_CanceledWhileWaiting(t *testing.T) {
	mock := NewMockProvider(down(), MockResponse{Text: "[]"})
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = 0

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	_, err := WithRetry(mock, cfg, nil).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_WaitPastDeadlineReturnsLastError(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Minute, Err: errors.New("429")}},
		MockResponse{Text: "[]"},
	)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	_, err := WithRetry(mock, retryConfig(), nil).Generate(ctx, Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected ErrRateLimit, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("waited %s before giving up", elapsed)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
}

func TestRetry_RateLimitRespectsRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 30 * time.Millisecond, Err: errors.New("429")}},
		MockResponse{Text: "[]"},
	)
	start := time.Now()
	if _, err := WithRetry(mock, retryConfig(), nil).Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Fatalf("retried after %s, before Retry-After", elapsed)
	}
	if mock.CallCount() != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.CallCount())
	}
}

func TestRetryConfig_Delay(t *testing.T) {
	cfg := RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: 300 * time.Millisecond, Multiplier: 2}
	within := func(d, lo, hi time.Duration) bool { return d >= lo && d <= hi }

	for range 50 {
		if d := cfg.delay(1, errors.New("x")); !within(d, 80*time.Millisecond, 120*time.Millisecond) {
			t.Fatalf("attempt 1 delay %s", d)
		}
		if d := cfg.delay(2, errors.New("x")); !within(d, 160*time.Millisecond, 240*time.Millisecond) {
			t.Fatalf("attempt 2 delay %s", d)
		}
		if d := cfg.delay(5, errors.New("x")); !within(d, 240*time.Millisecond, 360*time.Millisecond) {
			t.Fatalf("attempt 5 delay %s not capped", d)
		}
	}
	if d := cfg.delay(1, &ErrRateLimit{RetryAfter: 5 * time.Second}); d != 5*time.Second {
		t.Fatalf("retry-after delay %s", d)
	}
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	header := func(v string) http.Header {
		h := http.Header{}
		if v != "" {
			h.Set("Retry-After", v)
		}
		return h
	}
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"12", 12 * time.Second},
		{"0", 0},
		{"soon", 0},
		{now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{now.Add(-time.Minute).Format(http.TimeFormat), 0},
	}
	for _, tt := range tests {
		if got := parseRetryAfter(header(tt.value), now); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %s, want %s", tt.value, got, tt.want)
		}
	}
}

func TestRetry_ModelIDDelegates(t *testing.T) {
	p := WithRetry(NewMockProvider(), retryConfig(), nil)
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}
