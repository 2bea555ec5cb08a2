package llm

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// MockResponse is one scripted completion. Text is the raw completion as a
// model would send it; for schema requests it must be the JSON object.
type MockResponse struct {
	Text  string
	Usage Usage
	// Truncated reports the completion as cut off at MaxTokens.
	Truncated bool
	Err       error
}

var errMockExhausted = errors.New("mock: no scripted responses left")

// MockProvider replays scripted completions in order and records every
// request. Replies go through the same checks as real providers, so a
// schema request with a non-conforming Text fails validation.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) ModelID() string { return "mock" }

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	if len(m.script) == 0 {
		m.mu.Unlock()
		return nil, &ErrProviderUnavailable{Err: errMockExhausted}
	}
	next := m.script[0]
	m.script = m.script[1:]
	m.mu.Unlock()

	if next.Err != nil {
		return nil, next.Err
	}
	stop := StopEnd
	if next.Truncated {
		stop = StopMaxTokens
	}
	return finish(req, next.Text, "mock", stop, next.Usage)
}

// Calls returns a copy of the recorded requests.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.calls)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
