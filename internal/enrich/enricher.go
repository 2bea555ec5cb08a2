// Package enrich asks a remote function host or an LLM provider for better
// quizzes and lessons. Every call resolves to nil on failure so callers can
// always fall back to locally generated content.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/peerpath/peerpath/internal/llm"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
)

const maxResponseBytes = 4 << 20

// Function names served under /functions/v1/.
const (
	QuizFunction    = "generate_quiz"
	LessonsFunction = "generate_lessons"
)

// LessonDraft is one enriched lesson as returned by the remote side. Any
// field may be empty; callers normalize against their base lessons.
type LessonDraft struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Short   string `json:"short,omitempty"`
}

// Enricher orchestrates remote quiz and lesson enrichment.
type Enricher struct {
	cfg      Config
	client   *http.Client
	provider llm.Provider
	log      *logger.Logger
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithHTTPClient overrides the client used for function calls.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Enricher) { e.client = c }
}

// WithProvider sets the LLM provider used when no function host answers.
func WithProvider(p llm.Provider) Option {
	return func(e *Enricher) { e.provider = p }
}

// WithLogger sets the logger for swallowed failures.
func WithLogger(l *logger.Logger) Option {
	return func(e *Enricher) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Enricher. Without a functions URL or a provider it is a
// no-op that always resolves to nil.
func New(cfg Config, opts ...Option) *Enricher {
	e := &Enricher{
		cfg:    cfg,
		client: http.DefaultClient,
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With("component", "enrich")
	return e
}

// Enabled reports whether any enrichment source is configured.
func (e *Enricher) Enabled() bool {
	if e == nil || e.cfg.Disabled {
		return false
	}
	return e.cfg.FunctionsURL != "" || e.provider != nil
}

// Quiz returns a remotely generated quiz of at most count questions, or nil.
// It never returns an error; failures are logged at warn level.
func (e *Enricher) Quiz(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) (out []quizgen.QuizQuestion) {
	if !e.Enabled() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("quiz enrichment panicked", "panic", r)
			out = nil
		}
	}()

	count = quizgen.ClampCount(count)
	ctx, cancel := context.WithTimeout(ctx, e.cfg.QuizTimeout)
	defer cancel()
	log := e.log.With("lesson", lesson.Title, "count", count, "style", string(style))

	if e.cfg.FunctionsURL != "" {
		items, err := e.quizFromFunction(ctx, lesson, count, style)
		if qs := e.toQuestions(items, count, log); err == nil && len(qs) > 0 {
			return qs
		}
		if err != nil {
			log.Warn("quiz function failed", "error", err)
		}
	}

	if e.provider != nil {
		items, err := e.quizFromProvider(ctx, lesson, count, style)
		if err != nil {
			log.Warn("quiz completion failed", "error", err)
			return nil
		}
		if qs := e.toQuestions(items, count, log); len(qs) > 0 {
			return qs
		}
		log.Warn("quiz completion had no usable questions")
	}
	return nil
}

// StartQuiz runs Quiz in the background. The result is only delivered
// through the returned Pending.
func (e *Enricher) StartQuiz(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) *Pending[[]quizgen.QuizQuestion] {
	return Start(ctx, func(ctx context.Context) []quizgen.QuizQuestion {
		return e.Quiz(ctx, lesson, count, style)
	})
}

// Lessons returns enriched lesson drafts for a subject's base lessons, or nil.
func (e *Enricher) Lessons(ctx context.Context, subject string, base []quizgen.Lesson) (out []LessonDraft) {
	if !e.Enabled() || len(base) == 0 {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("lesson enrichment panicked", "panic", r)
			out = nil
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.cfg.LessonTimeout)
	defer cancel()
	log := e.log.With("subject", subject, "lessons", len(base))

	if e.cfg.FunctionsURL != "" {
		drafts, err := e.lessonsFromFunction(ctx, subject, base)
		if err == nil && len(drafts) > 0 {
			return drafts
		}
		if err != nil {
			log.Warn("lessons function failed", "error", err)
		}
	}

	if e.provider != nil {
		drafts, err := e.lessonsFromProvider(ctx, subject, base)
		if err != nil {
			log.Warn("lesson completion failed", "error", err)
			return nil
		}
		return drafts
	}
	return nil
}

type quizRequest struct {
	Lesson quizgen.Lesson `json:"lesson"`
	Count  int            `json:"count"`
	Style  quizgen.Style  `json:"style"`
}

type quizResponse struct {
	Questions []json.RawMessage `json:"questions"`
	Fallback  bool              `json:"fallback"`
	Error     string            `json:"error"`
}

type lessonsRequest struct {
	Subject string           `json:"subject"`
	Base    []quizgen.Lesson `json:"base"`
}

type lessonsResponse struct {
	Lessons  []json.RawMessage `json:"lessons"`
	Fallback bool              `json:"fallback"`
	Error    string            `json:"error"`
}

// errFallback marks answers the function host produced without a model.
var errFallback = errors.New("function answered with a local fallback")

func (e *Enricher) quizFromFunction(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) ([]json.RawMessage, error) {
	raw, err := e.callFunction(ctx, QuizFunction, quizRequest{Lesson: lesson, Count: count, Style: style})
	if err != nil {
		return nil, err
	}

	// Older hosts answer with a bare array.
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", QuizFunction, err)
		}
		return items, nil
	}

	var resp quizResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", QuizFunction, err)
	}
	switch {
	case resp.Fallback:
		return nil, errFallback
	case resp.Error != "" && len(resp.Questions) == 0:
		return nil, fmt.Errorf("%s: %s", QuizFunction, resp.Error)
	}
	return resp.Questions, nil
}

func (e *Enricher) lessonsFromFunction(ctx context.Context, subject string, base []quizgen.Lesson) ([]LessonDraft, error) {
	raw, err := e.callFunction(ctx, LessonsFunction, lessonsRequest{Subject: subject, Base: base})
	if err != nil {
		return nil, err
	}
	var resp lessonsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode %s: %w", LessonsFunction, err)
	}
	if resp.Fallback {
		return nil, errFallback
	}
	if resp.Error != "" && len(resp.Lessons) == 0 {
		return nil, fmt.Errorf("%s: %s", LessonsFunction, resp.Error)
	}
	return e.toDrafts(resp.Lessons), nil
}

// callFunction POSTs body as JSON to <FunctionsURL>/functions/v1/<name>.
func (e *Enricher) callFunction(ctx context.Context, name string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", name, err)
	}

	url := strings.TrimRight(e.cfg.FunctionsURL, "/") + "/functions/v1/" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if key := e.cfg.FunctionsKey; key != "" {
		req.Header.Set("apikey", key)
		req.Header.Set("Authorization", "Bearer "+key)
	}

	res, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", name, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", name, err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%s returned %d: %s", name, res.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func (e *Enricher) quizFromProvider(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) ([]json.RawMessage, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuizEnrich)
	return e.complete(ctx, llm.Prompt(quizSystemPrompt, QuizUserMessage(lesson, count, style)), QuizSetSchema, "questions")
}

func (e *Enricher) lessonsFromProvider(ctx context.Context, subject string, base []quizgen.Lesson) ([]LessonDraft, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeLessonEnrich)
	items, err := e.complete(ctx, llm.Prompt(lessonsSystemPrompt, LessonsUserMessage(subject, base)), LessonSetSchema, "lessons")
	if err != nil {
		return nil, err
	}
	return e.toDrafts(items), nil
}

// complete returns the raw items of one completion. In structured mode the
// provider is held to set and the items are read from set's key; otherwise
// the JSON array is pulled out of free text.
func (e *Enricher) complete(ctx context.Context, req llm.Request, set *llm.Schema, key string) ([]json.RawMessage, error) {
	req.MaxTokens = e.cfg.MaxTokens
	req.Temperature = e.cfg.Temperature
	if e.cfg.Structured {
		req.Schema = set
	}
	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if req.Schema != nil {
		var obj map[string][]json.RawMessage
		if err := json.Unmarshal(resp.Content, &obj); err != nil {
			return nil, &llm.ErrInvalidResponse{Content: resp.Content, Err: err}
		}
		return obj[key], nil
	}

	span, err := llm.ExtractJSONArray(resp.Text())
	if err != nil {
		return nil, err
	}
	var items []json.RawMessage
	if err := json.Unmarshal(span, &items); err != nil {
		return nil, &llm.ErrInvalidResponse{Content: span, Err: err}
	}
	return items, nil
}

type quizItem struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	AnswerIndex int      `json:"answerIndex"`
	Explanation string   `json:"explanation"`
	Type        string   `json:"type"`
}

// toQuestions validates and sanitizes remote items. Invalid items are
// dropped, duplicates removed and the list capped at count.
func (e *Enricher) toQuestions(items []json.RawMessage, count int, log *logger.Logger) []quizgen.QuizQuestion {
	var out []quizgen.QuizQuestion
	for i, raw := range items {
		if err := llm.ValidateJSON(QuizItemSchema, raw); err != nil {
			log.Debug("dropping quiz item", "index", i, "error", err)
			continue
		}
		var it quizItem
		if err := json.Unmarshal(raw, &it); err != nil {
			log.Debug("dropping quiz item", "index", i, "error", err)
			continue
		}
		q, err := quizgen.NewQuizQuestion(it.Question, it.Choices, it.AnswerIndex, it.Explanation)
		if err != nil {
			log.Debug("dropping quiz item", "index", i, "error", err)
			continue
		}
		if t := quizgen.QuestionType(strings.ToLower(it.Type)); t.Known() {
			q.Type = t
		}
		out = append(out, q)
	}
	out = quizgen.Dedupe(out, count)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (e *Enricher) toDrafts(items []json.RawMessage) []LessonDraft {
	var out []LessonDraft
	for i, raw := range items {
		if err := llm.ValidateJSON(LessonItemSchema, raw); err != nil {
			e.log.Debug("dropping lesson item", "index", i, "error", err)
			continue
		}
		var d LessonDraft
		if err := json.Unmarshal(raw, &d); err != nil {
			continue
		}
		d.Title = quizgen.Sanitize(d.Title)
		d.Short = quizgen.Sanitize(d.Short)
		d.Content = strings.TrimSpace(d.Content)
		out = append(out, d)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
