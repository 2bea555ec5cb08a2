package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/peerpath/peerpath/internal/llm"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
)

func testLesson() quizgen.Lesson {
	return quizgen.Lesson{
		Title:   "Cell Structure & Function",
		Content: "Mitochondria produce ATP. The nucleus stores DNA.",
	}
}

const quizJSON = `[
	{"question": "What produces ATP?", "choices": ["Mitochondria", "Nucleus", "Ribosome", "Membrane"], "answerIndex": 0, "explanation": "Mitochondria make ATP.", "type": "fact"},
	{"question": "What stores DNA?", "choices": ["Golgi", "Nucleus", "Vacuole", "Lysosome"], "answerIndex": 1, "explanation": "The nucleus holds DNA."},
	{"question": "  what produces   ATP? ", "choices": ["A", "B", "C", "D"], "answerIndex": 2},
	{"question": "Broken", "choices": ["only", "three", "choices"], "answerIndex": 0},
	{"question": "Out of range", "choices": ["a", "b", "c", "d"], "answerIndex": 7}
]`

func testConfig(url string) Config {
	cfg := DefaultConfig()
	cfg.FunctionsURL = url
	cfg.QuizTimeout = 2 * time.Second
	cfg.LessonTimeout = 2 * time.Second
	return cfg
}

func TestQuiz_FromFunction(t *testing.T) {
	var gotPath, gotKey, gotAuth string
	var gotBody quizRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotAuth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"questions": `+quizJSON+`}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL + "/")
	cfg.FunctionsKey = "anon-key"
	e := New(cfg)

	quiz := e.Quiz(t.Context(), testLesson(), 5, quizgen.StyleVocab)

	assert.Equal(t, "/functions/v1/generate_quiz", gotPath)
	assert.Equal(t, "anon-key", gotKey)
	assert.Equal(t, "Bearer anon-key", gotAuth)
	assert.Equal(t, 5, gotBody.Count)
	assert.Equal(t, quizgen.StyleVocab, gotBody.Style)
	assert.Equal(t, "Cell Structure & Function", gotBody.Lesson.Title)

	require.Len(t, quiz, 2)
	assert.Equal(t, "What produces ATP?", quiz[0].Question)
	assert.Equal(t, quizgen.TypeFact, quiz[0].Type)
	assert.Equal(t, "Nucleus", quiz[1].Answer())
}

func TestQuiz_BareArrayAndCountCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, quizJSON)
	}))
	defer srv.Close()

	quiz := New(testConfig(srv.URL)).Quiz(t.Context(), testLesson(), 1, quizgen.StyleMixed)
	require.Len(t, quiz, 1)
	assert.Equal(t, "Mitochondria", quiz[0].Answer())
}

func TestQuiz_SanitizesRemoteItems(t *testing.T) {
	const dirty = `{"questions": [
		{"question": "What\u200b produces\u0007   ATP?\n", "choices": ["Mito\u200bchondria", " Nucleus ", "Ribo\u0001some", "Mem\ufeffbrane"], "answerIndex": 0, "explanation": "Mitochondria\tmake ATP."}
	]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, dirty)
	}))
	defer srv.Close()

	quiz := New(testConfig(srv.URL)).Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed)
	require.Len(t, quiz, 1)
	q := quiz[0]
	assert.Equal(t, "What produces ATP?", q.Question)
	assert.Equal(t, []string{"Mitochondria", "Nucleus", "Ribosome", "Membrane"}, q.Choices)
	assert.Equal(t, "Mitochondria make ATP.", q.Explanation)
	assert.Equal(t, "Mitochondria", q.Answer())
}

func TestQuiz_FunctionFallbackUsesProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"questions": `+quizJSON+`, "fallback": true}`)
	}))
	defer srv.Close()

	mock := llm.NewMockProvider(llm.MockResponse{
		Text: "Sure! Here you go:\n```json\n" + quizJSON + "\n```",
	})
	e := New(testConfig(srv.URL), WithProvider(mock))

	quiz := e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleConcept)
	require.Len(t, quiz, 2)
	require.Equal(t, 1, mock.CallCount())

	req := mock.Calls()[0]
	assert.Nil(t, req.Schema)
	assert.Equal(t, quizSystemPrompt, req.System)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "Generate 3 questions")
	assert.Contains(t, req.Messages[0].Content, "conceptual understanding")
}

func TestQuiz_StructuredProvider(t *testing.T) {
	cfg := testConfig("")
	cfg.Structured = true
	mock := llm.NewMockProvider(
		llm.MockResponse{Text: `{"questions": ` + quizJSON + `}`},
		llm.MockResponse{Text: "Sure! Here you go:\n" + quizJSON},
	)
	e := New(cfg, WithProvider(mock))

	quiz := e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed)
	require.Len(t, quiz, 2)
	assert.Equal(t, "What produces ATP?", quiz[0].Question)

	req := mock.Calls()[0]
	require.NotNil(t, req.Schema)
	assert.Equal(t, QuizSetSchema.Name, req.Schema.Name)

	// Prose is not an object, so the schema check rejects it.
	assert.Nil(t, e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
}

func TestLessons_StructuredProvider(t *testing.T) {
	cfg := testConfig("")
	cfg.Structured = true
	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `{"lessons": [{"title": "Cells", "content": "Cells are the unit of life."}]}`,
	})

	drafts := New(cfg, WithProvider(mock)).Lessons(t.Context(), "Biology", []quizgen.Lesson{{Title: "Cells", Content: "Intro"}})
	require.Len(t, drafts, 1)
	assert.Equal(t, "Cells are the unit of life.", drafts[0].Content)
	assert.Equal(t, LessonSetSchema.Name, mock.Calls()[0].Schema.Name)
}

func TestSetSchemas_KeepItemLimitsOutOfTheSet(t *testing.T) {
	props := QuizSetSchema.Definition["properties"].(map[string]any)
	item := props["questions"].(map[string]any)["items"].(map[string]any)
	choices := item["properties"].(map[string]any)["choices"].(map[string]any)
	assert.NotContains(t, choices, "minItems")
	assert.Equal(t, false, item["additionalProperties"])
	assert.Equal(t, []any{"question", "choices", "answerIndex"}, item["required"])

	orig := QuizItemSchema.Definition["properties"].(map[string]any)["choices"].(map[string]any)
	assert.Equal(t, 4, orig["minItems"])

	require.NoError(t, llm.ValidateJSON(QuizSetSchema, json.RawMessage(`{"questions": `+quizJSON+`}`)))
	assert.Error(t, llm.ValidateJSON(QuizSetSchema, json.RawMessage(`{"items": []}`)))
}

func TestQuiz_ServerErrorResolvesNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zapcore.WarnLevel)
	e := New(testConfig(srv.URL), WithLogger(logger.Wrap(zap.New(core))))

	assert.Nil(t, e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
	require.Equal(t, 1, logs.FilterMessage("quiz function failed").Len())
}

func TestQuiz_TimeoutResolvesNil(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testConfig(srv.URL)
	cfg.QuizTimeout = 50 * time.Millisecond

	start := time.Now()
	assert.Nil(t, New(cfg).Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
	assert.Less(t, time.Since(start), time.Second)
}

func TestQuiz_ProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		resp llm.MockResponse
	}{
		{"provider error", llm.MockResponse{Err: errors.New("unavailable")}},
		{"no array", llm.MockResponse{Text: "I cannot help with that."}},
		{"all invalid", llm.MockResponse{Text: `[{"question": "x", "choices": ["a"], "answerIndex": 0}]`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(testConfig(""), WithProvider(llm.NewMockProvider(tt.resp)))
			assert.Nil(t, e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
		})
	}
}

func TestQuiz_Disabled(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, quizJSON)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Disabled = true
	e := New(cfg)

	assert.False(t, e.Enabled())
	assert.Nil(t, e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
	assert.Zero(t, calls.Load())

	assert.False(t, New(DefaultConfig()).Enabled())
	var nilEnricher *Enricher
	assert.False(t, nilEnricher.Enabled())
}

type panicProvider struct{}

func (panicProvider) Generate(context.Context, llm.Request) (*llm.Response, error) {
	panic("provider exploded")
}

func (panicProvider) ModelID() string { return "panic" }

func TestQuiz_RecoversFromPanic(t *testing.T) {
	e := New(testConfig(""), WithProvider(panicProvider{}))
	assert.Nil(t, e.Quiz(t.Context(), testLesson(), 3, quizgen.StyleMixed))
}

func TestLessons_FromFunction(t *testing.T) {
	var gotBody lessonsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/functions/v1/generate_lessons", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		_, _ = io.WriteString(w, `{"lessons": [
			{"title": "Cells", "content": "Overview:\nCells are small."},
			{"content": "No title here."},
			{"title": 42}
		]}`)
	}))
	defer srv.Close()

	base := []quizgen.Lesson{{Title: "Cells", Content: "Intro"}, {Title: "Genetics", Content: "DNA"}}
	drafts := New(testConfig(srv.URL)).Lessons(t.Context(), "Biology", base)

	assert.Equal(t, "Biology", gotBody.Subject)
	assert.Len(t, gotBody.Base, 2)
	require.Len(t, drafts, 2)
	assert.Equal(t, "Cells", drafts[0].Title)
	assert.Equal(t, "", drafts[1].Title)
	assert.Equal(t, "No title here.", drafts[1].Content)
}

func TestLessons_FallbackAndProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"fallback": true, "lessons": [{"title": "Cells", "content": "Intro"}]}`)
	}))
	defer srv.Close()

	base := []quizgen.Lesson{{Title: "Cells", Content: "Intro"}}
	assert.Nil(t, New(testConfig(srv.URL)).Lessons(t.Context(), "Biology", base))

	mock := llm.NewMockProvider(llm.MockResponse{
		Text: `[{"title": "Cells", "content": "Cells are the unit of life."}]`,
	})
	drafts := New(testConfig(srv.URL), WithProvider(mock)).Lessons(t.Context(), "Biology", base)
	require.Len(t, drafts, 1)
	assert.Equal(t, "Cells are the unit of life.", drafts[0].Content)
	assert.Contains(t, mock.Calls()[0].Messages[0].Content, `Subject: "Biology"`)

	assert.Nil(t, New(testConfig(srv.URL)).Lessons(t.Context(), "Biology", nil))
}

func TestStartQuiz(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Text: quizJSON})
	p := New(testConfig(""), WithProvider(mock)).StartQuiz(t.Context(), testLesson(), 2, quizgen.StyleMixed)

	quiz, ok := p.Wait(t.Context())
	require.True(t, ok)
	assert.Len(t, quiz, 2)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PEERPATH_FUNCTIONS_URL", "https://fn.example.test")
	t.Setenv("PEERPATH_FUNCTIONS_KEY", "k")
	t.Setenv("PEERPATH_ENRICH_TIMEOUT", "5s")
	t.Setenv("PEERPATH_LESSON_ENRICH_TIMEOUT", "")
	t.Setenv("PEERPATH_ENRICH_DISABLED", "true")
	t.Setenv("PEERPATH_ENRICH_STRUCTURED", "1")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "https://fn.example.test", cfg.FunctionsURL)
	assert.Equal(t, "k", cfg.FunctionsKey)
	assert.Equal(t, 5*time.Second, cfg.QuizTimeout)
	assert.Equal(t, 30*time.Second, cfg.LessonTimeout)
	assert.True(t, cfg.Disabled)
	assert.True(t, cfg.Structured)

	t.Setenv("PEERPATH_ENRICH_TIMEOUT", "-1s")
	_, err = ConfigFromEnv()
	assert.Error(t, err)

	t.Setenv("PEERPATH_ENRICH_TIMEOUT", "soon")
	_, err = ConfigFromEnv()
	assert.Error(t, err)

	t.Setenv("PEERPATH_ENRICH_TIMEOUT", "")
	t.Setenv("PEERPATH_ENRICH_DISABLED", "maybe")
	_, err = ConfigFromEnv()
	assert.Error(t, err)
}
