package functions

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
)

const defaultQuizCount = 5

// QuizSource produces enriched quizzes. A nil result triggers the local
// fallback.
type QuizSource interface {
	Quiz(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) []quizgen.QuizQuestion
}

// LessonSource produces enriched lessons. A nil result echoes the base
// lessons back with the fallback flag.
type LessonSource interface {
	Lessons(ctx context.Context, subject string, base []quizgen.Lesson) []enrich.LessonDraft
}

type QuizRequest struct {
	Lesson quizgen.Lesson `json:"lesson"`
	Count  int            `json:"count"`
	Style  string         `json:"style"`
}

type QuizResponse struct {
	Questions []quizgen.QuizQuestion `json:"questions"`
	Fallback  bool                   `json:"fallback,omitempty"`
}

type LessonsRequest struct {
	Subject string           `json:"subject"`
	Base    []quizgen.Lesson `json:"base"`
}

type LessonsResponse struct {
	Lessons  any  `json:"lessons"`
	Fallback bool `json:"fallback,omitempty"`
}

type QuizHandler struct {
	source QuizSource
	titles []string
	log    *logger.Logger
}

// NewQuizHandler creates the generate_quiz handler. titles seeds the
// distractor pool of the local fallback.
func NewQuizHandler(source QuizSource, titles []string, log *logger.Logger) *QuizHandler {
	return &QuizHandler{source: source, titles: titles, log: orNop(log).With("handler", "generate_quiz")}
}

func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req QuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("decode request: %w", err))
		return
	}
	count := req.Count
	if count <= 0 {
		count = defaultQuizCount
	}
	count = quizgen.ClampCount(count)
	style := quizgen.ParseStyle(req.Style)

	if h.source != nil {
		if qs := h.source.Quiz(c.Request.Context(), req.Lesson, count, style); len(qs) > 0 {
			RespondOK(c, QuizResponse{Questions: qs})
			return
		}
	}

	h.log.Info("serving local quiz", "lesson", req.Lesson.Title, "count", count)
	qs := quizgen.New(quizgen.WithTitlePool(h.titles)).Generate(req.Lesson, count, style)
	if qs == nil {
		qs = []quizgen.QuizQuestion{}
	}
	RespondOK(c, QuizResponse{Questions: qs, Fallback: true})
}

type LessonsHandler struct {
	source LessonSource
	log    *logger.Logger
}

func NewLessonsHandler(source LessonSource, log *logger.Logger) *LessonsHandler {
	return &LessonsHandler{source: source, log: orNop(log).With("handler", "generate_lessons")}
}

func (h *LessonsHandler) GenerateLessons(c *gin.Context) {
	var req LessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", fmt.Errorf("decode request: %w", err))
		return
	}

	if h.source != nil && len(req.Base) > 0 {
		if drafts := h.source.Lessons(c.Request.Context(), req.Subject, req.Base); len(drafts) > 0 {
			RespondOK(c, LessonsResponse{Lessons: drafts})
			return
		}
	}

	h.log.Info("echoing base lessons", "subject", req.Subject, "lessons", len(req.Base))
	base := req.Base
	if base == nil {
		base = []quizgen.Lesson{}
	}
	RespondOK(c, LessonsResponse{Lessons: base, Fallback: true})
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func orNop(l *logger.Logger) *logger.Logger {
	if l == nil {
		return logger.Nop()
	}
	return l
}
