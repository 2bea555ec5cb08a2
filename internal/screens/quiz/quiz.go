// Package quiz is the quiz-taking screen. It shows the locally generated
// quiz at once and offers an enriched quiz if one arrives before the first
// answer.
package quiz

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/peerpath/peerpath/internal/attempt"
	"github.com/peerpath/peerpath/internal/enrich"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/screens/summary"
	"github.com/peerpath/peerpath/internal/store"
	"github.com/peerpath/peerpath/internal/ui/components"
	"github.com/peerpath/peerpath/internal/ui/layout"
	"github.com/peerpath/peerpath/internal/ui/theme"
)

// Enricher starts background quiz enrichment.
type Enricher interface {
	Enabled() bool
	StartQuiz(ctx context.Context, lesson quizgen.Lesson, count int, style quizgen.Style) *enrich.Pending[[]quizgen.QuizQuestion]
}

// Deps are the collaborators shared by every quiz.
type Deps struct {
	Enricher Enricher
	Attempts store.AttemptRepo
	Titles   []string
	Style    quizgen.Style
	Count    int     // 0 derives the count from lesson length
	Seed     *uint64 // nil for a random quiz
	Log      *logger.Logger
}

// enrichedMsg carries the future it came from so a late result cannot
// land on a different quiz.
type enrichedMsg struct {
	from      *enrich.Pending[[]quizgen.QuizQuestion]
	questions []quizgen.QuizQuestion
	ok        bool
}

type savedMsg struct {
	err error
}

// QuizScreen runs one attempt.
type QuizScreen struct {
	deps    Deps
	lesson  quizgen.Lesson
	attempt *attempt.Attempt
	current int
	choice  components.MultiChoice

	pending  *enrich.Pending[[]quizgen.QuizQuestion]
	enriched []quizgen.QuizQuestion
	waiting  bool
	notice   string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.StatusProvider = (*QuizScreen)(nil)

// New builds the local quiz for lesson. lessonIndex is 1-based.
func New(deps Deps, subject string, lessonIndex int, lesson quizgen.Lesson) *QuizScreen {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Style == "" {
		deps.Style = quizgen.StyleMixed
	}

	opts := []quizgen.Option{quizgen.WithTitlePool(deps.Titles)}
	if deps.Seed != nil {
		opts = append(opts, quizgen.WithSeed(*deps.Seed))
	}
	gen := quizgen.New(opts...)

	var questions []quizgen.QuizQuestion
	if deps.Count > 0 {
		questions = gen.Generate(lesson, deps.Count, deps.Style)
	} else {
		questions = gen.GenerateAuto(lesson, deps.Style)
	}

	s := &QuizScreen{
		deps:    deps,
		lesson:  lesson,
		attempt: attempt.New(subject, lessonIndex, lesson, deps.Style, questions),
	}
	s.loadQuestion()
	return s
}

func (s *QuizScreen) Init() tea.Cmd {
	e := s.deps.Enricher
	if e == nil || !e.Enabled() || len(s.attempt.Questions) == 0 {
		return nil
	}
	count := s.deps.Count
	if count <= 0 {
		count = quizgen.DefaultCount(s.lesson)
	}
	s.pending = e.StartQuiz(context.Background(), s.lesson, count, s.deps.Style)
	s.waiting = true
	return waitFor(s.pending)
}

func waitFor(p *enrich.Pending[[]quizgen.QuizQuestion]) tea.Cmd {
	return func() tea.Msg {
		<-p.Done()
		qs, ok := p.Result()
		return enrichedMsg{from: p, questions: qs, ok: ok}
	}
}

// Close drops any in-flight enrichment.
func (s *QuizScreen) Close() {
	if s.pending != nil {
		s.pending.Discard()
		s.pending = nil
	}
	s.waiting = false
}

func (s *QuizScreen) Title() string {
	return s.attempt.LessonTitle
}

func (s *QuizScreen) Status() string {
	switch {
	case s.attempt.Enriched:
		return "◆ enriched"
	case s.waiting:
		return "… enriching"
	default:
		return s.attempt.Subject
	}
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	hints := []layout.KeyHint{{Key: "↑↓", Description: "Choose"}, {Key: "Enter", Description: "Answer"}}
	if s.choice.Submitted {
		hints = []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	}
	if s.EnrichedReady() {
		hints = append(hints, layout.KeyHint{Key: "e", Description: "Use enriched quiz"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Leave"})
}

// EnrichedReady reports whether an enriched quiz can still be swapped in.
func (s *QuizScreen) EnrichedReady() bool {
	return len(s.enriched) > 0 && s.attempt.CanSwap()
}

// Attempt exposes the running attempt.
func (s *QuizScreen) Attempt() *attempt.Attempt {
	return s.attempt
}

func (s *QuizScreen) loadQuestion() {
	if s.current >= len(s.attempt.Questions) {
		return
	}
	q := s.attempt.Questions[s.current]
	s.choice = components.NewMultiChoice(q.Question, q.Choices, q.AnswerIndex, q.Explanation)
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case enrichedMsg:
		if msg.from == nil || msg.from != s.pending {
			return s, nil
		}
		s.waiting = false
		s.pending = nil
		if msg.ok && len(msg.questions) > 0 && s.attempt.CanSwap() {
			s.enriched = msg.questions
			s.notice = fmt.Sprintf("An enriched quiz with %d questions is ready. Press e to switch.", len(msg.questions))
		}
		return s, nil

	case savedMsg:
		if msg.err != nil {
			s.deps.Log.Warn("failed to save attempt", "id", s.attempt.ID, "error", msg.err)
		}
		return s, router.Replace(summary.New(s.attempt))

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if len(s.attempt.Questions) == 0 {
		if msg.String() == "enter" || msg.String() == "esc" {
			return s, router.Pop()
		}
		return s, nil
	}

	switch msg.String() {
	case "esc":
		return s, router.Pop()
	case "e":
		if s.EnrichedReady() {
			if err := s.attempt.UseEnriched(s.enriched); err != nil {
				s.deps.Log.Warn("cannot switch to enriched quiz", "error", err)
				return s, nil
			}
			s.enriched = nil
			s.notice = ""
			s.current = 0
			s.loadQuestion()
		}
		return s, nil
	}

	if s.choice.Submitted {
		if msg.String() == "enter" || msg.String() == "n" {
			return s.next()
		}
		return s, nil
	}

	var cmd tea.Cmd
	s.choice, cmd = s.choice.Update(msg)
	if s.choice.Submitted {
		if err := s.attempt.Answer(s.current, s.choice.ChosenIndex); err != nil {
			s.deps.Log.Warn("invalid answer", "error", err)
		}
		// The quiz is committed once answered.
		s.enriched = nil
		s.notice = ""
		s.Close()
	}
	return s, cmd
}

func (s *QuizScreen) next() (screen.Screen, tea.Cmd) {
	s.current++
	if s.current < len(s.attempt.Questions) {
		s.loadQuestion()
		return s, nil
	}
	return s, s.save()
}

func (s *QuizScreen) save() tea.Cmd {
	repo := s.deps.Attempts
	a := s.attempt
	return func() tea.Msg {
		if repo == nil {
			return savedMsg{}
		}
		_, err := attempt.Save(context.Background(), repo, a)
		return savedMsg{err: err}
	}
}

func (s *QuizScreen) View(width, height int) string {
	inner := min(width-4, 100)
	if len(s.attempt.Questions) == 0 {
		return theme.Hint.Render("\n  This lesson is too short to build a quiz from. Press Enter to go back.")
	}

	var b strings.Builder
	total := len(s.attempt.Questions)
	pos := min(s.current+1, total)
	b.WriteString(components.NewProgressBar(
		fmt.Sprintf("Question %d/%d", pos, total),
		float64(s.current)/float64(total), false, inner).View())
	b.WriteString("\n\n")

	if s.notice != "" {
		b.WriteString(theme.Banner.Render(s.notice))
		b.WriteString("\n\n")
	}

	b.WriteString(s.choice.View(inner))
	return b.String()
}
