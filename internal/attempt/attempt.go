package attempt

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/store"
)

var (
	// ErrOutOfRange is returned for a question or choice index outside the quiz.
	ErrOutOfRange = errors.New("index out of range")
	// ErrStarted is returned when swapping questions after the first answer.
	ErrStarted = errors.New("attempt already has answers")
)

// Attempt is the in-progress state of one quiz run.
type Attempt struct {
	ID          string
	Subject     string
	LessonIndex int
	LessonTitle string
	Style       quizgen.Style
	Questions   []quizgen.QuizQuestion
	Answers     map[int]int
	Enriched    bool
	StartedAt   time.Time
}

// New starts an attempt over a locally generated quiz.
func New(subject string, lessonIndex int, lesson quizgen.Lesson, style quizgen.Style, questions []quizgen.QuizQuestion) *Attempt {
	return &Attempt{
		ID:          uuid.NewString(),
		Subject:     subject,
		LessonIndex: lessonIndex,
		LessonTitle: lesson.Title,
		Style:       style,
		Questions:   slices.Clone(questions),
		Answers:     make(map[int]int),
		StartedAt:   time.Now(),
	}
}

// Answer records choice for question i, replacing any earlier answer.
func (a *Attempt) Answer(i, choice int) error {
	if i < 0 || i >= len(a.Questions) {
		return fmt.Errorf("question %d: %w", i, ErrOutOfRange)
	}
	if choice < 0 || choice >= len(a.Questions[i].Choices) {
		return fmt.Errorf("choice %d: %w", choice, ErrOutOfRange)
	}
	a.Answers[i] = choice
	return nil
}

// Complete reports whether every question has an answer.
func (a *Attempt) Complete() bool {
	return len(a.Questions) > 0 && len(a.Answers) == len(a.Questions)
}

// CanSwap reports whether the questions may still be replaced.
func (a *Attempt) CanSwap() bool {
	return len(a.Answers) == 0
}

// UseEnriched replaces the local quiz with an enriched one. It is refused
// once the learner has answered anything, and an empty quiz is ignored.
func (a *Attempt) UseEnriched(questions []quizgen.QuizQuestion) error {
	if !a.CanSwap() {
		return ErrStarted
	}
	if len(questions) == 0 {
		return nil
	}
	a.Questions = slices.Clone(questions)
	a.Enriched = true
	return nil
}

// Grade scores the attempt.
func (a *Attempt) Grade() Result {
	return Grade(a.Questions, a.Answers)
}

// Review returns the per-question review.
func (a *Attempt) Review() []ReviewItem {
	return Review(a.Questions, a.Answers)
}

// Record converts the attempt into its stored form.
func (a *Attempt) Record() *store.AttemptRecord {
	r := a.Grade()
	return &store.AttemptRecord{
		ID:          a.ID,
		Subject:     a.Subject,
		LessonIndex: a.LessonIndex,
		LessonTitle: a.LessonTitle,
		Style:       string(a.Style),
		Questions:   slices.Clone(a.Questions),
		Answers:     maps.Clone(a.Answers),
		Correct:     r.Correct,
		Total:       r.Total,
		Enriched:    a.Enriched,
		Timestamp:   time.Now(),
	}
}

// FromRecord restores an attempt from storage for review.
func FromRecord(rec *store.AttemptRecord) *Attempt {
	answers := maps.Clone(rec.Answers)
	if answers == nil {
		answers = make(map[int]int)
	}
	return &Attempt{
		ID:          rec.ID,
		Subject:     rec.Subject,
		LessonIndex: rec.LessonIndex,
		LessonTitle: rec.LessonTitle,
		Style:       quizgen.ParseStyle(rec.Style),
		Questions:   rec.Questions,
		Answers:     answers,
		Enriched:    rec.Enriched,
		StartedAt:   rec.Timestamp,
	}
}

// Save persists the attempt.
func Save(ctx context.Context, repo store.AttemptRepo, a *Attempt) (*store.AttemptRecord, error) {
	rec := a.Record()
	if err := repo.SaveAttempt(ctx, rec); err != nil {
		return nil, fmt.Errorf("save attempt %s: %w", a.ID, err)
	}
	return rec, nil
}

// Load fetches a stored attempt by id.
func Load(ctx context.Context, repo store.AttemptRepo, id string) (*Attempt, error) {
	rec, err := repo.GetAttempt(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load attempt %s: %w", id, err)
	}
	return FromRecord(rec), nil
}
