package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/store"
)

type fakeRepo struct {
	store.AttemptRepo
	attempts []store.AttemptRecord
	err      error
}

func (f *fakeRepo) ListAttempts(context.Context, store.AttemptQuery) ([]store.AttemptRecord, error) {
	return f.attempts, f.err
}

func (f *fakeRepo) SubjectStats(context.Context) ([]store.SubjectStats, error) {
	return []store.SubjectStats{{Subject: "chemistry", Attempts: 2, Best: 80}}, nil
}

func records() []store.AttemptRecord {
	q := quizgen.QuizQuestion{Question: "What is a mole?", Choices: []string{"a", "b", "c", "d"}, AnswerIndex: 0}
	return []store.AttemptRecord{
		{ID: "a1", Subject: "chemistry", LessonTitle: "Stoichiometry", Questions: []quizgen.QuizQuestion{q}, Answers: map[int]int{0: 0}, Correct: 1, Total: 1, Timestamp: time.Now()},
		{ID: "a2", Subject: "chemistry", LessonTitle: "Thermochemistry", Questions: []quizgen.QuizQuestion{q}, Answers: map[int]int{}, Total: 1, Timestamp: time.Now()},
	}
}

func load(t *testing.T, s *HistoryScreen) {
	t.Helper()
	s.Update(s.Init()())
}

func TestHistoryScreen_Loads(t *testing.T) {
	s := New(&fakeRepo{attempts: records()})
	if !strings.Contains(s.View(100, 30), "Loading") {
		t.Error("expected loading state before Init completes")
	}
	load(t, s)
	view := s.View(120, 30)
	for _, want := range []string{"Stoichiometry", "Thermochemistry", "best 80%"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestHistoryScreen_Empty(t *testing.T) {
	s := New(&fakeRepo{})
	load(t, s)
	if !strings.Contains(s.View(100, 30), "No quizzes yet") {
		t.Error("expected empty state")
	}
}

func TestHistoryScreen_Error(t *testing.T) {
	s := New(&fakeRepo{err: errors.New("disk gone")})
	load(t, s)
	if !strings.Contains(s.View(100, 30), "disk gone") {
		t.Error("expected error message")
	}
}

func TestHistoryScreen_EnterOpensReview(t *testing.T) {
	s := New(&fakeRepo{attempts: records()})
	load(t, s)

	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Fatalf("selected = %d, want 1", s.selected)
	}
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	if s.selected != 1 {
		t.Errorf("selection moved past the end: %d", s.selected)
	}

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	if msg.Screen.Title() != "Results" {
		t.Errorf("pushed %q, want Results", msg.Screen.Title())
	}
}

func TestHistoryScreen_Esc(t *testing.T) {
	s := New(&fakeRepo{})
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}
