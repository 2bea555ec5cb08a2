package lessons

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screens/quiz"
)

type fakeCurriculum struct {
	slug string
}

func (f *fakeCurriculum) GetCurriculum(_ context.Context, slug string) []quizgen.Lesson {
	f.slug = slug
	return []quizgen.Lesson{
		{Title: "Stoichiometry", Content: "The mole concept links particle counts to measurable masses in grams. Molar mass converts grams into moles."},
		{Title: "Thermochemistry", Content: "Enthalpy measures heat flow at constant pressure during chemical reactions."},
	}
}

func loaded(t *testing.T) (*LessonsScreen, *fakeCurriculum) {
	t.Helper()
	src := &fakeCurriculum{}
	s := New(src, quiz.Deps{}, "chemistry", "Chemistry")
	s.Update(s.Init()())
	return s, src
}

func TestLessonsScreen_Loading(t *testing.T) {
	s := New(&fakeCurriculum{}, quiz.Deps{}, "chemistry", "")
	if s.Title() != "chemistry" {
		t.Errorf("Title = %q, want slug fallback", s.Title())
	}
	if !strings.Contains(s.View(80, 24), "Building") {
		t.Error("expected loading view")
	}
	if _, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("Enter before load should do nothing")
	}
}

func TestLessonsScreen_Loaded(t *testing.T) {
	s, src := loaded(t)
	if src.slug != "chemistry" {
		t.Errorf("requested slug %q", src.slug)
	}
	if s.Status() != "2 lessons" {
		t.Errorf("Status = %q", s.Status())
	}
	view := s.View(80, 24)
	if !strings.Contains(view, "1. Stoichiometry") || !strings.Contains(view, "2. Thermochemistry") {
		t.Errorf("lessons missing from view:\n%s", view)
	}
}

func TestLessonsScreen_Preview(t *testing.T) {
	s, _ := loaded(t)
	s.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	s.Update(tea.KeyPressMsg{Code: 'v', Text: "v"})
	if !s.preview {
		t.Fatal("expected preview mode")
	}
	if !strings.Contains(s.View(100, 30), "Enthalpy") {
		t.Error("preview should show the selected lesson content")
	}

	// Esc closes the preview before leaving the screen.
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil || s.preview {
		t.Error("Esc should close the preview first")
	}
}

func TestLessonsScreen_EnterStartsQuiz(t *testing.T) {
	s, _ := loaded(t)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected push command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	qs, ok := msg.Screen.(*quiz.QuizScreen)
	if !ok {
		t.Fatalf("pushed %T, want *quiz.QuizScreen", msg.Screen)
	}
	a := qs.Attempt()
	if a.Subject != "chemistry" || a.LessonIndex != 1 || a.LessonTitle != "Stoichiometry" {
		t.Errorf("attempt = %+v", a)
	}
}
