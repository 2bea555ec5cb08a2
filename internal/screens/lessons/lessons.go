// Package lessons lists a subject's curriculum and launches quizzes.
package lessons

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/screens/quiz"
	"github.com/peerpath/peerpath/internal/ui/components"
	"github.com/peerpath/peerpath/internal/ui/layout"
	"github.com/peerpath/peerpath/internal/ui/theme"
)

// Curriculum builds the lesson list for a subject.
type Curriculum interface {
	GetCurriculum(ctx context.Context, slug string) []quizgen.Lesson
}

type loadedMsg struct {
	lessons []quizgen.Lesson
}

// LessonsScreen shows the lessons for one subject.
type LessonsScreen struct {
	source  Curriculum
	deps    quiz.Deps
	slug    string
	name    string
	lessons []quizgen.Lesson
	menu    components.Menu
	preview bool
	loaded  bool
}

var _ screen.Screen = (*LessonsScreen)(nil)
var _ screen.KeyHintProvider = (*LessonsScreen)(nil)
var _ screen.StatusProvider = (*LessonsScreen)(nil)

func New(source Curriculum, deps quiz.Deps, slug, name string) *LessonsScreen {
	if name == "" {
		name = slug
	}
	return &LessonsScreen{source: source, deps: deps, slug: slug, name: name}
}

func (s *LessonsScreen) Init() tea.Cmd {
	source, slug := s.source, s.slug
	return func() tea.Msg {
		return loadedMsg{lessons: source.GetCurriculum(context.Background(), slug)}
	}
}

func (s *LessonsScreen) Title() string {
	return s.name
}

func (s *LessonsScreen) Status() string {
	if !s.loaded {
		return "building curriculum…"
	}
	return fmt.Sprintf("%d lessons", len(s.lessons))
}

func (s *LessonsScreen) KeyHints() []layout.KeyHint {
	if s.preview {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Take quiz"},
			{Key: "v", Description: "Close preview"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Take quiz"},
		{Key: "v", Description: "Preview"},
		{Key: "Esc", Description: "Back"},
	}
}

// Lessons returns the loaded curriculum.
func (s *LessonsScreen) Lessons() []quizgen.Lesson {
	return s.lessons
}

func (s *LessonsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.lessons = msg.lessons
		s.loaded = true
		s.menu = components.NewMenu(s.menuItems())
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if s.preview {
				s.preview = false
				return s, nil
			}
			return s, router.Pop()
		case "v":
			if s.loaded {
				s.preview = !s.preview
			}
			return s, nil
		}
		if !s.loaded {
			return s, nil
		}
		if s.preview && msg.String() != "enter" {
			return s, nil
		}
		var cmd tea.Cmd
		s.menu, cmd = s.menu.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *LessonsScreen) menuItems() []components.MenuItem {
	items := make([]components.MenuItem, len(s.lessons))
	for i, l := range s.lessons {
		items[i] = components.MenuItem{
			Label:  fmt.Sprintf("%d. %s", i+1, l.Title),
			Action: s.startQuiz(i),
		}
	}
	return items
}

func (s *LessonsScreen) startQuiz(i int) func() tea.Cmd {
	return func() tea.Cmd {
		return router.Push(quiz.New(s.deps, s.slug, i+1, s.lessons[i]))
	}
}

func (s *LessonsScreen) View(width, height int) string {
	if !s.loaded {
		return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).
			Foreground(theme.TextDim).Render("\n\n  Building your curriculum...")
	}
	if len(s.lessons) == 0 {
		return theme.Hint.Render("\n  No lessons available.")
	}

	inner := min(width-4, 100)
	if s.preview && s.menu.Selected >= 0 {
		l := s.lessons[s.menu.Selected]
		body := theme.Title.Render(l.Title) + "\n\n" + theme.Body.Render(layout.Wrap(l.Content, inner-6))
		return theme.Card.Width(inner).MaxHeight(max(height-2, 5)).Render(body)
	}

	var b strings.Builder
	b.WriteString(theme.Subtitle.Render("Choose a lesson to quiz yourself on."))
	b.WriteString("\n\n")
	b.WriteString(s.menu.View(max(height-4, 3)))
	return b.String()
}
