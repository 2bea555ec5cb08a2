// Package home is the subject picker shown at startup.
package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/curriculum"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/screens/history"
	"github.com/peerpath/peerpath/internal/screens/lessons"
	"github.com/peerpath/peerpath/internal/screens/quiz"
	"github.com/peerpath/peerpath/internal/ui/components"
	"github.com/peerpath/peerpath/internal/ui/layout"
	"github.com/peerpath/peerpath/internal/ui/theme"
)

const subjectCharLimit = 48

// HomeScreen lists catalog subjects grouped by category, plus free-form
// subject entry.
type HomeScreen struct {
	source lessons.Curriculum
	deps   quiz.Deps
	menu   components.Menu
	input  components.TextInput
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

func New(subjects []curriculum.Subject, source lessons.Curriculum, deps quiz.Deps) *HomeScreen {
	h := &HomeScreen{
		source: source,
		deps:   deps,
		input:  components.NewTextInput("e.g. marine biology", subjectCharLimit),
	}

	var items []components.MenuItem
	category := ""
	for _, sub := range subjects {
		if sub.Category != category {
			category = sub.Category
			items = append(items, components.MenuItem{Label: category, Heading: true})
		}
		items = append(items, components.MenuItem{
			Label:  sub.Title,
			Action: h.open(sub.ID, sub.Title),
		})
	}
	items = append(items,
		components.MenuItem{Label: "More", Heading: true},
		components.MenuItem{Label: "Other subject…", Action: func() tea.Cmd { return h.input.Focus() }},
		components.MenuItem{Label: "History", Action: func() tea.Cmd {
			return router.Push(history.New(deps.Attempts))
		}},
		components.MenuItem{Label: "Quit", Action: func() tea.Cmd { return tea.Quit }},
	)
	h.menu = components.NewMenu(items)
	return h
}

func (h *HomeScreen) open(slug, name string) func() tea.Cmd {
	return func() tea.Cmd {
		return router.Push(lessons.New(h.source, h.deps, slug, name))
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.input.Focused() {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Open subject"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "q", Description: "Quit"},
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if h.input.Focused() {
		if kmsg, ok := msg.(tea.KeyMsg); ok {
			switch kmsg.String() {
			case "esc":
				h.input.Blur()
				h.input.Reset()
				return h, nil
			case "enter":
				slug := h.input.Slug()
				if slug == "" {
					return h, nil
				}
				h.input.Blur()
				h.input.Reset()
				return h, router.Push(lessons.New(h.source, h.deps, slug, humanize(slug)))
			}
		}
		var cmd tea.Cmd
		h.input, cmd = h.input.Update(msg)
		return h, cmd
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok && kmsg.String() == "q" {
		return h, tea.Quit
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Width(min(width, 80)).Inherit(theme.Title).Render("What do you want to learn today?"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Render("Pick a subject to get an 8-lesson curriculum with quizzes."))
	b.WriteString("\n\n")

	menuHeight := height - 5
	if h.input.Focused() {
		menuHeight -= 3
	}
	b.WriteString(h.menu.View(max(menuHeight, 3)))

	if h.input.Focused() {
		b.WriteString("\n")
		b.WriteString(theme.Card.Render("Subject: " + h.input.View()))
	}
	return b.String()
}

func humanize(slug string) string {
	words := strings.Split(slug, "-")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
