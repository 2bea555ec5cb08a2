// Package history lists past attempts and per-subject totals.
package history

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/attempt"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/screens/summary"
	"github.com/peerpath/peerpath/internal/store"
	"github.com/peerpath/peerpath/internal/ui/layout"
	"github.com/peerpath/peerpath/internal/ui/theme"
)

const historyLimit = 50

type historyLoadedMsg struct {
	Attempts []store.AttemptRecord
	Stats    []store.SubjectStats
	Err      error
}

// HistoryScreen displays past attempts. Enter opens an attempt's review.
type HistoryScreen struct {
	repo     store.AttemptRepo
	attempts []store.AttemptRecord
	stats    []store.SubjectStats
	selected int
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

func New(repo store.AttemptRepo) *HistoryScreen {
	return &HistoryScreen{repo: repo}
}

func (s *HistoryScreen) Init() tea.Cmd {
	repo := s.repo
	return func() tea.Msg {
		if repo == nil {
			return historyLoadedMsg{}
		}
		ctx := context.Background()

		attempts, err := repo.ListAttempts(ctx, store.AttemptQuery{Limit: historyLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		// Totals are optional decoration.
		stats, _ := repo.SubjectStats(ctx)
		return historyLoadedMsg{Attempts: attempts, Stats: stats}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Review"},
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.attempts = msg.Attempts
			s.stats = msg.Stats
		}
		s.loaded = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return s, router.Pop()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.attempts)-1 {
				s.selected++
			}
		case "enter":
			if s.selected < len(s.attempts) {
				rec := s.attempts[s.selected]
				return s, router.Push(summary.New(attempt.FromRecord(&rec)))
			}
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	if s.errMsg != "" {
		return center.Foreground(theme.Error).Render(fmt.Sprintf("\n\nError: %s", s.errMsg))
	}
	if !s.loaded {
		return center.Foreground(theme.TextDim).Render("\n\n  Loading history...")
	}
	if len(s.attempts) == 0 {
		return center.Foreground(theme.TextDim).Italic(true).Render("\n\n  No quizzes yet. Pick a subject to start!")
	}

	var b strings.Builder
	b.WriteString("\n")

	if len(s.stats) > 0 {
		var parts []string
		for _, st := range s.stats {
			parts = append(parts, fmt.Sprintf("%s %d×  best %.0f%%", st.Subject, st.Attempts, st.Best))
		}
		b.WriteString(center.Inherit(theme.Subtitle).Render(strings.Join(parts, "   ")))
		b.WriteString("\n\n")
	}

	for i, rec := range s.attempts {
		percent := 0
		if rec.Total > 0 {
			percent = rec.Correct * 100 / rec.Total
		}
		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		marker := ""
		if rec.Enriched {
			marker = "  ◆"
		}
		line := fmt.Sprintf("%s%s  %-14s %-32s %d/%d  %3d%%%s",
			prefix, rec.Timestamp.Format("Jan 02, 2006"), rec.Subject,
			truncate(rec.LessonTitle, 32), rec.Correct, rec.Total, percent, marker)

		style := theme.Unselected
		if i == s.selected {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
