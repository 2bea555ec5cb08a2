// Package summary shows the graded result of an attempt with a
// per-question review.
package summary

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/attempt"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/ui/components"
	"github.com/peerpath/peerpath/internal/ui/layout"
	"github.com/peerpath/peerpath/internal/ui/theme"
)

// SummaryScreen displays the score and review for one attempt.
type SummaryScreen struct {
	attempt *attempt.Attempt
	result  attempt.Result
	review  []attempt.ReviewItem
	offset  int
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)
var _ screen.StatusProvider = (*SummaryScreen)(nil)

func New(a *attempt.Attempt) *SummaryScreen {
	return &SummaryScreen{
		attempt: a,
		result:  a.Grade(),
		review:  a.Review(),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) Status() string {
	return fmt.Sprintf("%d/%d", s.result.Correct, s.result.Total)
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Back"},
	}
}

// Result returns the graded score.
func (s *SummaryScreen) Result() attempt.Result {
	return s.result
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, router.Pop()
		case "up", "k":
			if s.offset > 0 {
				s.offset--
			}
		case "down", "j":
			if s.offset < len(s.review)-1 {
				s.offset++
			}
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)
	var b strings.Builder

	b.WriteString(center.Inherit(theme.Title).Render(headline(s.result.Percent)))
	b.WriteString("\n\n")
	b.WriteString(center.Foreground(theme.TextDim).Render(
		fmt.Sprintf("%s · %s", s.attempt.Subject, s.attempt.LessonTitle)))
	b.WriteString("\n\n")

	barWidth := min(width-8, 60)
	bar := components.NewProgressBar(
		fmt.Sprintf("Score %d/%d", s.result.Correct, s.result.Total),
		float64(s.result.Percent)/100, true, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", barWidth))
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, theme.Subtitle.Render("Review")))
	b.WriteString("\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
	b.WriteString("\n\n")

	inner := min(width-6, 90)
	for _, item := range s.review[min(s.offset, len(s.review)):] {
		b.WriteString(renderItem(item, inner))
		b.WriteString("\n")
	}
	return b.String()
}

func headline(percent int) string {
	switch {
	case percent >= 90:
		return "Outstanding!"
	case percent >= 70:
		return "Nice work!"
	case percent >= 50:
		return "Getting there."
	default:
		return "Keep practicing."
	}
}

func renderItem(item attempt.ReviewItem, width int) string {
	var b strings.Builder
	mark := theme.Correct.Render("✓")
	if !item.Correct {
		mark = theme.Incorrect.Render("✗")
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", mark,
		theme.Body.Width(max(width-4, 10)).Render(fmt.Sprintf("%d. %s", item.Index+1, item.Question))))

	chosen := "(no answer)"
	if item.Answered() {
		chosen = item.ChosenText
	}
	if item.Correct {
		b.WriteString("    " + theme.Correct.Render(item.AnswerText) + "\n")
	} else {
		b.WriteString("    " + theme.Incorrect.Render("You: "+chosen) + "\n")
		b.WriteString("    " + theme.Correct.Render("Answer: "+item.AnswerText) + "\n")
	}
	if item.Explanation != "" {
		b.WriteString("    " + theme.Muted.Width(max(width-4, 10)).Render(item.Explanation) + "\n")
	}
	return b.String()
}
