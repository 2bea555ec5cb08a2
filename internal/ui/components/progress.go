package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/ui/theme"
)

// ProgressBar is a horizontal bar for quiz position and scores.
type ProgressBar struct {
	Label       string
	Percent     float64
	ShowPercent bool
	Width       int
}

func NewProgressBar(label string, percent float64, showPercent bool, width int) ProgressBar {
	return ProgressBar{Label: label, Percent: percent, ShowPercent: showPercent, Width: width}
}

func (p ProgressBar) View() string {
	var out string
	if p.Label != "" {
		out = theme.Body.Render(p.Label) + "  "
	}

	suffix := 0
	if p.ShowPercent {
		suffix = 6
	}
	barWidth := max(p.Width-lipgloss.Width(out)-suffix, 4)
	filled := min(max(int(float64(barWidth)*p.Percent), 0), barWidth)

	out += theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled))
	if p.ShowPercent {
		out += theme.Muted.Render(fmt.Sprintf("  %d%%", int(p.Percent*100)))
	}
	return out
}
