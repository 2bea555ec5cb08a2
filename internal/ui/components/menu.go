package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/peerpath/peerpath/internal/ui/theme"
)

// MenuItem is one selectable row. A Heading row is rendered as a group
// label and skipped by the cursor.
type MenuItem struct {
	Label   string
	Detail  string
	Heading bool
	Action  func() tea.Cmd
}

// Menu is a vertical list with group headings.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items []MenuItem) Menu {
	m := Menu{Items: items, Selected: -1}
	for i, it := range items {
		if !it.Heading {
			m.Selected = i
			break
		}
	}
	return m
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch kmsg.String() {
	case "up", "k":
		for i := m.Selected - 1; i >= 0; i-- {
			if !m.Items[i].Heading {
				m.Selected = i
				break
			}
		}
	case "down", "j":
		for i := m.Selected + 1; i < len(m.Items); i++ {
			if !m.Items[i].Heading {
				m.Selected = i
				break
			}
		}
	case "enter":
		if m.Selected >= 0 && m.Selected < len(m.Items) {
			if act := m.Items[m.Selected].Action; act != nil {
				return m, act()
			}
		}
	}
	return m, nil
}

// View renders at most height rows, scrolled to keep the cursor visible.
func (m Menu) View(height int) string {
	start := 0
	if height > 0 && m.Selected >= height {
		start = m.Selected - height + 1
	}
	end := len(m.Items)
	if height > 0 {
		end = min(end, start+height)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		it := m.Items[i]
		switch {
		case it.Heading:
			b.WriteString(theme.Category.Render(strings.ToUpper(it.Label)))
		case i == m.Selected:
			b.WriteString(theme.Selected.Render("  ▸ " + it.Label))
		default:
			b.WriteString(theme.Unselected.Render("    " + it.Label))
		}
		if it.Detail != "" {
			b.WriteString("  ")
			b.WriteString(theme.Muted.Render(it.Detail))
		}
		b.WriteString("\n")
	}
	return b.String()
}
