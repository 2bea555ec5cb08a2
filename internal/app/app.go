// Package app wires the screens into the root Bubble Tea program.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/peerpath/peerpath/internal/curriculum"
	"github.com/peerpath/peerpath/internal/logger"
	"github.com/peerpath/peerpath/internal/quizgen"
	"github.com/peerpath/peerpath/internal/router"
	"github.com/peerpath/peerpath/internal/screen"
	"github.com/peerpath/peerpath/internal/screens/home"
	"github.com/peerpath/peerpath/internal/screens/quiz"
	"github.com/peerpath/peerpath/internal/store"
	"github.com/peerpath/peerpath/internal/ui/layout"
)

// Options configures the interactive program.
type Options struct {
	Service  *curriculum.Service
	Enricher quiz.Enricher // nil for local-only quizzes
	Attempts store.AttemptRepo
	Style    quizgen.Style
	Count    int
	Seed     *uint64
	Log      *logger.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	width  int
	height int
}

func newAppModel(opts Options) AppModel {
	if opts.Log == nil {
		opts.Log = logger.Nop()
	}
	catalog := opts.Service.Catalog()
	deps := quiz.Deps{
		Enricher: opts.Enricher,
		Attempts: opts.Attempts,
		Titles:   catalog.Titles(),
		Style:    opts.Style,
		Count:    opts.Count,
		Seed:     opts.Seed,
		Log:      opts.Log.With("component", "tui"),
	}
	return AppModel{
		router: router.New(home.New(catalog.Subjects(), opts.Service, deps)),
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true
	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	var title, status string
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}
	header := layout.RenderHeader(title, status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	var hints []layout.KeyHint
	if kp, ok := active.(screen.KeyHintProvider); ok {
		hints = kp.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	if opts.Service == nil {
		return fmt.Errorf("app: curriculum service is required")
	}
	p := tea.NewProgram(newAppModel(opts))
	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
