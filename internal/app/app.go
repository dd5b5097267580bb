// Package app is the root Bubble Tea model: it owns the screen router
// and draws the frame around the active screen.
package app

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/screens/history"
	"github.com/abhisek/myenglish/internal/screens/home"
	"github.com/abhisek/myenglish/internal/screens/welcome"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/ui/layout"
)

// Options holds dependencies for the TUI.
type Options struct {
	Controller *lesson.Controller
	Events     store.EventRepo // nil disables the history screen
	LLMReady   bool
	SkipIntro  bool
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	ctrl   *lesson.Controller
	width  int
	height int
}

// newAppModel creates a new AppModel starting at the welcome screen, or
// directly at home when opts.SkipIntro is set.
func newAppModel(opts Options) AppModel {
	deps := home.Deps{Controller: opts.Controller, LLMReady: opts.LLMReady}
	if opts.Events != nil {
		deps.Events = history.EventSource(opts.Events)
	}

	var first screen.Screen
	if opts.SkipIntro {
		first = home.New(deps)
	} else {
		first = welcome.New(func() screen.Screen { return home.New(deps) })
	}
	return AppModel{
		router: router.New(first),
		ctrl:   opts.Controller,
	}
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, router.Back()
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	switch {
	case m.width == 0 || m.height == 0:
		// No size yet.
	case layout.IsTooSmall(m.width, m.height):
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
	default:
		v.SetContent(m.frame())
	}
	return v
}

// frame draws the active screen between the header and the footer.
func (m AppModel) frame() string {
	active := m.router.Active()
	var title string
	if active != nil {
		title = active.Title()
	}

	p := m.ctrl.Profile()
	header := layout.RenderHeader(layout.Header{
		Title:  title,
		Level:  string(p.Level),
		XP:     p.XP,
		Streak: p.Streak,
	}, m.width)
	footer := layout.RenderFooter(m.hints(active), m.width)

	rows := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	return layout.RenderFrame(header, m.router.View(m.width, rows), footer, m.width, m.height)
}

func (m AppModel) hints(active screen.Screen) []layout.KeyHint {
	if hp, ok := active.(screen.KeyHintProvider); ok {
		return hp.KeyHints()
	}
	first := layout.KeyHint{Key: "Any key", Description: "Continue"}
	if m.router.Depth() > 1 {
		first = layout.KeyHint{Key: "Esc", Description: "Back"}
	}
	return []layout.KeyHint{first, {Key: "Ctrl+C", Description: "Quit"}}
}

// Run blocks until the learner quits.
func Run(opts Options) error {
	if _, err := tea.NewProgram(newAppModel(opts)).Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
