package home

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/screens/history"
	"github.com/abhisek/myenglish/internal/screens/lessonplay"
	"github.com/abhisek/myenglish/internal/screens/profile"
	"github.com/abhisek/myenglish/internal/ui/components"
	"github.com/abhisek/myenglish/internal/ui/layout"
)

// Deps are the collaborators the home screen hands to the screens it opens.
type Deps struct {
	Controller *lesson.Controller

	// Events backs the history screen; nil hides it.
	Events history.EventSource

	// LLMReady is false when no content provider is configured. Lessons
	// still run on built-in content.
	LLMReady bool
}

// HomeScreen is the dashboard: the unit catalog with lock state, the
// learner's stats, and the other screens.
type HomeScreen struct {
	deps    Deps
	menu    components.Menu
	profile learner.Profile
	lessons []curriculum.Lesson
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps, lessons: curriculum.All()}
	h.refresh()
	return h
}

// refresh reloads the profile and rebuilds the menu, keeping the
// selection when it is still enabled.
func (h *HomeScreen) refresh() {
	h.profile = h.deps.Controller.Profile()
	ctrl := h.deps.Controller

	items := make([]components.MenuItem, 0, len(h.lessons)+3)
	for i, l := range h.lessons {
		id := l.ID
		var badge string
		if i+1 < len(h.lessons) && h.profile.IsUnlocked(h.lessons[i+1].ID) {
			badge = "✓"
		}
		items = append(items, components.MenuItem{
			Label:    fmt.Sprintf("%-3s %s", l.Level, l.Title),
			Detail:   l.Description,
			Badge:    badge,
			Disabled: !h.profile.IsUnlocked(id),
			Action: func() tea.Cmd {
				return router.Open(lessonplay.New(ctrl, id))
			},
		})
	}
	items = append(items, components.MenuItem{Label: "PROFILE", Action: func() tea.Cmd {
		return router.Open(profile.New(ctrl))
	}})
	if h.deps.Events != nil {
		events := h.deps.Events
		items = append(items, components.MenuItem{Label: "HISTORY", Action: func() tea.Cmd {
			return router.Open(history.New(events))
		}})
	}
	items = append(items, components.MenuItem{Label: "EXIT", Action: func() tea.Cmd {
		return tea.Quit
	}})

	prev := h.menu.Selected
	h.menu = components.NewMenu(items)
	if prev > 0 && prev < len(items) && !items[prev].Disabled {
		h.menu.Selected = prev
	}
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if _, ok := msg.(router.PoppedMsg); ok {
		h.refresh()
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header and footer
	termHeight := height + 8
	compact := termHeight < 34 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !h.deps.LLMReady {
		sections = append(sections, renderLLMBanner(cw))
	}
	sections = append(sections, renderStatsBar(h.profile, len(h.lessons), cw, compact))
	sections = append(sections, renderUnits(h.menu, cw))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}
