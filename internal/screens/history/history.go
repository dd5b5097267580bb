package history

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/store"
	"github.com/abhisek/myenglish/internal/ui/layout"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

// historyLimit caps how many lesson events are loaded.
const historyLimit = 500

// EventSource lists lesson events. store.EventRepo implements it.
type EventSource interface {
	QueryLessonEvents(ctx context.Context, opts store.QueryOpts) ([]store.LessonEvent, error)
}

type historyLoadedMsg struct {
	Runs []Run
	Err  error
}

// Run summarizes one lesson attempt from its events.
type Run struct {
	SessionID string
	LessonID  string
	Outcome   string // completed | exited | unfinished
	Attempts  int
	Accepted  int
	Events    []store.LessonEvent // oldest first
}

// GroupRuns folds events, newest first, into runs, newest first.
func GroupRuns(events []store.LessonEvent) []Run {
	var runs []Run
	index := make(map[string]int)
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		pos, ok := index[e.SessionID]
		if !ok {
			pos = len(runs)
			index[e.SessionID] = pos
			runs = append(runs, Run{SessionID: e.SessionID, LessonID: e.LessonID, Outcome: "unfinished"})
		}
		r := &runs[pos]
		r.Events = append(r.Events, e)
		switch e.Action {
		case store.ActionSubmitted:
			r.Attempts++
			if e.Accepted {
				r.Accepted++
			}
		case store.ActionCompleted, store.ActionExited:
			r.Outcome = e.Action
		}
	}
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs
}

// HistoryScreen displays past lesson runs.
type HistoryScreen struct {
	events   EventSource
	runs     []Run
	selected int
	expanded map[int]bool
	loaded   bool
	errMsg   string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyHintProvider = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(events EventSource) *HistoryScreen {
	return &HistoryScreen{
		events:   events,
		expanded: make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.events.QueryLessonEvents(context.Background(), store.QueryOpts{Limit: historyLimit})
		if err != nil {
			return historyLoadedMsg{Err: err}
		}
		return historyLoadedMsg{Runs: GroupRuns(events)}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Details"},
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
			s.runs = msg.Runs
		}
		s.loaded = true
		return s, nil

	case tea.KeyPressMsg:
		switch msg.String() {
		case "esc":
			return s, router.Back()
		case "up", "k":
			if s.selected > 0 {
				s.selected--
			}
		case "down", "j":
			if s.selected < len(s.runs)-1 {
				s.selected++
			}
		case "enter":
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Centered(fmt.Sprintf("\n\nError: %s", s.errMsg), width,
			lipgloss.NewStyle().Foreground(theme.Error))
	}
	if !s.loaded {
		return layout.Centered("\n\n  Loading history...", width,
			lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	if len(s.runs) == 0 {
		return layout.Centered("\n\n  No lessons yet. Start your first unit!", width,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true))
	}

	var b strings.Builder
	b.WriteString("\n")

	for i, r := range s.runs {
		title := r.LessonID
		if l, err := curriculum.Get(r.LessonID); err == nil {
			title = l.Title
		}
		started := r.Events[0].Timestamp.Local().Format("Jan 02 15:04")

		prefix := "  "
		if i == s.selected {
			prefix = "> "
		}
		line := fmt.Sprintf("%s%s  %-28s  %-10s  %d/%d accepted",
			prefix, started, title, r.Outcome, r.Accepted, r.Attempts)

		style := lipgloss.NewStyle().Foreground(outcomeColor(r.Outcome))
		if i == s.selected {
			style = style.Bold(true)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n")

		if s.expanded[i] {
			for _, e := range r.Events {
				detail := fmt.Sprintf("    %s  %-9s %-13s", e.Timestamp.Local().Format("15:04:05"), e.Action, e.Skill)
				if e.Action == store.ActionSubmitted {
					mark := "✗"
					if e.Accepted {
						mark = "✓"
					}
					detail += " " + mark
					if e.Score > 0 {
						detail += fmt.Sprintf(" %d", e.Score)
					}
				}
				if e.Detail != "" {
					detail += "  " + truncate(e.Detail, 40)
				}
				b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
					lipgloss.NewStyle().Foreground(theme.TextDim).Render(detail)))
				b.WriteString("\n")
			}
		}
	}

	return b.String()
}

func outcomeColor(outcome string) color.Color {
	switch outcome {
	case store.ActionCompleted:
		return theme.Success
	case store.ActionExited:
		return theme.TextDim
	default:
		return theme.Text
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
