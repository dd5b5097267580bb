package success

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/ui/layout"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

// Dismisser clears the finished lesson. *lesson.Controller implements it.
type Dismisser interface {
	Exit() lesson.State
}

// SuccessScreen celebrates a completed lesson.
type SuccessScreen struct {
	ctrl       Dismisser
	completion lesson.Completion
}

var _ screen.Screen = (*SuccessScreen)(nil)
var _ screen.KeyHintProvider = (*SuccessScreen)(nil)

// New creates a SuccessScreen for c.
func New(ctrl Dismisser, c lesson.Completion) *SuccessScreen {
	return &SuccessScreen{ctrl: ctrl, completion: c}
}

func (s *SuccessScreen) Init() tea.Cmd {
	return nil
}

func (s *SuccessScreen) Title() string {
	return "Lesson Complete"
}

func (s *SuccessScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "Esc", Description: "Home"},
	}
}

func (s *SuccessScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyPressMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			s.ctrl.Exit()
			return s, router.Back()
		}
	}
	return s, nil
}

func (s *SuccessScreen) View(width, height int) string {
	c := s.completion
	center := func(str string, style lipgloss.Style) string {
		return layout.Centered(str, width, style)
	}

	var b strings.Builder
	b.WriteString("\n\n")
	b.WriteString(center("🎉  ¡Lección completada!  🎉", lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)))
	b.WriteString("\n\n")
	b.WriteString(center(c.LessonTitle, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n\n")
	b.WriteString(center(fmt.Sprintf("+%d XP", c.XPAwarded), lipgloss.NewStyle().Foreground(theme.Success).Bold(true)))
	b.WriteString("\n\n")

	if c.Unlocked != "" {
		name := c.Unlocked
		if l, err := curriculum.Get(c.Unlocked); err == nil {
			name = l.Title
		}
		b.WriteString(center("🔓 Unlocked: "+name, lipgloss.NewStyle().Foreground(theme.Secondary)))
		b.WriteString("\n\n")
	}

	b.WriteString(center("press Enter to continue", theme.Hint))
	return b.String()
}
