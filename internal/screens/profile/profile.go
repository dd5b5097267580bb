package profile

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/curriculum"
	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/lesson"
	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/ui/components"
	"github.com/abhisek/myenglish/internal/ui/layout"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

// Editor is the part of the lesson controller the profile screen uses.
type Editor interface {
	Profile() learner.Profile
	SetBio(bio string) lesson.State
	ImproveBio(ctx context.Context) (lesson.State, string, error)
}

type improvedMsg struct {
	Profile  learner.Profile
	Feedback string
	Err      error
}

// ProfileScreen shows the learner's progress and lets them edit their bio.
type ProfileScreen struct {
	ctrl     Editor
	profile  learner.Profile
	input    components.TextInput
	spin     spinner.Model
	editing  bool
	busy     bool
	feedback string
	errMsg   string
}

var _ screen.Screen = (*ProfileScreen)(nil)
var _ screen.KeyHintProvider = (*ProfileScreen)(nil)
var _ screen.EscapeHandler = (*ProfileScreen)(nil)

// New creates a ProfileScreen.
func New(ctrl Editor) *ProfileScreen {
	return &ProfileScreen{
		ctrl:    ctrl,
		profile: ctrl.Profile(),
		input:   components.NewTextInput("Tell us about yourself, in English...", 400),
		spin:    spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (s *ProfileScreen) Init() tea.Cmd {
	return nil
}

func (s *ProfileScreen) Title() string {
	return "Profile"
}

// HandlesEscape lets Esc cancel an edit before it leaves the screen.
func (s *ProfileScreen) HandlesEscape() bool {
	return true
}

func (s *ProfileScreen) KeyHints() []layout.KeyHint {
	if s.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Save"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "E", Description: "Edit bio"},
		{Key: "I", Description: "Improve with tutor"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ProfileScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case improvedMsg:
		s.busy = false
		s.profile = msg.Profile
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
		} else {
			s.feedback = msg.Feedback
		}
		return s, nil

	case spinner.TickMsg:
		if !s.busy {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *ProfileScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.editing {
		switch key {
		case "esc":
			s.editing = false
			return s, nil
		case "enter":
			s.editing = false
			s.profile = s.ctrl.SetBio(s.input.Value()).Profile
			s.feedback = ""
			return s, nil
		}
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}

	switch key {
	case "esc":
		return s, router.Back()
	case "e":
		if s.busy {
			return s, nil
		}
		s.editing = true
		s.errMsg = ""
		s.input.Reset()
		s.input.Model.SetValue(s.profile.Bio)
		return s, s.input.Init()
	case "i":
		if s.busy || strings.TrimSpace(s.profile.Bio) == "" {
			return s, nil
		}
		s.busy = true
		s.errMsg = ""
		s.feedback = ""
		ctrl := s.ctrl
		return s, tea.Batch(s.spin.Tick, func() tea.Msg {
			st, fb, err := ctrl.ImproveBio(context.Background())
			return improvedMsg{Profile: st.Profile, Feedback: fb, Err: err}
		})
	}
	return s, nil
}

func (s *ProfileScreen) View(width, height int) string {
	p := s.profile
	cw := components.ContentWidth(width)

	label := theme.Label
	value := lipgloss.NewStyle().Foreground(theme.Text)

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", label.Render("Name: "), value.Render(p.Name))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Level:"), value.Render(p.Level.DisplayName()))
	fmt.Fprintf(&b, "%s %s\n", label.Render("XP:   "), value.Render(fmt.Sprintf("%d", p.XP)))
	fmt.Fprintf(&b, "%s %s\n", label.Render("Units:"), value.Render(fmt.Sprintf("%d of %d unlocked", len(p.Unlocked), len(curriculum.All()))))

	tokens := "none"
	if len(p.ErrorTokens) > 0 {
		tokens = strings.Join(p.ErrorTokens, ", ")
	}
	fmt.Fprintf(&b, "%s %s\n\n", label.Render("To review:"), lipgloss.NewStyle().Foreground(theme.Accent).Render(tokens))

	b.WriteString(label.Render("About me"))
	b.WriteString("\n")
	switch {
	case s.editing:
		b.WriteString(s.input.View())
	case p.Bio == "":
		b.WriteString(theme.Hint.Render("Nothing yet. Press E to write a short bio in English."))
	default:
		b.WriteString(components.Card(p.Bio, cw))
		if !p.BioUpdatedAt.IsZero() {
			b.WriteString("\n" + theme.Hint.Render("updated "+p.BioUpdatedAt.Format("Jan 02 15:04")))
		}
	}

	if s.busy {
		b.WriteString("\n\n" + s.spin.View() + " The tutor is reviewing your bio...")
	}
	if s.feedback != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Info).Width(cw).Render(s.feedback))
	}
	if s.errMsg != "" {
		b.WriteString("\n\n" + lipgloss.NewStyle().Foreground(theme.Error).Render(s.errMsg))
	}

	return lipgloss.NewStyle().Width(cw).Render(b.String())
}
