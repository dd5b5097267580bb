// Package welcome is the splash screen: Leo says hello, then the banner
// and tagline fade in. Any key moves on to the dashboard.
package welcome

import (
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/router"
	"github.com/abhisek/myenglish/internal/screen"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	phase1End    = 500 * time.Millisecond  // greeting alone
	phase2End    = 1500 * time.Millisecond // greeting with sparkles
	totalDur     = 3000 * time.Millisecond
)

// greetings rotate inside Leo's speech bubble once the sparkles start.
var greetings = []string{"Hello!", "¡Hola!", "Hi there!", "Welcome!"}

const sparkles = "★✦"

type tickMsg time.Time

// WelcomeScreen animates the greeting until a key is pressed. It never
// leaves on its own.
type WelcomeScreen struct {
	next    func() screen.Screen
	elapsed time.Duration
	frame   int
	left    bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New returns a splash screen that swaps itself for next() on the first
// key press.
func New(next func() screen.Screen) *WelcomeScreen {
	return &WelcomeScreen{next: next}
}

func (w *WelcomeScreen) Title() string { return "" }

func (w *WelcomeScreen) Init() tea.Cmd { return tick() }

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.left {
			return w, nil
		}
		w.elapsed = min(w.elapsed+tickInterval, totalDur)
		w.frame++
		return w, tick()
	case tea.KeyPressMsg:
		if w.left {
			return w, nil
		}
		w.left = true
		return w, router.Swap(w.next())
	}
	return w, nil
}

func (w *WelcomeScreen) bubble() string {
	text := greetings[0]
	if w.elapsed >= phase1End {
		text = greetings[(w.frame/5)%len(greetings)]
	}
	body := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Info).
		Foreground(theme.Info).
		Width(18).
		Align(lipgloss.Center).
		Render(text)
	return body + "\n" + lipgloss.NewStyle().Foreground(theme.Info).Render("    ╰─ Leo")
}

func (w *WelcomeScreen) View(width, height int) string {
	top := w.bubble()
	if w.elapsed >= phase1End {
		star := string([]rune(sparkles)[w.frame%2])
		top = lipgloss.JoinHorizontal(lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Accent).Render(star+"  "),
			top,
			lipgloss.NewStyle().Foreground(theme.Secondary).Render("  "+star),
		)
	}

	parts := []string{top}
	if w.elapsed >= phase2End {
		parts = append(parts,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Read. Write. Listen. Speak."),
			"",
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true).Render("press any key to continue"),
		)
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, parts...))
}
