// Package theme is the shared palette and the text styles built on it.
package theme

import "charm.land/lipgloss/v2"

// Palette: calm classroom blues with warm highlights.
var (
	Primary   = lipgloss.Color("#3B82F6")
	Secondary = lipgloss.Color("#14B8A6")
	Accent    = lipgloss.Color("#F59E0B")
	Highlight = lipgloss.Color("#FACC15")
	Info      = lipgloss.Color("#22D3EE")

	Success = lipgloss.Color("#22C55E")
	Error   = lipgloss.Color("#F43F5E")

	Text    = lipgloss.Color("#F8FAFC")
	TextDim = lipgloss.Color("#94A3B8")

	BgDark = lipgloss.Color("#0F172A")
	BgCard = lipgloss.Color("#1E293B")
	Border = lipgloss.Color("#334155")
)

var (
	// Hint is secondary prose: lesson intros, tutor feedback, examples.
	Hint  = lipgloss.NewStyle().Foreground(TextDim).Italic(true)
	Label = lipgloss.NewStyle().Foreground(Secondary).Bold(true)

	// Menu rows.
	Selected   = lipgloss.NewStyle().Foreground(Primary).Bold(true)
	Unselected = lipgloss.NewStyle().Foreground(Text)
	Locked     = lipgloss.NewStyle().Foreground(TextDim)

	Correct = lipgloss.NewStyle().Foreground(Success).Bold(true)

	// Roleplay transcript.
	TutorLine      = lipgloss.NewStyle().Foreground(Info)
	UserLine       = lipgloss.NewStyle().Foreground(Text).Bold(true)
	CorrectionLine = lipgloss.NewStyle().Foreground(Accent).Italic(true)

	ProgressFilled = lipgloss.NewStyle().Background(Secondary)
	ProgressEmpty  = lipgloss.NewStyle().Background(Border)

	// Word bank tokens.
	Chip = lipgloss.NewStyle().
		Foreground(Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
	ChipSelected = Chip.
			Foreground(BgDark).
			Background(Highlight).
			BorderForeground(Highlight).
			Bold(true)
)
