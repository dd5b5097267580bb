package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/ui/theme"
)

// StepProgress shows the numbered lesson steps with the current one
// highlighted.
type StepProgress struct {
	Labels  []string
	Current int
	Width   int
}

// NewStepProgress creates a new step indicator.
func NewStepProgress(labels []string, current, width int) StepProgress {
	return StepProgress{Labels: labels, Current: current, Width: width}
}

// View renders the indicator followed by a progress bar.
func (p StepProgress) View() string {
	parts := make([]string, len(p.Labels))
	for i, label := range p.Labels {
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		mark := "○"
		switch {
		case i < p.Current:
			style = lipgloss.NewStyle().Foreground(theme.Success)
			mark = "●"
		case i == p.Current:
			style = lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
			mark = "◉"
		}
		parts[i] = style.Render(fmt.Sprintf("%s %s", mark, label))
	}
	steps := strings.Join(parts, lipgloss.NewStyle().Foreground(theme.Border).Render(" ─ "))

	var percent float64
	if len(p.Labels) > 0 {
		percent = float64(p.Current) / float64(len(p.Labels))
	}
	return steps + "\n" + bar(percent, p.Width)
}

func bar(percent float64, width int) string {
	width = max(width, 4)
	filled := min(max(int(float64(width)*percent), 0), width)
	return theme.ProgressFilled.Render(strings.Repeat(" ", filled)) +
		theme.ProgressEmpty.Render(strings.Repeat(" ", width-filled))
}
