package home

import (
	"fmt"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/learner"
	"github.com/abhisek/myenglish/internal/ui/components"
	"github.com/abhisek/myenglish/internal/ui/theme"
)

// Box-drawing title (same art as welcome/banner.go).
const titleFull = `╔╦╗╦ ╦ ╔═╗╔╗╔╔═╗╦  ╦╔═╗╦ ╦
║║║╚╦╝ ║╣ ║║║║ ╦║  ║╚═╗╠═╣
╩ ╩ ╩  ╚═╝╝╚╝╚═╝╩═╝╩╚═╝╩ ╩`

const titleCompact = "M Y · E N G L I S H"

// renderTitle returns the styled title block or compact fallback.
func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Highlight).
		Bold(true)

	art := titleFull
	if compact {
		art = titleCompact
	}
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Center).
		Render(style.Render(art))
}

// renderStatsBar renders the learner stats in a bordered box matching
// content width.
func renderStatsBar(p learner.Profile, total, cw int, compact bool) string {
	xpStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	streakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	unitStyle := lipgloss.NewStyle().Foreground(theme.Info).Bold(true)
	reviewStyle := lipgloss.NewStyle().Foreground(theme.TextDim)
	if p.HasErrors() {
		reviewStyle = lipgloss.NewStyle().Foreground(theme.Error)
	}

	var stats string
	if compact {
		stats = fmt.Sprintf("%s %s %s %s",
			xpStyle.Render(fmt.Sprintf("✦%d", p.XP)),
			streakStyle.Render(fmt.Sprintf("★%d", p.Streak)),
			unitStyle.Render(fmt.Sprintf("%d/%d", len(p.Unlocked), total)),
			reviewStyle.Render(fmt.Sprintf("!%d", len(p.ErrorTokens))),
		)
	} else {
		stats = fmt.Sprintf("%s  %s  %s  %s",
			xpStyle.Render(fmt.Sprintf("✦ %d XP", p.XP)),
			streakStyle.Render(fmt.Sprintf("★ %d DAY", p.Streak)),
			unitStyle.Render(fmt.Sprintf("%d/%d UNITS", len(p.Unlocked), total)),
			reviewStyle.Render(fmt.Sprintf("%d TO REVIEW", len(p.ErrorTokens))),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Info).
		Width(cw - 2). // account for border chars
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// renderUnits renders the catalog menu left-aligned inside the content
// width.
func renderUnits(menu components.Menu, cw int) string {
	return lipgloss.NewStyle().
		Width(cw).
		Align(lipgloss.Left).
		Render(menu.View())
}

// renderLLMBanner renders a warning when no content provider is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ No LLM API key set: lessons use built-in content (see myenglish --help)")
}
