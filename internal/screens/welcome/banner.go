package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/myenglish/internal/ui/theme"
)

const bannerArt = `
╔╦╗╦ ╦ ╔═╗╔╗╔╔═╗╦  ╦╔═╗╦ ╦
║║║╚╦╝ ║╣ ║║║║ ╦║  ║╚═╗╠═╣
╩ ╩ ╩  ╚═╝╝╚╝╚═╝╩═╝╩╚═╝╩ ╩`

const bannerCompact = "M Y E N G L I S H"

// RenderBanner returns the MyEnglish banner styled in the primary color.
// Uses a compact fallback for terminals narrower than 32 columns.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 32 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
