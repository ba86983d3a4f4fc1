package landing

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/obevalidator/internal/ui/theme"
)

const bannerArt = ` ██████╗ ██████╗ ███████╗
██╔═══██╗██╔══██╗██╔════╝
██║   ██║██████╔╝█████╗
██║   ██║██╔══██╗██╔══╝
╚██████╔╝██████╔╝███████╗
 ╚═════╝ ╚═════╝ ╚══════╝`

const bannerCompact = "O B E"

// RenderBanner returns the OBE banner styled in the primary color.
// Uses a compact fallback for short terminals.
func RenderBanner(compact bool) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true)

	if compact {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
