package console

import (
	"breathkeeper/internal/core/session"

	"github.com/charmbracelet/lipgloss"
)

var (
	ColorFgPrimary = lipgloss.Color("#ABB2BF")
	ColorFgMuted   = lipgloss.Color("#636B78")
	ColorRed       = lipgloss.Color("#E06C75")
	ColorGreen     = lipgloss.Color("#98C379")
	ColorYellow    = lipgloss.Color("#E5C07B")
	ColorBlue      = lipgloss.Color("#61AFEF")
	ColorMagenta   = lipgloss.Color("#C678DD")
	ColorBorder    = lipgloss.Color("#3F4451")
)

var (
	FrameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 4)

	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta).
			Bold(true)

	HeadlineStyle = lipgloss.NewStyle().
			Foreground(ColorFgPrimary).
			Bold(true).
			MarginTop(1)

	DetailStyle = lipgloss.NewStyle().
			Foreground(ColorYellow)

	ResultStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Italic(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed)
)

func phaseColor(phase session.Phase) lipgloss.Color {
	switch phase {
	case session.PhaseBreathing:
		return ColorBlue
	case session.PhaseRetention:
		return ColorYellow
	case session.PhaseRecovery:
		return ColorGreen
	case session.PhaseComplete:
		return ColorMagenta
	default:
		return ColorBorder
	}
}
