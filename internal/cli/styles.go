package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/lifeos/internal/constants"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	DangerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	tierStyles = map[constants.UrgencyTier]lipgloss.Style{
		constants.TierHigh:   DangerStyle,
		constants.TierMedium: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		constants.TierLow:    SuccessStyle,
	}
)

// TierStyle returns the color used for an urgency tier.
func TierStyle(tier constants.UrgencyTier) lipgloss.Style {
	if s, ok := tierStyles[tier]; ok {
		return s
	}
	return DimStyle
}
