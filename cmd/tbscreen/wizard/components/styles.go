package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/karuna-health/tbscreen/internal/report"
)

var (
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("63")).
		MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("244")).
		MarginBottom(1)

	criticalBannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("196")).
		Padding(0, 2)

	cautionBannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("214")).
		Padding(0, 2)

	clearBannerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")).
		Background(lipgloss.Color("42")).
		Padding(0, 2)
)

// BannerStyle returns the banner style for a report theme.
func BannerStyle(theme report.Theme) lipgloss.Style {
	switch theme {
	case report.ThemeCritical:
		return criticalBannerStyle
	case report.ThemeCaution:
		return cautionBannerStyle
	default:
		return clearBannerStyle
	}
}
