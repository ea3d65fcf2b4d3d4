package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/dhabedank/strategem/internal/core"
)

// Palette.
var (
	ColorAccent  = lipgloss.Color("#9b59b6")
	ColorMuted   = lipgloss.Color("#95a5a6")
	ColorInfo    = lipgloss.Color("#3498db")
	ColorOK      = lipgloss.Color("#2ecc71")
	ColorPartial = lipgloss.Color("#f39c12")
	ColorFailed  = lipgloss.Color("#e74c3c")
	ColorCost    = lipgloss.Color("#27ae60")
)

var (
	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	SubtitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorMuted)
	HelpStyle     = lipgloss.NewStyle().Italic(true).Foreground(ColorMuted)
	ModelStyle    = lipgloss.NewStyle().Foreground(ColorInfo)
	CostStyle     = lipgloss.NewStyle().Foreground(ColorCost)
	SpinnerStyle  = lipgloss.NewStyle().Foreground(ColorAccent)

	// FrameworkStyle renders framework titles in progress lines and listings.
	FrameworkStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCost)

	SuccessStyle = lipgloss.NewStyle().Foreground(ColorOK)
	WarningStyle = lipgloss.NewStyle().Foreground(ColorPartial)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ColorFailed)

	// Setup wizard step indicator.
	SelectedStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	UnselectedStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	// TableBorderStyle draws the borders of the analyses table.
	TableBorderStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	TableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// StatusStyle colors text by framework outcome.
func StatusStyle(s core.Status) lipgloss.Style {
	switch s {
	case core.StatusSucceeded:
		return SuccessStyle
	case core.StatusDegraded:
		return WarningStyle
	default:
		return ErrorStyle
	}
}
