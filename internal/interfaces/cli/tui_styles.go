package cli

import "github.com/charmbracelet/lipgloss"

const (
	ColorPrimary    = "#7C3AED"
	ColorSuccess    = "#10B981"
	ColorWarning    = "#F59E0B"
	ColorError      = "#EF4444"
	ColorSecondary  = "#6B7280"
	ColorBgSelected = "#1E1B4B"
)

var (
	BaseStyle = lipgloss.NewStyle().Padding(1, 2)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(ColorPrimary)).
			Padding(0, 1)

	EnvStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess)).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorWarning))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorError)).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSuccess))

	LabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorSecondary))

	MenuItemStyle = lipgloss.NewStyle().
			Padding(0, 2)

	MenuSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(ColorPrimary)).
				Background(lipgloss.Color(ColorBgSelected)).
				Padding(0, 2).
				Bold(true)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ColorPrimary))
)
