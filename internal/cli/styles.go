package cli

import "github.com/charmbracelet/lipgloss"

var (
	// DeficitColor marks a negative balance.
	DeficitColor = lipgloss.Color("#FE4A49")
	// SubtleColor is used for scale labels and the spent part of a bar.
	SubtleColor = lipgloss.Color("#666666")
	// ActiveColor highlights the selected budget.
	ActiveColor = lipgloss.Color("#3BB273")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			MarginBottom(1)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	DeficitStyle = lipgloss.NewStyle().
			Foreground(DeficitColor).
			Bold(true)

	ActiveStyle = lipgloss.NewStyle().
			Foreground(ActiveColor).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)
