package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorSubtle = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#7B2FBE", Dark: "#BD93F9"}
	colorDanger = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#886600", Dark: "#F1FA8C"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorAccent).
			MarginBottom(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorSubtle).
				Padding(0, 1)

	tableCellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorAccent).
				Padding(0, 1)

	detailPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorSubtle).
				Padding(0, 1).
				MarginTop(1)

	detailLabelStyle = lipgloss.NewStyle().
				Foreground(colorSubtle).
				Width(10)

	detailValueStyle = lipgloss.NewStyle()

	actionStyle = lipgloss.NewStyle().
			Foreground(colorAccent)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	tagContainerStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
				Background(lipgloss.AdaptiveColor{Light: "#0077CC", Dark: "#8BE9FD"}).
				Padding(0, 1)

	tagSystemdStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
			Background(lipgloss.AdaptiveColor{Light: "#CC7700", Dark: "#FFB86C"}).
			Padding(0, 1)

	tagSudoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
			Background(colorDanger).
			Padding(0, 1)

	confirmPromptStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorDanger)

	confirmPanelStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDanger).
				Padding(0, 1).
				MarginTop(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorDanger)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorSubtle).
			MarginTop(1)
)
