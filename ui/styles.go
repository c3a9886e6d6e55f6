package ui

import "github.com/charmbracelet/lipgloss"

var (
	primary   = lipgloss.Color("99")  // purple
	secondary = lipgloss.Color("240") // gray
	accent    = lipgloss.Color("86")  // green
	danger    = lipgloss.Color("196") // red

	appStyle = lipgloss.NewStyle().
			Padding(1, 2)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(secondary)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primary).
			Padding(0, 1)

	// Card list
	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	numberStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Right)

	cmdPreviewStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Padding(0, 1)

	// Detail pane
	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(secondary)

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(primary).
			Width(12)

	errorStyle = lipgloss.NewStyle().
			Foreground(danger)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	// Form
	labelStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Width(14)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(secondary).
			Padding(0, 1)

	focusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder()).
				BorderForeground(primary).
				Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// cardColors maps the color names stored on cards to terminal colors.
var cardColors = map[string]lipgloss.Color{
	"blue":   lipgloss.Color("33"),
	"green":  lipgloss.Color("35"),
	"yellow": lipgloss.Color("220"),
	"orange": lipgloss.Color("208"),
	"red":    lipgloss.Color("160"),
	"purple": lipgloss.Color("135"),
	"pink":   lipgloss.Color("205"),
	"brown":  lipgloss.Color("130"),
	"gray":   lipgloss.Color("244"),
	"grey":   lipgloss.Color("244"),
	"teal":   lipgloss.Color("37"),
}

func cardColor(name string) lipgloss.Color {
	if c, ok := cardColors[name]; ok {
		return c
	}
	return cardColors["blue"]
}
