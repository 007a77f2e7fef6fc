package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#0EA5E9") // sky
	Secondary = lipgloss.Color("#F97316") // orange
	Success   = lipgloss.Color("#22C55E") // green
	Warning   = lipgloss.Color("#EAB308") // yellow
	Error     = lipgloss.Color("#EF4444") // red
	Muted     = lipgloss.Color("#6B7280") // gray
	Text      = lipgloss.Color("#E5E7EB") // light gray
	Highlight = lipgloss.Color("#FFFFFF")
	SelectBg  = lipgloss.Color("#334155") // slate

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Label = lipgloss.NewStyle().
		Foreground(Muted).
		Width(14)

	ActiveItem = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true)

	InactiveItem = lipgloss.NewStyle().
			Foreground(Muted)

	Key = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(Muted).
		Italic(true)

	// Disabled renders navigation that is not available at a page edge.
	Disabled = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3F3F46"))

	Price = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	StatusBar = lipgloss.NewStyle().
			Foreground(Muted).
			MarginTop(1)

	Border = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Muted).
		Padding(1, 2)

	ErrorText = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	SuccessText = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)
)

// Panel returns a bordered box, highlighted when focused.
func Panel(focused bool, width, height int) lipgloss.Style {
	color := Muted
	if focused {
		color = Primary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(0, 1).
		Width(width).
		Height(height)
}
