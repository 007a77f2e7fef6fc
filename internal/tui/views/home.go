package views

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/rentscout/internal/tui/styles"
)

type menuItem struct {
	key   string
	label string
	desc  string
	msg   tea.Msg
}

type HomeModel struct {
	items   []menuItem
	cursor  int
	version string
}

func NewHomeModel(version string) HomeModel {
	return HomeModel{
		version: version,
		items: []menuItem{
			{key: "n", label: "New Search", desc: "Find rentals around an address", msg: NavigateToSearch{}},
			{key: "o", label: "Open Session", desc: "Browse a saved .db session", msg: NavigateToLoad{}},
			{key: "r", label: "Recent Sessions", desc: "Reopen a recent search", msg: NavigateToRecent{}},
			{key: "q", label: "Quit", desc: "Exit rentscout"},
		},
	}
}

func (m HomeModel) Init() tea.Cmd {
	return nil
}

func (m HomeModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		return m, m.selected()
	default:
		for i, item := range m.items {
			if key.String() == item.key {
				m.cursor = i
				return m, m.selected()
			}
		}
	}
	return m, nil
}

func (m HomeModel) selected() tea.Cmd {
	item := m.items[m.cursor]
	if item.msg == nil {
		return tea.Quit
	}
	return func() tea.Msg { return item.msg }
}

func (m HomeModel) View() string {
	var b strings.Builder

	logo := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("  rentscout")
	version := lipgloss.NewStyle().Foreground(styles.Muted).Render(" " + m.version)
	tagline := lipgloss.NewStyle().Foreground(styles.Secondary).Italic(true).
		Render("  Rental listings near any address")

	b.WriteString(logo + version + "\n")
	b.WriteString(tagline + "\n\n")

	for i, item := range m.items {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}
		desc := lipgloss.NewStyle().Foreground(styles.Muted).Render(" - " + item.desc)
		fmt.Fprintf(&b, "%s%s %s%s\n", cursor, styles.Key.Render("["+item.key+"]"), style.Render(item.label), desc)
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("↑↓ navigate • enter select • q quit"))

	return styles.Border.Render(b.String())
}

// Navigation messages
type (
	NavigateToHome   struct{}
	NavigateToSearch struct{}
	NavigateToLoad   struct{}
	NavigateToRecent struct{}
	// BackToSearch returns to the filter form keeping its values.
	BackToSearch struct{}
	// NavigateToResults opens a session database in the results view.
	NavigateToResults struct {
		DBPath  string
		Address string
	}
)
