package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rendis/rentscout/internal/tui/styles"
)

type RecentEntry struct {
	Path     string
	Address  string
	OpenedAt time.Time
}

// RemoveRecentMsg asks the app to forget a recent session.
type RemoveRecentMsg struct {
	Path string
}

type RecentModel struct {
	entries []RecentEntry
	cursor  int
}

func NewRecentModel(entries []RecentEntry) RecentModel {
	return RecentModel{entries: entries}
}

func (m RecentModel) Init() tea.Cmd {
	return nil
}

func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter":
		if m.cursor < len(m.entries) {
			path := m.entries[m.cursor].Path
			return m, func() tea.Msg { return NavigateToResults{DBPath: path} }
		}
	case "d", "delete":
		if m.cursor < len(m.entries) {
			path := m.entries[m.cursor].Path
			m.entries = append(m.entries[:m.cursor:m.cursor], m.entries[m.cursor+1:]...)
			if m.cursor >= len(m.entries) && m.cursor > 0 {
				m.cursor--
			}
			return m, func() tea.Msg { return RemoveRecentMsg{Path: path} }
		}
	case "esc", "q":
		return m, func() tea.Msg { return NavigateToHome{} }
	}
	return m, nil
}

func (m RecentModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Recent Sessions"))
	b.WriteString("\n\n")

	if len(m.entries) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Italic(true).
			Render("No recent sessions"))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc back"))
		return styles.Border.Render(b.String())
	}

	muted := lipgloss.NewStyle().Foreground(styles.Muted)
	for i, entry := range m.entries {
		cursor := "  "
		style := styles.InactiveItem
		if i == m.cursor {
			cursor = "> "
			style = styles.ActiveItem
		}

		name := filepath.Base(entry.Path)
		if entry.Address != "" {
			name = entry.Address
		}
		nameStr := style.Render(name)
		if _, err := os.Stat(entry.Path); os.IsNotExist(err) {
			nameStr = lipgloss.NewStyle().Foreground(styles.Error).Strikethrough(true).Render(name)
		}

		detail := muted.Render(fmt.Sprintf("  %s  %s", entry.Path, humanize.Time(entry.OpenedAt)))
		b.WriteString(fmt.Sprintf("%s%s\n%s\n", cursor, nameStr, detail))
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBar.Render("enter open • d forget • esc back"))

	return styles.Border.Render(b.String())
}
