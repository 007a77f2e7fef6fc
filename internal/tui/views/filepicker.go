package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/rentscout/internal/tui/styles"
)

// FilePickerModel browses for a saved session database.
type FilePickerModel struct {
	picker filepicker.Model
	notice string
}

// NewFilePickerModel starts in dir, falling back to the working directory.
func NewFilePickerModel(dir string) FilePickerModel {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".db"}
	fp.AutoHeight = true
	fp.Styles.Selected = fp.Styles.Selected.Foreground(styles.Primary)
	fp.Styles.Cursor = fp.Styles.Cursor.Foreground(styles.Primary)
	if dir != "" {
		fp.CurrentDirectory = dir
	}
	return FilePickerModel{picker: fp}
}

func (m FilePickerModel) Init() tea.Cmd {
	return m.picker.Init()
}

func (m FilePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && (key.String() == "esc" || key.String() == "q") {
		return m, func() tea.Msg { return NavigateToHome{} }
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok {
		return m, func() tea.Msg { return NavigateToResults{DBPath: path} }
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.notice = path + " is not a session database"
		return m, cmd
	}
	return m, cmd
}

func (m FilePickerModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Open Session"))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(styles.Muted).Render(m.picker.CurrentDirectory))
	b.WriteString("\n\n")
	b.WriteString(m.picker.View())
	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(styles.ErrorText.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(styles.StatusBar.Render("enter open • ← parent dir • esc back"))

	return styles.Border.Render(b.String())
}
