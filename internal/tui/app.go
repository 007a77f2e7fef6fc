package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/tui/views"
)

type viewID int

const (
	viewHome viewID = iota
	viewSearch
	viewProgress
	viewResults
	viewFilePicker
	viewRecent
)

// Options configures the interactive UI.
type Options struct {
	Service   *search.Service
	Logger    *zap.Logger
	OutputDir string
	LogLevel  string
	RadiusM   float64
	PageSize  int
	Version   string
}

// App is the root bubbletea model.
type App struct {
	opts        Options
	currentView viewID
	width       int
	height      int
	home        views.HomeModel
	search      views.SearchModel
	progress    views.ProgressModel
	results     views.ResultsModel
	filePicker  views.FilePickerModel
	recent      views.RecentModel
}

func NewApp(opts Options) App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return App{
		opts:        opts,
		currentView: viewHome,
		home:        views.NewHomeModel(opts.Version),
		search:      views.NewSearchModel(opts.RadiusM, opts.PageSize),
	}
}

func (a App) Init() tea.Cmd {
	return a.home.Init()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// The running view cancels its search before quitting.
		if msg.String() == "ctrl+c" && a.currentView != viewProgress {
			return a, tea.Quit
		}
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	case views.NavigateToHome:
		a.currentView = viewHome
		return a, nil
	case views.NavigateToSearch:
		a.currentView = viewSearch
		a.search = views.NewSearchModel(a.opts.RadiusM, a.opts.PageSize)
		return a, tea.Batch(a.search.Init(), a.sizeCmd())
	case views.BackToSearch:
		a.currentView = viewSearch
		return a, a.search.Init()
	case views.NavigateToLoad:
		a.currentView = viewFilePicker
		a.filePicker = views.NewFilePickerModel(a.opts.OutputDir)
		return a, tea.Batch(a.filePicker.Init(), a.sizeCmd())
	case views.StartSearchMsg:
		a.opts.Logger.Debug("starting search", zap.String("address", msg.Query.Address))
		a.currentView = viewProgress
		a.progress = views.NewProgressModel(msg, views.SearchEnv{
			Service:   a.opts.Service,
			OutputDir: a.opts.OutputDir,
			LogLevel:  a.opts.LogLevel,
		})
		return a, tea.Batch(a.progress.Init(), a.sizeCmd())
	case views.NavigateToResults:
		a.currentView = viewResults
		a.results = views.NewResultsModel(msg.DBPath, a.opts.PageSize)
		SaveRecent(msg.DBPath, msg.Address)
		return a, tea.Batch(a.results.Init(), a.sizeCmd())
	case views.NavigateToRecent:
		a.currentView = viewRecent
		a.recent = views.NewRecentModel(recentViewEntries())
		return a, a.recent.Init()
	case views.RemoveRecentMsg:
		RemoveRecent(msg.Path)
		return a, nil
	}

	var cmd tea.Cmd
	switch a.currentView {
	case viewHome:
		var m tea.Model
		m, cmd = a.home.Update(msg)
		a.home = m.(views.HomeModel)
	case viewSearch:
		var m tea.Model
		m, cmd = a.search.Update(msg)
		a.search = m.(views.SearchModel)
	case viewProgress:
		var m tea.Model
		m, cmd = a.progress.Update(msg)
		a.progress = m.(views.ProgressModel)
	case viewResults:
		var m tea.Model
		m, cmd = a.results.Update(msg)
		a.results = m.(views.ResultsModel)
	case viewFilePicker:
		var m tea.Model
		m, cmd = a.filePicker.Update(msg)
		a.filePicker = m.(views.FilePickerModel)
	case viewRecent:
		var m tea.Model
		m, cmd = a.recent.Update(msg)
		a.recent = m.(views.RecentModel)
	}

	return a, cmd
}

func (a App) View() string {
	var content string
	switch a.currentView {
	case viewHome:
		content = a.home.View()
	case viewSearch:
		content = a.search.View()
	case viewProgress:
		content = a.progress.View()
	case viewResults:
		content = a.results.View()
	case viewFilePicker:
		content = a.filePicker.View()
	case viewRecent:
		content = a.recent.View()
	}

	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// sizeCmd re-sends the terminal size so a freshly created view can lay out.
func (a App) sizeCmd() tea.Cmd {
	w, h := a.width, a.height
	return func() tea.Msg {
		return tea.WindowSizeMsg{Width: w, Height: h}
	}
}

func recentViewEntries() []views.RecentEntry {
	var out []views.RecentEntry
	for _, e := range LoadRecent() {
		out = append(out, views.RecentEntry{Path: e.Path, Address: e.Address, OpenedAt: e.OpenedAt})
	}
	return out
}

// Run starts the TUI and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(NewApp(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
