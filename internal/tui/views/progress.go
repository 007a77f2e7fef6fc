package views

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/rendis/rentscout/internal/config"
	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/engine/storage"
	logpkg "github.com/rendis/rentscout/internal/logger"
	"github.com/rendis/rentscout/internal/tui/styles"
)

// SearchEnv is what the running view needs to execute and record a search.
type SearchEnv struct {
	Service   *search.Service
	OutputDir string
	LogLevel  string
}

// sharedState lives behind a pointer so the cancel func survives
// bubbletea's value copies.
type sharedState struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (s *sharedState) setCancel(c context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancel = c
}

func (s *sharedState) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// ProgressModel runs one search and reports its outcome.
type ProgressModel struct {
	query     search.Query
	env       SearchEnv
	spinner   spinner.Model
	startTime time.Time
	took      time.Duration
	done      bool
	notFound  bool
	err       error
	result    *search.Result
	paths     storage.SessionPaths
	shared    *sharedState
}

type searchCompleteMsg struct {
	Result *search.Result
	Paths  storage.SessionPaths
	Err    error
}

func NewProgressModel(msg StartSearchMsg, env SearchEnv) ProgressModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return ProgressModel{
		query:     msg.Query,
		env:       env,
		spinner:   sp,
		startTime: time.Now(),
		shared:    &sharedState{},
	}
}

func (m ProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run())
}

func (m ProgressModel) run() tea.Cmd {
	q := m.query
	env := m.env
	shared := m.shared

	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		shared.setCancel(cancel)
		defer cancel()

		paths, err := storage.NewSessionPaths(env.OutputDir, time.Now())
		if err != nil {
			return searchCompleteMsg{Err: err}
		}

		logger, err := logpkg.NewLogger(config.GetEnv(), env.LogLevel, paths.Log)
		if err != nil {
			return searchCompleteMsg{Err: err}
		}
		defer func() { _ = logger.Sync() }()
		logger.Info("session start",
			zap.String("address", q.Address),
			zap.Any("filter", q.Filter),
			zap.Int("page_size", q.PageSize),
		)

		store, err := storage.NewStore(paths.DB)
		if err != nil {
			return searchCompleteMsg{Err: err}
		}

		ctx = logpkg.ContextWithLogger(ctx, logger)
		res, err := env.Service.WithLogger(logger).RunAndRecord(ctx, q, store)
		store.Close()
		if err != nil {
			// Nothing worth keeping in a session without a center.
			_ = os.Remove(paths.DB)
			paths.DB = ""
		}
		return searchCompleteMsg{Result: res, Paths: paths, Err: err}
	}
}

func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.shared.stop()
			return m, tea.Quit
		case "esc":
			m.shared.stop()
			return m, func() tea.Msg { return BackToSearch{} }
		case "enter":
			if m.done && m.err == nil {
				next := NavigateToResults{DBPath: m.paths.DB, Address: m.result.Address}
				return m, func() tea.Msg { return next }
			}
			if m.done {
				return m, func() tea.Msg { return BackToSearch{} }
			}
		}
	case searchCompleteMsg:
		m.done = true
		m.took = time.Since(m.startTime)
		m.result = msg.Result
		m.paths = msg.Paths
		m.err = msg.Err
		m.notFound = errors.Is(msg.Err, geo.ErrNotFound)
		return m, nil
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m ProgressModel) View() string {
	var b strings.Builder

	where := m.query.Address
	if m.query.Center != nil {
		where = fmt.Sprintf("%.4f, %.4f", m.query.Center.Lat, m.query.Center.Lng)
	}
	b.WriteString(styles.Title.Render(fmt.Sprintf("Searching around %s", where)))
	b.WriteString("\n\n")

	if !m.done {
		elapsed := time.Since(m.startTime).Truncate(100 * time.Millisecond)
		b.WriteString(m.spinner.View() + " resolving address and filtering listings… " +
			styles.Hint.Render(elapsed.String()))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("esc cancel • ctrl+c quit"))
		return styles.Border.Render(b.String())
	}

	switch {
	case m.notFound:
		b.WriteString(styles.ErrorText.Render("Address not found"))
		b.WriteString("\n")
		b.WriteString(styles.Hint.Render(fmt.Sprintf("%q could not be resolved. Check the spelling or search by coordinates.", m.query.Address)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter edit search • esc back"))
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter edit search • esc back"))
	default:
		b.WriteString(m.renderSummary())
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("enter view results • esc edit search"))
	}
	return styles.Border.Render(b.String())
}

func (m ProgressModel) renderSummary() string {
	var sb strings.Builder
	res := m.result

	row := func(label, value string) {
		sb.WriteString(styles.Label.Render(label))
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Text).Bold(true).Render(value))
		sb.WriteString("\n")
	}
	row("Center:", fmt.Sprintf("%.5f, %.5f", res.Center.Lat, res.Center.Lng))
	row("Radius:", humanize.Commaf(res.Filter.RadiusM)+" m")
	row("Candidates:", humanize.Comma(int64(res.Candidates)))
	row("Matches:", humanize.Comma(int64(res.Page.Total)))
	row("Took:", m.took.Truncate(time.Millisecond).String())
	row("Session:", m.paths.DB)

	if res.Empty() {
		sb.WriteString("\n")
		sb.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Bold(true).
			Render("No listings match these filters."))
		sb.WriteString("\n")
		sb.WriteString(styles.Hint.Render("Try a wider radius, a higher max price or fewer required features."))
	} else {
		sb.WriteString("\n")
		sb.WriteString(styles.SuccessText.Render(fmt.Sprintf("%s listings ready", humanize.Comma(int64(res.Page.Total)))))
	}
	return sb.String()
}
