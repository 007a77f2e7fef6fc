package views

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/engine/storage"
	"github.com/rendis/rentscout/internal/export"
	"github.com/rendis/rentscout/internal/model"
	"github.com/rendis/rentscout/internal/tui/components"
	"github.com/rendis/rentscout/internal/tui/styles"
)

type focusArea int

const (
	focusTable focusArea = iota
	focusFilter
	focusCard
	focusSide
)

type sidePanel int

const (
	sideMap sidePanel = iota
	sideJSON
)

// ResultsModel shows the ranked matches of a session one page at a time,
// with a detail card and a map or JSON side panel.
type ResultsModel struct {
	dbPath    string
	pageSize  int
	session   search.Session
	total     int // candidates in the session
	ranked    []model.Match
	visible   []model.Match // ranked, narrowed by the text filter
	page      model.Page
	pager     paginator.Model
	table     table.Model
	filter    textinput.Model
	mapView   components.MapView
	focus     focusArea
	side      sidePanel
	selected  int // index into page.Items
	width     int
	height    int
	loaded    bool
	err       error
	statusMsg string

	cardScrollY int
	cardLines   []string
	jsonScrollY int
	jsonLines   []string
	jsonRaw     string
}

type sessionLoadedMsg struct {
	Session    search.Session
	Candidates []model.Listing
	Err        error
}

func NewResultsModel(dbPath string, pageSize int) ResultsModel {
	if pageSize <= 0 {
		pageSize = search.DefaultPageSize
	}
	filter := textinput.New()
	filter.Placeholder = "Type to narrow by title, address or feature..."
	filter.CharLimit = 50

	pager := paginator.New()
	pager.Type = paginator.Arabic
	pager.PerPage = pageSize

	return ResultsModel{
		dbPath:   dbPath,
		pageSize: pageSize,
		filter:   filter,
		pager:    pager,
		mapView:  components.NewMapView(40, 10),
		selected: -1,
	}
}

func (m ResultsModel) Init() tea.Cmd {
	path := m.dbPath
	return func() tea.Msg {
		sess, candidates, err := storage.LoadSession(path)
		return sessionLoadedMsg{Session: sess, Candidates: candidates, Err: err}
	}
}

func (m ResultsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, nil
		}
		m.loaded = true
		m.session = msg.Session
		m.total = len(msg.Candidates)
		m.ranked = search.Filter(msg.Candidates, msg.Session.Filter)
		search.Rank(m.ranked)
		m.visible = m.ranked
		m.mapView.SetCenter(msg.Session.Center, msg.Session.Filter.RadiusM)
		m.goToPage(0)
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusTable:
			switch key {
			case "esc", "q":
				return m, func() tea.Msg { return NavigateToHome{} }
			case "n":
				return m, func() tea.Msg { return NavigateToSearch{} }
			case "left", "h", "pgup":
				if m.page.HasPrev() {
					m.goToPage(m.page.Index - 1)
				}
				return m, nil
			case "right", "l", "pgdown":
				if m.page.HasNext() {
					m.goToPage(m.page.Index + 1)
				}
				return m, nil
			case "/", "tab":
				m.focus = focusFilter
				m.filter.Focus()
				return m, textinput.Blink
			case "1":
				m.focus = focusCard
				m.table.SetStyles(unfocusedTableStyles())
				return m, nil
			case "2":
				m.focus = focusSide
				m.table.SetStyles(unfocusedTableStyles())
				return m, nil
			case "m":
				m.side = 1 - m.side
				return m, nil
			case "e":
				m.exportTo(export.FormatCSV)
				return m, nil
			case "g":
				m.exportTo(export.FormatGeoJSON)
				return m, nil
			}

		case focusFilter:
			switch key {
			case "esc", "enter", "tab":
				m.focus = focusTable
				m.filter.Blur()
				return m, nil
			}

		case focusCard, focusSide:
			lines, scroll := len(m.cardLines), &m.cardScrollY
			if m.focus == focusSide {
				lines, scroll = len(m.jsonLines), &m.jsonScrollY
			}
			maxScroll := max(lines-m.panelHeight(), 0)
			switch key {
			case "esc":
				m.focus = focusTable
				m.table.SetStyles(focusedTableStyles())
			case "up", "k":
				*scroll = max(*scroll-1, 0)
			case "down", "j":
				*scroll = min(*scroll+1, maxScroll)
			case "m":
				m.side = 1 - m.side
			case "c":
				m.copyToClipboard()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTable:
		m.table, cmd = m.table.Update(msg)
		if c := m.table.Cursor(); c != m.selected && c < len(m.page.Items) {
			m.selectRow(c)
		}
	case focusFilter:
		before := m.filter.Value()
		m.filter, cmd = m.filter.Update(msg)
		if m.filter.Value() != before {
			m.applyFilter()
		}
	}
	return m, cmd
}

// goToPage shows page index of the visible matches. The engine clips
// out-of-range pages to an empty page.
func (m *ResultsModel) goToPage(index int) {
	m.page = search.Paginate(m.visible, index, m.pageSize)
	m.pager.SetTotalPages(len(m.visible))
	m.pager.Page = max(min(index, m.pager.TotalPages-1), 0)
	m.buildTable()

	points := make([]model.Coordinate, len(m.page.Items))
	for i, it := range m.page.Items {
		points[i] = it.Listing.Position()
	}
	m.mapView.SetPoints(points)

	m.selected = -1
	if len(m.page.Items) > 0 {
		m.selectRow(0)
	} else {
		m.cacheDetailContent()
	}
}

func (m *ResultsModel) selectRow(i int) {
	m.selected = i
	m.cardScrollY = 0
	m.jsonScrollY = 0
	m.mapView.SetSelected(i)
	m.cacheDetailContent()
}

func (m *ResultsModel) applyFilter() {
	words := strings.Fields(model.NormalizeTag(m.filter.Value()))
	if len(words) == 0 {
		m.visible = m.ranked
		m.goToPage(0)
		return
	}

	m.visible = nil
	for _, it := range m.ranked {
		l := it.Listing
		haystack := model.NormalizeTag(strings.Join(append([]string{l.Title, l.Address, string(l.Seller)}, l.Features...), " "))
		if containsAll(haystack, words) {
			m.visible = append(m.visible, it)
		}
	}
	m.goToPage(0)
}

func (m *ResultsModel) cacheDetailContent() {
	if m.selected < 0 || m.selected >= len(m.page.Items) {
		m.cardLines = nil
		m.jsonLines = nil
		m.jsonRaw = ""
		return
	}

	match := m.page.Items[m.selected]
	m.cardLines = buildCardLines(match, m.page.Index*m.page.Size+m.selected+1)

	data, err := json.MarshalIndent(match, "", "  ")
	if err != nil {
		m.jsonLines = []string{"JSON error"}
		m.jsonRaw = ""
		return
	}
	m.jsonRaw = string(data)
	m.jsonLines = strings.Split(m.jsonRaw, "\n")
}

func buildCardLines(match model.Match, rank int) []string {
	l := match.Listing
	lines := []string{
		l.Title,
		fmt.Sprintf("%s / month", humanize.Comma(l.Price)),
		"",
	}

	addRow := func(label, value string) {
		if value != "" {
			lines = append(lines, fmt.Sprintf("%-10s %s", label, value))
		}
	}
	addRow("Rank:", "#"+strconv.Itoa(rank))
	addRow("Address:", l.Address)
	addRow("Distance:", formatDistance(match.DistanceM))
	addRow("Rooms:", strconv.FormatFloat(l.Rooms, 'f', -1, 64))
	addRow("Seller:", string(l.Seller))
	addRow("Features:", strings.Join(l.Features, ", "))
	addRow("Coords:", fmt.Sprintf("%.6f, %.6f", l.Lat, l.Lng))
	addRow("Link:", l.URL)
	addRow("ID:", l.ID)
	return lines
}

func (m *ResultsModel) buildTable() {
	titleW := 30
	featW := 24
	if m.width > 120 {
		extra := m.width - 120
		titleW += extra / 2
		featW += extra / 2
	}

	columns := []table.Column{
		{Title: "#", Width: 4},
		{Title: "Distance", Width: 9},
		{Title: "Price", Width: 8},
		{Title: "Rooms", Width: 5},
		{Title: "Seller", Width: 8},
		{Title: "Title", Width: titleW},
		{Title: "Features", Width: featW},
	}

	offset := m.page.Index * m.page.Size
	rows := make([]table.Row, len(m.page.Items))
	for i, it := range m.page.Items {
		l := it.Listing
		rows[i] = table.Row{
			strconv.Itoa(offset + i + 1),
			formatDistance(it.DistanceM),
			humanize.Comma(l.Price),
			strconv.FormatFloat(l.Rooms, 'f', -1, 64),
			string(l.Seller),
			truncate(l.Title, titleW),
			truncate(strings.Join(l.Features, ","), featW),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.pageSize, 3)),
	)
	if m.focus == focusTable || m.focus == focusFilter {
		t.SetStyles(focusedTableStyles())
	} else {
		t.SetStyles(unfocusedTableStyles())
	}
	m.table = t
}

func focusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Secondary)
	s.Selected = s.Selected.
		Foreground(styles.Highlight).
		Background(styles.Primary).
		Bold(true)
	return s
}

func unfocusedTableStyles() table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Muted).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Muted)
	s.Selected = s.Selected.
		Foreground(styles.Text).
		Background(styles.SelectBg).
		Bold(false)
	return s
}

func (m ResultsModel) panelHeight() int {
	return max(m.height-m.pageSize-16, 8)
}

func (m *ResultsModel) updateLayout() {
	if m.width <= 0 {
		return
	}
	sideW := (m.width-2)*3/5 - 6
	m.mapView.SetSize(max(sideW, 20), m.panelHeight())
	if m.loaded {
		m.buildTable()
	}
}

func (m ResultsModel) View() string {
	if m.err != nil {
		return styles.ErrorText.Render(fmt.Sprintf("Error loading session: %v", m.err))
	}
	if !m.loaded {
		return styles.Hint.Render("Loading session…")
	}

	var b strings.Builder

	title := fmt.Sprintf("Results: %s matches of %s candidates",
		humanize.Comma(int64(len(m.ranked))), humanize.Comma(int64(m.total)))
	b.WriteString(styles.Title.Render(title))
	if len(m.visible) != len(m.ranked) {
		b.WriteString(styles.Hint.Render(fmt.Sprintf(" (showing %d)", len(m.visible))))
	}
	b.WriteString("\n")
	b.WriteString(styles.Hint.Render(describeQuery(m.session)))
	b.WriteString("\n\n")

	if len(m.ranked) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Warning).Bold(true).
			Render("No listings match these filters."))
		b.WriteString("\n")
		b.WriteString(styles.Hint.Render("Relax them: widen the radius, raise the max price, loosen the rooms range, allow any seller or drop required features."))
		b.WriteString("\n\n")
		b.WriteString(styles.StatusBar.Render("n new search • esc back"))
		return styles.Border.Render(b.String())
	}

	filterStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	if m.focus == focusFilter {
		filterStyle = lipgloss.NewStyle().Foreground(styles.Primary)
	}
	b.WriteString(filterStyle.Render("Filter: "))
	b.WriteString(m.filter.View())
	b.WriteString("\n")

	if len(m.page.Items) == 0 {
		b.WriteString(styles.Hint.Render("Nothing on this page."))
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.renderPager())
	b.WriteString("\n\n")

	detailW := max(m.width-2, 60)
	panelH := m.panelHeight()
	cardOuterW := detailW * 2 / 5
	sideOuterW := detailW - cardOuterW - 1

	cardBox := styles.Panel(m.focus == focusCard, cardOuterW-2, panelH).
		Render(m.viewCardPanel(max(cardOuterW-4, 20), panelH))
	cardBox = panelLabel("[1] Details", m.focus == focusCard) + "\n" + cardBox

	sideLabel := "[2] Map"
	sideContent := m.mapView.View()
	if m.side == sideJSON {
		sideLabel = "[2] JSON"
		sideContent = m.viewJSONPanel(max(sideOuterW-4, 20), panelH)
	}
	sideBox := styles.Panel(m.focus == focusSide, sideOuterW-2, panelH).Render(sideContent)
	sideBox = panelLabel(sideLabel, m.focus == focusSide) + "\n" + sideBox

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cardBox, " ", sideBox))
	b.WriteString("\n")

	if m.statusMsg != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(styles.Success).Render(m.statusMsg))
		b.WriteString("\n")
	}

	var status string
	switch m.focus {
	case focusTable:
		status = "↑↓ select • ←→ page • 1 details • 2 panel • m map/json • / filter • e csv • g geojson • n new • esc back"
	case focusFilter:
		status = "type to narrow • enter/esc done"
	case focusCard:
		status = "↑↓ scroll • esc back to table"
	case focusSide:
		status = "↑↓ scroll • m map/json • c copy json • esc back to table"
	}
	b.WriteString(styles.StatusBar.Render(status))

	return b.String()
}

// renderPager shows prev/next, dimmed at the edges, around the paginator.
func (m ResultsModel) renderPager() string {
	prev := styles.ActiveItem.Render("◀ prev")
	if !m.page.HasPrev() {
		prev = styles.Disabled.Render("◀ prev")
	}
	next := styles.ActiveItem.Render("next ▶")
	if !m.page.HasNext() {
		next = styles.Disabled.Render("next ▶")
	}
	pos := "page " + m.pager.View()
	if m.page.TotalPages == 0 {
		pos = "no pages"
	}
	return prev + "  " + styles.Hint.Render(pos) + "  " + next
}

func panelLabel(text string, focused bool) string {
	color := styles.Muted
	if focused {
		color = styles.Primary
	}
	return lipgloss.NewStyle().Bold(true).Foreground(color).Render(text)
}

func (m ResultsModel) viewCardPanel(w, h int) string {
	if len(m.cardLines) == 0 {
		return styles.Hint.Render("Select a listing\nto view details")
	}

	lines := m.cardLines
	scrollY := max(min(m.cardScrollY, len(lines)-h), 0)
	end := min(scrollY+h, len(lines))

	var sb strings.Builder
	text := lipgloss.NewStyle().Foreground(styles.Text)
	label := lipgloss.NewStyle().Foreground(styles.Muted)
	for i, line := range lines[scrollY:end] {
		switch idx := scrollY + i; {
		case idx == 0:
			sb.WriteString(text.Bold(true).Render(truncate(line, w)))
		case idx == 1:
			sb.WriteString(styles.Price.Render(line))
		case strings.HasPrefix(line, "Link:"):
			sb.WriteString(label.Render(fmt.Sprintf("%-10s ", "Link:")))
			sb.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).
				Render(truncate(strings.TrimSpace(strings.TrimPrefix(line, "Link:")), w-11)))
		default:
			sb.WriteString(text.Render(truncate(line, w)))
		}
		if scrollY+i < end-1 {
			sb.WriteString("\n")
		}
	}
	if scrollY > 0 {
		sb.WriteString("\n" + label.Render("  ▲ more above"))
	}
	if end < len(lines) {
		sb.WriteString("\n" + label.Render("  ▼ more below"))
	}
	return sb.String()
}

func (m ResultsModel) viewJSONPanel(w, h int) string {
	if len(m.jsonLines) == 0 {
		return styles.Hint.Render("Select a listing\nto view JSON")
	}

	lines := m.jsonLines
	keyStyle := lipgloss.NewStyle().Foreground(styles.Secondary)
	valStyle := lipgloss.NewStyle().Foreground(styles.Success)
	plain := lipgloss.NewStyle().Foreground(styles.Muted)

	scrollY := max(min(m.jsonScrollY, len(lines)-h), 0)
	end := min(scrollY+h, len(lines))

	var sb strings.Builder
	for i, line := range lines[scrollY:end] {
		display := truncate(line, w)
		if k := strings.Index(display, "\":"); k > 0 && strings.HasPrefix(strings.TrimSpace(display), "\"") {
			sb.WriteString(keyStyle.Render(display[:k+1]))
			sb.WriteString(valStyle.Render(display[k+1:]))
		} else {
			sb.WriteString(plain.Render(display))
		}
		if scrollY+i < end-1 {
			sb.WriteString("\n")
		}
	}
	if scrollY > 0 || end < len(lines) {
		sb.WriteString("\n" + plain.Render(fmt.Sprintf("  [%d/%d]", scrollY+1, len(lines))))
	}
	return sb.String()
}

func (m *ResultsModel) copyToClipboard() {
	if m.jsonRaw == "" {
		return
	}
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(m.jsonRaw)
	if err := cmd.Run(); err != nil {
		m.statusMsg = fmt.Sprintf("Copy failed: %v", err)
		return
	}
	m.statusMsg = "JSON copied to clipboard"
}

// exportTo writes every visible match, in rank order, next to the session db.
func (m *ResultsModel) exportTo(format string) {
	path := storage.SiblingPath(m.dbPath, "."+format)
	if err := export.ToFile(path, format, m.session.Center, m.session.Filter.RadiusM, m.visible); err != nil {
		m.statusMsg = fmt.Sprintf("Export error: %v", err)
		return
	}
	m.statusMsg = fmt.Sprintf("Exported %d listings to %s", len(m.visible), path)
}

func describeQuery(s search.Session) string {
	f := s.Filter
	parts := []string{}
	if s.Address != "" {
		parts = append(parts, s.Address)
	}
	parts = append(parts, fmt.Sprintf("%.4f,%.4f", s.Center.Lat, s.Center.Lng))
	parts = append(parts, "r="+formatDistance(f.RadiusM))
	if f.MaxPrice != nil {
		parts = append(parts, "≤"+humanize.Comma(*f.MaxPrice))
	}
	if f.MinRooms != nil || f.MaxRooms != nil {
		lo, hi := "", ""
		if f.MinRooms != nil {
			lo = strconv.FormatFloat(*f.MinRooms, 'f', -1, 64)
		}
		if f.MaxRooms != nil {
			hi = strconv.FormatFloat(*f.MaxRooms, 'f', -1, 64)
		}
		parts = append(parts, "rooms "+lo+"–"+hi)
	}
	if f.Seller != "" && f.Seller != model.SellerAny {
		parts = append(parts, string(f.Seller))
	}
	if len(f.RequiredFeatures) > 0 {
		parts = append(parts, "+"+strings.Join(f.RequiredFeatures, " +"))
	}
	return strings.Join(parts, " · ")
}

func formatDistance(m float64) string {
	if m >= 1000 {
		return fmt.Sprintf("%.2f km", m/1000)
	}
	return fmt.Sprintf("%.0f m", m)
}

func containsAll(haystack string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(haystack, w) {
			return false
		}
	}
	return true
}

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
