package views

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/engine/search"
	"github.com/rendis/rentscout/internal/model"
	"github.com/rendis/rentscout/internal/tui/styles"
)

type searchMode int

const (
	modeAddress searchMode = iota
	modeCoords
)

// Field indices. fieldMode and fieldSeller are toggles, not text inputs.
const (
	fieldMode = iota
	fieldAddress
	fieldLat
	fieldLng
	fieldRadius
	fieldMaxPrice
	fieldMinRooms
	fieldMaxRooms
	fieldSeller
	fieldFeatures
	fieldPageSize
	fieldCount
)

var sellerChoices = []model.SellerFilter{model.SellerAny, model.SellerPrivateOnly, model.SellerBrokerOnly}

// SearchModel is the filter form.
type SearchModel struct {
	inputs      []textinput.Model
	mode        searchMode
	seller      int // index into sellerChoices
	focused     int
	err         string
	addresses   []string
	suggestions []string
	suggIdx     int
}

func NewSearchModel(defaultRadiusM float64, defaultPageSize int) SearchModel {
	inputs := make([]textinput.Model, fieldCount)

	inputs[fieldMode] = textinput.New() // placeholder, never used
	inputs[fieldAddress] = newInput("Dizengoff 100, Tel Aviv", "", 50)
	inputs[fieldLat] = newInput("32.0809", "", 15)
	inputs[fieldLng] = newInput("34.7806", "", 15)
	inputs[fieldRadius] = newInput("1000", strconv.FormatFloat(defaultRadiusM, 'f', -1, 64), 10)
	inputs[fieldMaxPrice] = newInput("no limit", "", 10)
	inputs[fieldMinRooms] = newInput("any", "", 6)
	inputs[fieldMaxRooms] = newInput("any", "", 6)
	inputs[fieldSeller] = textinput.New() // placeholder, never used
	inputs[fieldFeatures] = newInput("parking, elevator", "", 40)
	inputs[fieldPageSize] = newInput("10", strconv.Itoa(defaultPageSize), 5)

	addresses := make([]string, 0, len(geo.KnownAddresses))
	for addr := range geo.KnownAddresses {
		addresses = append(addresses, addr)
	}
	slices.Sort(addresses)

	m := SearchModel{
		inputs:    inputs,
		mode:      modeAddress,
		focused:   fieldAddress,
		addresses: addresses,
		suggIdx:   -1,
	}
	m.inputs[fieldAddress].Focus()
	return m
}

func newInput(placeholder, value string, width int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 100
	if width > 0 {
		ti.Width = width
	}
	if value != "" {
		ti.SetValue(value)
	}
	return ti
}

func (m SearchModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SearchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return NavigateToHome{} }

		case "up":
			if m.focused == fieldAddress && len(m.suggestions) > 0 && m.suggIdx > 0 {
				m.suggIdx--
				return m, nil
			}
			m.err = ""
			return m, m.focusStep(-1)

		case "down":
			if m.focused == fieldAddress && len(m.suggestions) > 0 && m.suggIdx < len(m.suggestions)-1 {
				m.suggIdx++
				return m, nil
			}
			m.err = ""
			return m, m.focusStep(1)

		case "tab":
			m.err = ""
			if m.focused == fieldAddress && len(m.suggestions) > 0 {
				m.selectSuggestion()
			}
			return m, m.focusStep(1)

		case "shift+tab":
			m.err = ""
			return m, m.focusStep(-1)

		case "enter":
			if m.focused == fieldAddress && len(m.suggestions) > 0 {
				m.selectSuggestion()
				return m, m.focusStep(1)
			}
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}
			return m, nil

		case "left", "right":
			dir := 1
			if msg.String() == "left" {
				dir = -1
			}
			switch m.focused {
			case fieldMode:
				m.mode = searchMode((int(m.mode) + 2 + dir) % 2)
				return m, nil
			case fieldSeller:
				n := len(sellerChoices)
				m.seller = (m.seller + n + dir) % n
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.isTextField(m.focused) {
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
	}
	if m.focused == fieldAddress {
		m.updateSuggestions()
	}
	return m, cmd
}

func (m SearchModel) isTextField(idx int) bool {
	return idx != fieldMode && idx != fieldSeller && idx >= 0 && idx < fieldCount
}

func (m *SearchModel) selectSuggestion() {
	if m.suggIdx >= 0 && m.suggIdx < len(m.suggestions) {
		m.inputs[fieldAddress].SetValue(m.suggestions[m.suggIdx])
		m.suggestions = nil
		m.suggIdx = -1
	}
}

// updateSuggestions offers known addresses containing every typed word,
// ignoring case and diacritics.
func (m *SearchModel) updateSuggestions() {
	words := strings.Fields(model.NormalizeTag(m.inputs[fieldAddress].Value()))
	if len(words) == 0 {
		m.suggestions = nil
		m.suggIdx = -1
		return
	}

	var matches []string
	for _, addr := range m.addresses {
		if containsAll(model.NormalizeTag(addr), words) && geo.CacheKey(addr) != geo.CacheKey(m.inputs[fieldAddress].Value()) {
			matches = append(matches, addr)
			if len(matches) >= 5 {
				break
			}
		}
	}
	m.suggestions = matches
	switch {
	case len(matches) == 0:
		m.suggIdx = -1
	case m.suggIdx < 0 || m.suggIdx >= len(matches):
		m.suggIdx = 0
	}
}

// focusStep moves focus dir fields forward or back, skipping fields hidden by
// the current mode and wrapping around.
func (m *SearchModel) focusStep(dir int) tea.Cmd {
	if m.isTextField(m.focused) {
		m.inputs[m.focused].Blur()
	}
	for {
		m.focused = (m.focused + dir + fieldCount) % fieldCount
		if !m.hidden(m.focused) {
			break
		}
	}
	if !m.isTextField(m.focused) {
		return nil
	}
	m.inputs[m.focused].Focus()
	return textinput.Blink
}

func (m *SearchModel) hidden(idx int) bool {
	if m.mode == modeAddress {
		return idx == fieldLat || idx == fieldLng
	}
	return idx == fieldAddress
}

// submit parses the form into a query. Validation errors stay on the form.
func (m *SearchModel) submit() tea.Cmd {
	q, problem := m.query()
	if problem != "" {
		m.err = problem
		return nil
	}
	return func() tea.Msg { return StartSearchMsg{Query: q} }
}

// query returns the parsed query, or a message describing the first problem.
func (m *SearchModel) query() (search.Query, string) {
	var q search.Query
	val := func(idx int) string { return strings.TrimSpace(m.inputs[idx].Value()) }

	if m.mode == modeAddress {
		q.Address = val(fieldAddress)
		if q.Address == "" {
			return q, "Address is required"
		}
	} else {
		lat, err := strconv.ParseFloat(val(fieldLat), 64)
		if err != nil {
			return q, "Latitude must be a number"
		}
		lng, err := strconv.ParseFloat(val(fieldLng), 64)
		if err != nil {
			return q, "Longitude must be a number"
		}
		q.Center = &model.Coordinate{Lat: lat, Lng: lng}
		q.Filter.Center = *q.Center
	}

	radius, err := strconv.ParseFloat(val(fieldRadius), 64)
	if err != nil {
		return q, "Radius must be a number of meters"
	}
	q.Filter.RadiusM = radius

	if s := val(fieldMaxPrice); s != "" {
		v, err := strconv.ParseInt(strings.ReplaceAll(s, ",", ""), 10, 64)
		if err != nil {
			return q, "Max price must be a whole number"
		}
		q.Filter.MaxPrice = &v
	}
	for _, f := range []struct {
		idx  int
		name string
		dst  **float64
	}{
		{fieldMinRooms, "Min rooms", &q.Filter.MinRooms},
		{fieldMaxRooms, "Max rooms", &q.Filter.MaxRooms},
	} {
		s := val(f.idx)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return q, f.name + " must be a number (e.g. 2.5)"
		}
		*f.dst = &v
	}

	q.Filter.Seller = sellerChoices[m.seller]
	q.Filter.RequiredFeatures = model.ParseFeatures(val(fieldFeatures))

	q.PageSize = search.DefaultPageSize
	if s := val(fieldPageSize); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size < 1 {
			return q, "Page size must be a positive number"
		}
		q.PageSize = size
	}

	if err := q.Filter.Validate(); err != nil {
		return q, err.Error()
	}
	return q, ""
}

func (m SearchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("New Search") + "\n\n")

	b.WriteString(m.renderToggle("Search by:", fieldMode, int(m.mode), []string{"Address", "Coordinates"}))
	if m.mode == modeAddress {
		b.WriteString(m.renderField("Address:", fieldAddress))
		if m.focused == fieldAddress && len(m.suggestions) > 0 {
			b.WriteString(m.renderSuggestions())
		}
	} else {
		b.WriteString(m.renderField("Latitude:", fieldLat))
		b.WriteString(m.renderField("Longitude:", fieldLng))
	}
	b.WriteString(m.renderField("Radius (m):", fieldRadius))

	b.WriteString("\n")
	b.WriteString(m.renderField("Max price:", fieldMaxPrice))
	b.WriteString(m.renderField("Min rooms:", fieldMinRooms))
	b.WriteString(m.renderField("Max rooms:", fieldMaxRooms))
	b.WriteString(m.renderToggle("Seller:", fieldSeller, m.seller, []string{"Any", "Private", "Broker"}))
	b.WriteString(m.renderField("Features:", fieldFeatures))
	if m.focused == fieldFeatures {
		b.WriteString(styles.Hint.Render("  comma-separated; every tag must be present") + "\n")
	}
	b.WriteString(m.renderField("Page size:", fieldPageSize))

	if m.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorText.Render("  " + m.err))
	}

	b.WriteString("\n\n")
	b.WriteString(styles.StatusBar.Render("enter search • tab next • ←→ toggle • esc back"))

	return styles.Border.Render(b.String())
}

func (m SearchModel) renderSuggestions() string {
	var sb strings.Builder
	for i, addr := range m.suggestions {
		if i == m.suggIdx {
			sb.WriteString(styles.ActiveItem.Render("  > " + addr))
		} else {
			sb.WriteString(styles.InactiveItem.Render("    " + addr))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m SearchModel) renderToggle(label string, field, current int, options []string) string {
	active := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	inactive := lipgloss.NewStyle().Foreground(styles.Muted)

	parts := make([]string, len(options))
	for i, opt := range options {
		if i == current {
			parts[i] = active.Render("< " + opt + " >")
		} else {
			parts[i] = inactive.Render(opt)
		}
	}

	line := styles.Label.Render(label) + "  " + strings.Join(parts, "   ")
	if m.focused == field {
		line += lipgloss.NewStyle().Foreground(styles.Secondary).Render(" ←→")
	}
	return line + "\n"
}

func (m SearchModel) renderField(label string, idx int) string {
	return fmt.Sprintf("%s %s\n", styles.Label.Render(label), m.inputs[idx].View())
}

// StartSearchMsg asks the app to run a search.
type StartSearchMsg struct {
	Query search.Query
}
