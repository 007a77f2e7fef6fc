package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"github.com/rendis/rentscout/internal/engine/geo"
	"github.com/rendis/rentscout/internal/model"
	"github.com/rendis/rentscout/internal/tui/styles"
)

// Cell layers, in drawing priority order (higher wins).
const (
	layerNone = iota
	layerRadius
	layerListing
	layerCenter
	layerSelected
)

// MapView plots listings around a search center with Braille characters,
// with the search radius drawn as a circle.
type MapView struct {
	width    int
	height   int
	center   model.Coordinate
	radiusM  float64
	points   []model.Coordinate
	selected int // index into points, -1 if none
	bound    orb.Bound
}

func NewMapView(width, height int) MapView {
	return MapView{width: width, height: height, selected: -1}
}

func (m *MapView) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetCenter fixes the viewport to the square around center that contains
// the radius circle plus a margin.
func (m *MapView) SetCenter(center model.Coordinate, radiusM float64) {
	m.center = center
	m.radiusM = radiusM
	m.bound = geo.BoundAround(center, math.Max(radiusM, 50)*1.15)
}

func (m *MapView) SetPoints(points []model.Coordinate) {
	m.points = points
	if m.selected >= len(points) {
		m.selected = -1
	}
}

func (m *MapView) SetSelected(idx int) {
	m.selected = idx
}

// Braille cells are 2x4 dot grids; bit i raises dot i.
// Dot positions:  0 3
//
//	1 4
//	2 5
//	6 7
var (
	brailleDots  = [8]rune{0x01, 0x02, 0x04, 0x08, 0x10, 0x20, 0x40, 0x80}
	dotPositions = [8][2]int{
		{0, 0}, {1, 0}, {2, 0}, {0, 1},
		{1, 1}, {2, 1}, {3, 0}, {3, 1},
	}
)

func (m MapView) View() string {
	minLng, maxLat := m.bound.Min.Lon(), m.bound.Max.Lat()
	lngRange := m.bound.Max.Lon() - minLng
	latRange := maxLat - m.bound.Min.Lat()
	if m.width <= 0 || m.height <= 0 || !(lngRange > 0) || !(latRange > 0) {
		return ""
	}

	dotW, dotH := m.width*2, m.height*4
	grid := make([][]uint8, dotH)
	for i := range grid {
		grid[i] = make([]uint8, dotW)
	}

	// A terminal cell is about twice as tall as wide, so a 2x4 dot cell is
	// square on screen. Fit the (square) bound into the largest centered
	// square of dots.
	side := min(dotW, dotH)
	offX, offY := (dotW-side)/2, (dotH-side)/2

	toDot := func(c model.Coordinate) (int, int, bool) {
		x := offX + int((c.Lng-minLng)/lngRange*float64(side-1))
		y := offY + int((maxLat-c.Lat)/latRange*float64(side-1))
		return x, y, x >= 0 && x < dotW && y >= 0 && y < dotH
	}
	plot := func(c model.Coordinate, layer uint8) {
		if x, y, ok := toDot(c); ok && grid[y][x] < layer {
			grid[y][x] = layer
		}
	}

	// Radius circle
	if m.radiusM > 0 {
		const steps = 72
		prev := geo.Destination(m.center, 0, m.radiusM)
		for i := 1; i <= steps; i++ {
			next := geo.Destination(m.center, float64(i)*360/steps, m.radiusM)
			x0, y0, _ := toDot(prev)
			x1, y1, _ := toDot(next)
			drawLine(grid, x0, y0, x1, y1, layerRadius)
			prev = next
		}
	}

	for i, p := range m.points {
		layer := uint8(layerListing)
		if i == m.selected {
			layer = layerSelected
		}
		plot(p, layer)
	}
	plot(m.center, layerCenter)

	layerStyles := map[uint8]lipgloss.Style{
		layerRadius:   lipgloss.NewStyle().Foreground(styles.Muted),
		layerListing:  lipgloss.NewStyle().Foreground(styles.Success),
		layerCenter:   lipgloss.NewStyle().Foreground(styles.Primary).Bold(true),
		layerSelected: lipgloss.NewStyle().Foreground(styles.Secondary).Bold(true),
	}

	var sb strings.Builder
	for row := 0; row < m.height; row++ {
		for col := 0; col < m.width; col++ {
			var bits rune
			var top uint8
			for dot := 0; dot < 8; dot++ {
				l := grid[row*4+dotPositions[dot][0]][col*2+dotPositions[dot][1]]
				if l == layerNone {
					continue
				}
				bits |= brailleDots[dot]
				top = max(top, l)
			}
			if bits == 0 {
				sb.WriteRune(' ')
				continue
			}
			sb.WriteString(layerStyles[top].Render(string(0x2800 + bits)))
		}
		if row < m.height-1 {
			sb.WriteRune('\n')
		}
	}
	return sb.String()
}

// drawLine rasterizes a segment with Bresenham's algorithm without
// overwriting higher layers.
func drawLine(grid [][]uint8, x0, y0, x1, y1 int, layer uint8) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 >= x1 {
		sx = -1
	}
	if y0 >= y1 {
		sy = -1
	}
	err := dx + dy

	for {
		if y0 >= 0 && y0 < len(grid) && x0 >= 0 && x0 < len(grid[y0]) && grid[y0][x0] < layer {
			grid[y0][x0] = layer
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
