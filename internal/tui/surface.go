// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"
	"sync"

	"equalizer/internal/playback"

	"github.com/charmbracelet/lipgloss"
)

// Surface is a playback.Surface drawn as a character grid. Plot calls only
// record state; Render rasterizes it at the size the terminal allows.
type Surface struct {
	mu sync.Mutex

	title      string
	style      lipgloss.Style
	xs, ys     []float64
	xMin, xMax float64 // Limits the viewport is clamped to.
	lo, hi     float64 // Requested viewport; NaN until set.
	zoom       float64
}

var _ playback.Surface = (*Surface)(nil)

// NewSurface returns an empty surface drawn in color.
func NewSurface(title string, color lipgloss.Color) *Surface {
	return &Surface{
		title: title,
		style: lipgloss.NewStyle().Foreground(color),
		xMin:  math.Inf(-1),
		xMax:  math.Inf(1),
		lo:    math.NaN(),
		hi:    math.NaN(),
		zoom:  1,
	}
}

func (s *Surface) SetLimits(xMin, xMax float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xMin, s.xMax = xMin, xMax
}

func (s *Surface) Plot(xs, ys []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xs, s.ys = xs, ys
	s.lo, s.hi = math.NaN(), math.NaN()
}

func (s *Surface) SetData(xs, ys []float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xs, s.ys = xs, ys
}

func (s *Surface) SetXRange(lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lo, s.hi = lo, hi
}

// ScaleBy zooms the x axis. The factor persists across SetXRange calls.
func (s *Surface) ScaleBy(sx, _ float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sx > 0 {
		s.zoom *= sx
	}
}

func (s *Surface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xs, s.ys = nil, nil
}

// Points returns the number of points currently plotted.
func (s *Surface) Points() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.xs)
}

// XRange returns the viewport Render would use.
func (s *Surface) XRange() (lo, hi float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport()
}

// viewport applies zoom around the requested range's centre and clamps to
// the limits. Without a requested range it spans the data. Caller holds s.mu.
func (s *Surface) viewport() (lo, hi float64) {
	lo, hi = s.lo, s.hi
	if math.IsNaN(lo) || math.IsNaN(hi) {
		if len(s.xs) == 0 {
			return 0, 1
		}
		lo, hi = s.xs[0], s.xs[len(s.xs)-1]
	}
	if hi <= lo {
		hi = lo + 1
	}
	centre, half := (lo+hi)/2, (hi-lo)/2*s.zoom
	lo, hi = centre-half, centre+half
	if lo < s.xMin {
		hi += s.xMin - lo
		lo = s.xMin
	}
	if hi > s.xMax {
		hi = s.xMax
	}
	return lo, hi
}

// Render draws the plot into a width x height grid of runes under a title
// line. Each column shows the point of largest magnitude that falls in it.
func (s *Surface) Render(width, height int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	width, height = max(width, 8), max(height, 2)
	lo, hi := s.viewport()

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, y := range s.ys {
		yMin, yMax = math.Min(yMin, y), math.Max(yMax, y)
	}
	if math.IsInf(yMin, 0) {
		yMin, yMax = -1, 1
	}
	if yMax == yMin {
		yMin, yMax = yMin-1, yMax+1
	}

	cols := make([]float64, width)
	set := make([]bool, width)
	for i, x := range s.xs {
		if x < lo || x > hi || i >= len(s.ys) {
			continue
		}
		c := min(int((x-lo)/(hi-lo)*float64(width)), width-1)
		if !set[c] || math.Abs(s.ys[i]) > math.Abs(cols[c]) {
			cols[c], set[c] = s.ys[i], true
		}
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	for c := range cols {
		if !set[c] {
			continue
		}
		r := height - 1 - int((cols[c]-yMin)/(yMax-yMin)*float64(height-1)+0.5)
		grid[r][c] = '•'
	}

	var sb strings.Builder
	sb.WriteString(s.title)
	sb.WriteByte('\n')
	for r, row := range grid {
		sb.WriteString(s.style.Render(string(row)))
		if r < len(grid)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
