// SPDX-License-Identifier: MIT
package transport

import (
	"equalizer/internal/log"
	"equalizer/internal/playback"
)

// Surface turns plot operations into PlotMessages so a remote client can
// replay them. Send errors are logged and dropped; a slow or absent client
// never stalls playback.
type Surface struct {
	name string
	t    Transport
}

var _ playback.Surface = (*Surface)(nil)

// NewSurface returns a Surface publishing operations for the plot called name.
func NewSurface(name string, t Transport) *Surface {
	return &Surface{name: name, t: t}
}

func (s *Surface) send(m PlotMessage) {
	m.Type = TypePlot
	m.Plot = s.name
	if err := s.t.Send(m); err != nil {
		log.Debugf("Surface %s: dropping %s: %v", s.name, m.Op, err)
	}
}

func (s *Surface) SetLimits(xMin, xMax float64) {
	s.send(PlotMessage{Op: OpSetLimits, Lo: finite(xMin), Hi: finite(xMax)})
}

func (s *Surface) Plot(xs, ys []float64) {
	s.send(PlotMessage{Op: OpPlot, Xs: xs, Ys: ys})
}

func (s *Surface) SetData(xs, ys []float64) {
	s.send(PlotMessage{Op: OpSetData, Xs: xs, Ys: ys})
}

func (s *Surface) SetXRange(lo, hi float64) {
	s.send(PlotMessage{Op: OpSetXRange, Lo: finite(lo), Hi: finite(hi)})
}

func (s *Surface) ScaleBy(sx, sy float64) {
	s.send(PlotMessage{Op: OpScaleBy, Lo: finite(sx), Hi: finite(sy)})
}

func (s *Surface) Clear() {
	s.send(PlotMessage{Op: OpClear})
}
