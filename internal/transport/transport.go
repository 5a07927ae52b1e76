// SPDX-License-Identifier: MIT
package transport

import (
	"errors"
	"math"
)

var (
	// ErrClosed is returned by Send after Close.
	ErrClosed = errors.New("transport closed")
	// ErrQueueFull is returned when a message that must be delivered could
	// not be queued in time.
	ErrQueueFull = errors.New("transport queue full")
)

// Transport defines a generic interface for publishing plot updates and
// analysis results. Implementations must be safe for concurrent use.
type Transport interface {
	Send(data any) error
	Close() error
}

// Message types carried in the "type" field.
const (
	TypeSpectrum = "spectrum"
	TypePlot     = "plot"
)

// SpectrumMessage carries a one-sided amplitude spectrum.
type SpectrumMessage struct {
	Type        string    `json:"type"`
	Frequencies []float64 `json:"frequencies"`
	Magnitudes  []float64 `json:"magnitudes"`
}

// NewSpectrumMessage builds a spectrum message. The slices are not copied.
func NewSpectrumMessage(freqs, mags []float64) SpectrumMessage {
	return SpectrumMessage{Type: TypeSpectrum, Frequencies: freqs, Magnitudes: mags}
}

// Plot operations carried in PlotMessage.Op.
const (
	OpSetLimits = "setLimits"
	OpPlot      = "plot"
	OpSetData   = "setData"
	OpSetXRange = "setXRange"
	OpScaleBy   = "scaleBy"
	OpClear     = "clear"
)

// Supersedable reports whether data is a plot update that a later tick
// replaces, so losing it leaves no lasting difference on the client.
func Supersedable(data any) bool {
	m, ok := data.(PlotMessage)
	return ok && (m.Op == OpSetData || m.Op == OpSetXRange)
}

// PlotMessage is one operation on a named plot. Infinite bounds are sent as
// null since JSON has no representation for them.
type PlotMessage struct {
	Type string    `json:"type"`
	Plot string    `json:"plot"`
	Op   string    `json:"op"`
	Xs   []float64 `json:"xs,omitempty"`
	Ys   []float64 `json:"ys,omitempty"`
	Lo   *float64  `json:"lo,omitempty"`
	Hi   *float64  `json:"hi,omitempty"`
}

// finite returns nil for ±Inf and NaN.
func finite(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

// Multi fans every message out to all transports. Send and Close visit every
// transport and return the joined errors.
type Multi []Transport

func (m Multi) Send(data any) error {
	var errs []error
	for _, t := range m {
		if err := t.Send(data); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, t := range m {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Transport = Multi(nil)
