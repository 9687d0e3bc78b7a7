// Package render decodes frames into the strip buffer and submits it.
package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
	"github.com/coreman2200/arcaluminis-brx/internal/layout"
	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// ErrBackendFailure wraps any error returned by the strip backend.
var ErrBackendFailure = errors.New("render: backend failure")

// Pipeline owns the strip buffer. It is not safe for concurrent use: one
// Render or Clear runs to completion before the next starts.
type Pipeline struct {
	Topo layout.Topology
	Drv  strip.Backend

	W, H int
	Buf  []strip.Color

	// submitted buffers
	Frames uint64

	// metrics (last durations in ms)
	Last struct {
		DecodeMS float64
		SubmitMS float64
		TotalMS  float64
	}
}

// New allocates the buffer for a w x h matrix. The topology must cover
// exactly w*h LEDs.
func New(w, h int, topo layout.Topology, drv strip.Backend) (*Pipeline, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", w, h)
	}
	if topo.Count() != w*h {
		return nil, fmt.Errorf("topology covers %d LEDs, matrix has %d", topo.Count(), w*h)
	}
	if drv == nil {
		return nil, errors.New("nil backend")
	}
	return &Pipeline{
		Topo: topo,
		Drv:  drv,
		W:    w,
		H:    h,
		Buf:  make([]strip.Color, w*h),
	}, nil
}

// Render decodes every matrix coordinate from f and submits the buffer once.
// A frame that fails validation is rejected before the buffer is touched.
func (p *Pipeline) Render(f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return err
	}
	start := time.Now()
	for y := 0; y < p.H; y++ {
		for x := 0; x < p.W; x++ {
			p.Buf[p.Topo.Index(x, y)] = f.PixelColor(x, y)
		}
	}
	p.Last.DecodeMS = float64(time.Since(start).Microseconds()) / 1000.0
	return p.submit(start)
}

// Clear blanks every LED and submits the buffer once.
func (p *Pipeline) Clear() error {
	start := time.Now()
	for i := range p.Buf {
		p.Buf[i] = strip.Off
	}
	p.Last.DecodeMS = 0
	return p.submit(start)
}

// Snapshot returns a copy of the buffer as last written.
func (p *Pipeline) Snapshot() []strip.Color {
	return append([]strip.Color(nil), p.Buf...)
}

func (p *Pipeline) submit(start time.Time) error {
	submitStart := time.Now()
	if err := p.Drv.Write(p.Buf); err != nil {
		return fmt.Errorf("%w: %w", ErrBackendFailure, err)
	}
	p.Frames++
	p.Last.SubmitMS = float64(time.Since(submitStart).Microseconds()) / 1000.0
	p.Last.TotalMS = float64(time.Since(start).Microseconds()) / 1000.0
	return nil
}
