package strip

import (
	"sync"

	"github.com/rs/zerolog"
)

// Sim logs a compact summary of every buffer instead of driving LEDs. Useful
// for headless runs.
type Sim struct {
	mu     sync.Mutex
	log    zerolog.Logger
	count  int
	frames int
	last   []Color
	closed bool
}

func NewSim(count int, log zerolog.Logger) *Sim {
	return &Sim{log: log, count: count, last: make([]Color, count)}
}

func (s *Sim) Write(leds []Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if err := checkLen(leds, s.count); err != nil {
		return err
	}
	copy(s.last, leds)
	s.frames++

	var r, g, b float64
	lit := 0
	for _, c := range leds {
		r += float64(c.R())
		g += float64(c.G())
		b += float64(c.B())
		if c != Off {
			lit++
		}
	}
	n := float64(max(1, len(leds)))
	s.log.Debug().
		Int("frame", s.frames).
		Int("lit", lit).
		Floats64("avg_rgb", []float64{r / n, g / n, b / n}).
		Msg("sim frame")
	return nil
}

// Frames returns how many buffers were written.
func (s *Sim) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Last returns a copy of the most recent buffer.
func (s *Sim) Last() []Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Color(nil), s.last...)
}

func (s *Sim) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
