// Package power switches the strip supply through a GPIO line while the
// strip backend is held.
package power

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// Line is the part of *gpiocdev.Line the gate needs.
type Line interface {
	SetValue(value int) error
	Close() error
}

// RequestLine requests offset on chip as an output, initially low.
func RequestLine(chip string, offset int) (Line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("brx"))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return l, nil
}

// Gated wraps a backend so the supply is on while it is open. Close turns
// the supply off after the backend has been finalized.
type Gated struct {
	strip.Backend

	mu   sync.Mutex
	line Line
}

// Gate drives line high and returns the wrapped backend. On failure the
// line is released but b is left open for the caller.
func Gate(b strip.Backend, line Line) (*Gated, error) {
	if err := line.SetValue(1); err != nil {
		_ = line.Close()
		return nil, fmt.Errorf("power on: %w", err)
	}
	return &Gated{Backend: b, line: line}, nil
}

func (g *Gated) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := g.Backend.Close()
	if g.line == nil {
		return err
	}
	if perr := g.line.SetValue(0); err == nil && perr != nil {
		err = fmt.Errorf("power off: %w", perr)
	}
	if cerr := g.line.Close(); err == nil {
		err = cerr
	}
	g.line = nil
	return err
}
