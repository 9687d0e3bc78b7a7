// Package layout maps logical matrix coordinates onto positions in the
// physical strip.
package layout

import "fmt"

// Topology resolves (x, y) to a strip index. Implementations must be a
// bijection between [0,W)x[0,H) and [0,Count).
type Topology interface {
	Index(x, y int) int
	Count() int
}

type Dim struct{ X, Y int }

type Serpentine struct {
	// FlipEveryRow reverses odd rows, for strips that zig-zag back.
	FlipEveryRow bool
}

type Layout struct {
	Dim   Dim
	Order Serpentine
}

// RowMajor is a single contiguous strip read left to right, top to bottom.
func RowMajor(w, h int) Layout {
	return Layout{Dim: Dim{X: w, Y: h}}
}

// Parse builds a layout from a wiring name ("rowmajor" or "serpentine").
func Parse(wiring string, w, h int) (Layout, error) {
	l := RowMajor(w, h)
	switch wiring {
	case "", "rowmajor":
	case "serpentine":
		l.Order.FlipEveryRow = true
	default:
		return Layout{}, fmt.Errorf("unknown wiring %q", wiring)
	}
	return l, nil
}

// Index maps x,y -> linear LED index (0..N-1). Callers only pass
// coordinates inside Dim.
func (l Layout) Index(x, y int) int {
	xx := x
	if l.Order.FlipEveryRow && y%2 == 1 {
		xx = l.Dim.X - 1 - x
	}
	return y*l.Dim.X + xx
}

func (l Layout) Count() int {
	return l.Dim.X * l.Dim.Y
}
