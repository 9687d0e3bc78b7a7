package strip

import "image/color"

// Channel offsets inside a packed Color. The strip expects green first.
const (
	GreenOffset uint8 = 0x10
	RedOffset   uint8 = 0x08
	BlueOffset  uint8 = 0x00
)

// Off is the background color.
const Off Color = 0

// Color is one LED value packed in the strip's native order: 0x00GGRRBB.
type Color uint32

// RGB packs r, g, b into native strip order.
func RGB(r, g, b uint8) Color {
	var c Color
	c = setcolor(c, g, GreenOffset)
	c = setcolor(c, r, RedOffset)
	c = setcolor(c, b, BlueOffset)
	return c
}

// Gray broadcasts one intensity to all three channels.
func Gray(v uint8) Color { return RGB(v, v, v) }

func (c Color) R() uint8 { return getcolor(c, RedOffset) }
func (c Color) G() uint8 { return getcolor(c, GreenOffset) }
func (c Color) B() uint8 { return getcolor(c, BlueOffset) }

// NRGBA converts to an opaque image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: 255}
}

func setcolor(c Color, n uint8, off uint8) Color {
	val := Color(n) << off
	mask := Color(0xFF) << off
	return (c &^ mask) | val
}

func getcolor(c Color, off uint8) uint8 {
	return uint8((c >> off) & 0xFF)
}
