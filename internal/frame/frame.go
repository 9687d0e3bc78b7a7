// Package frame holds one received image update and decodes its samples into
// native strip colors.
package frame

import (
	"errors"
	"fmt"

	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// Supported channel layouts.
const (
	Gray = 1 // one intensity sample per pixel
	RGB  = 3 // interleaved R, G, B per pixel
)

var (
	ErrShortPacket       = errors.New("frame: packet shorter than header")
	ErrBadMagic          = errors.New("frame: not an mcu frame")
	ErrInvalidHeader     = errors.New("frame: zero width, height or maxval")
	ErrShortFrame        = errors.New("frame: fewer samples than header announces")
	ErrUnsupportedFormat = errors.New("frame: unsupported channel count")
)

// Frame is one image update. It is not modified after it has been built.
type Frame struct {
	Width    int
	Height   int
	Channels int
	MaxValue int
	Samples  []byte
}

// Validate reports whether every pixel of f can be decoded.
func (f *Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 || f.MaxValue <= 0 {
		return fmt.Errorf("%w: %dx%d maxval %d", ErrInvalidHeader, f.Width, f.Height, f.MaxValue)
	}
	if f.Channels != Gray && f.Channels != RGB {
		return fmt.Errorf("%w: %d", ErrUnsupportedFormat, f.Channels)
	}
	if need := f.Width * f.Height * f.Channels; len(f.Samples) < need {
		return fmt.Errorf("%w: have %d, want %d", ErrShortFrame, len(f.Samples), need)
	}
	return nil
}

// PixelColor returns the color at (x, y) in native strip order. Coordinates
// outside the frame, and unknown channel layouts, yield strip.Off.
func (f *Frame) PixelColor(x, y int) strip.Color {
	if x < 0 || y < 0 || x >= f.Width || y >= f.Height {
		return strip.Off
	}
	switch f.Channels {
	case Gray:
		i := y*f.Width + x
		if i >= len(f.Samples) {
			return strip.Off
		}
		return strip.Gray(f.scale(f.Samples[i]))
	case RGB:
		i := (y*f.Width + x) * 3
		if i+2 >= len(f.Samples) {
			return strip.Off
		}
		return strip.RGB(f.scale(f.Samples[i]), f.scale(f.Samples[i+1]), f.scale(f.Samples[i+2]))
	}
	return strip.Off
}

// scale maps a sample in [0, MaxValue] onto [0, 255] with integer math,
// clamping samples above MaxValue.
func (f *Frame) scale(v byte) uint8 {
	if f.MaxValue <= 0 {
		return 0
	}
	s := int(v) * 255 / f.MaxValue
	if s > 255 {
		s = 255
	}
	return uint8(s)
}
