// Package source builds frames from images, SVG artwork and generated
// patterns. It feeds the brxsend test sender.
package source

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/effect"
	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
)

// Load decodes an image file. SVG files are rasterized at w x h; anything
// else is decoded at its own size.
func Load(path string, w, h int) (image.Image, error) {
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open svg: %w", err)
		}
		defer f.Close()
		return LoadSVG(f, w, h)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return img, nil
}

// LoadSVG rasterizes an SVG document into a w x h RGBA image.
func LoadSVG(r io.Reader, w, h int) (image.Image, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid svg target %dx%d", w, h)
	}
	icon, err := oksvg.ReadIconStream(r)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return img, nil
}

// FromImage scales img to w x h over a black background and samples it into
// a frame with the given channel count and maxval.
func FromImage(img image.Image, w, h, channels, maxval int) (*frame.Frame, error) {
	f, err := blank(w, h, channels, maxval)
	if err != nil {
		return nil, err
	}
	fit := imaging.Resize(img, w, h, imaging.Box)
	flat := imaging.Overlay(imaging.New(w, h, color.Black), fit, image.Point{}, 1.0)

	switch channels {
	case frame.Gray:
		g := effect.Grayscale(flat)
		for i := 0; i < w*h; i++ {
			f.Samples[i] = down(g.Pix[i*4], maxval)
		}
	case frame.RGB:
		for i := 0; i < w*h; i++ {
			p := flat.Pix[i*4 : i*4+3]
			f.Samples[i*3+0] = down(p[0], maxval)
			f.Samples[i*3+1] = down(p[1], maxval)
			f.Samples[i*3+2] = down(p[2], maxval)
		}
	}
	return f, nil
}

// Rainbow sweeps the hue across the columns. phase is in degrees and shifts
// the whole sweep, so stepping it animates the pattern.
func Rainbow(w, h int, phase float64) *frame.Frame {
	f, _ := blank(w, h, frame.RGB, 255)
	for x := 0; x < w; x++ {
		hue := math.Mod(float64(x)*360/float64(w)+phase, 360)
		if hue < 0 {
			hue += 360
		}
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		for y := 0; y < h; y++ {
			i := (y*w + x) * 3
			f.Samples[i], f.Samples[i+1], f.Samples[i+2] = r, g, b
		}
	}
	return f
}

// Ramp is a one channel horizontal gradient from 0 to maxval.
func Ramp(w, h, maxval int) (*frame.Frame, error) {
	f, err := blank(w, h, frame.Gray, maxval)
	if err != nil {
		return nil, err
	}
	for x := 0; x < w; x++ {
		v := 0
		if w > 1 {
			v = x * maxval / (w - 1)
		}
		for y := 0; y < h; y++ {
			f.Samples[y*w+x] = byte(v)
		}
	}
	return f, nil
}

// Off is an all black one channel frame.
func Off(w, h int) *frame.Frame {
	f, _ := blank(w, h, frame.Gray, 255)
	return f
}

func blank(w, h, channels, maxval int) (*frame.Frame, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("invalid size %dx%d", w, h)
	}
	if channels != frame.Gray && channels != frame.RGB {
		return nil, fmt.Errorf("%w: %d", frame.ErrUnsupportedFormat, channels)
	}
	// samples travel as single bytes
	if maxval < 1 || maxval > 255 {
		return nil, fmt.Errorf("maxval %d out of range 1..255", maxval)
	}
	return &frame.Frame{
		Width:    w,
		Height:   h,
		Channels: channels,
		MaxValue: maxval,
		Samples:  make([]byte, w*h*channels),
	}, nil
}

func down(v uint8, maxval int) byte {
	return byte(int(v) * maxval / 255)
}
