package strip

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/spi/spitest"
	"periph.io/x/devices/v3/nrzled"
)

// imageDrawer records the last image drawn to it.
type imageDrawer struct {
	w      int
	last   *image.NRGBA
	halted bool
	err    error
}

func (d *imageDrawer) String() string             { return "imageDrawer" }
func (d *imageDrawer) Halt() error                { d.halted = true; return nil }
func (d *imageDrawer) ColorModel() color.Model    { return color.NRGBAModel }
func (d *imageDrawer) Bounds() image.Rectangle    { return image.Rect(0, 0, d.w, 1) }
func (d *imageDrawer) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	if d.err != nil {
		return d.err
	}
	d.last = image.NewNRGBA(r)
	for x := r.Min.X; x < r.Max.X; x++ {
		d.last.Set(x, 0, src.At(x+sp.X, sp.Y))
	}
	return nil
}

type closeCounter struct{ n int }

func (c *closeCounter) Close() error { c.n++; return nil }

func TestDrawerSPIMatchesRawDevice(t *testing.T) {
	var got, want bytes.Buffer
	dev, err := nrzled.NewSPI(spitest.NewRecordRaw(&got), &nrzled.Opts{NumPixels: 4, Channels: 3, Freq: DefaultSPIFreq})
	require.NoError(t, err)
	ref, err := nrzled.NewSPI(spitest.NewRecordRaw(&want), &nrzled.Opts{NumPixels: 4, Channels: 3, Freq: DefaultSPIFreq})
	require.NoError(t, err)

	s := NewDrawer(dev, 4, nil)
	require.NoError(t, s.Write([]Color{RGB(255, 0, 0), RGB(0, 255, 0), RGB(0, 0, 255), Gray(16)}))

	_, err = ref.Write([]byte{255, 0, 0, 0, 255, 0, 0, 0, 255, 16, 16, 16})
	require.NoError(t, err)

	assert.NotEmpty(t, got.Bytes())
	assert.Equal(t, want.Bytes(), got.Bytes())
}

func TestDrawerImagePath(t *testing.T) {
	d := &imageDrawer{w: 3}
	port := &closeCounter{}
	s := NewDrawer(d, 3, port)

	require.NoError(t, s.Write([]Color{RGB(10, 20, 30), Off, Gray(255)}))
	require.NotNil(t, d.last)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 255}, d.last.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{A: 255}, d.last.NRGBAAt(1, 0))
	assert.Equal(t, color.NRGBA{R: 255, G: 255, B: 255, A: 255}, d.last.NRGBAAt(2, 0))

	require.NoError(t, s.Close())
	assert.True(t, d.halted)
	assert.Equal(t, 1, port.n)

	// closing twice is a no-op
	require.NoError(t, s.Close())
	assert.Equal(t, 1, port.n)
	assert.ErrorIs(t, s.Write(make([]Color, 3)), ErrClosed)
}

func TestDrawerRejectsWrongLength(t *testing.T) {
	s := NewDrawer(&imageDrawer{w: 2}, 2, nil)
	assert.Error(t, s.Write(make([]Color, 3)))
}

func TestDrawerPropagatesDrawError(t *testing.T) {
	boom := errors.New("boom")
	s := NewDrawer(&imageDrawer{w: 1, err: boom}, 1, nil)
	assert.ErrorIs(t, s.Write([]Color{Off}), boom)
}

func TestMultiWritesAllAndClosesInReverse(t *testing.T) {
	a := NewSim(2, zerolog.Nop())
	b := NewSim(2, zerolog.Nop())
	m := Multi{a, b}

	leds := []Color{Gray(1), Gray(2)}
	require.NoError(t, m.Write(leds))
	assert.Equal(t, leds, a.Last())
	assert.Equal(t, leds, b.Last())

	require.NoError(t, m.Close())
	assert.ErrorIs(t, m.Write(leds), ErrClosed)
}

func TestMultiStopsOnFirstFailure(t *testing.T) {
	a := NewSim(1, zerolog.Nop())
	b := NewSim(1, zerolog.Nop())
	require.NoError(t, a.Close())

	err := Multi{a, b}.Write([]Color{Off})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, b.Frames())
}

func TestWS2811StubOrDevice(t *testing.T) {
	if _, err := OpenWS2811(WS2811Opts{Count: 0}); err == nil {
		t.Fatal("expected an error for a zero-length strip")
	}
}
