package strip

import (
	"fmt"
	"image"
	"io"
	"sync"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"
	"periph.io/x/host/v3"
)

// DefaultSPIFreq drives WS281x timing through the NRZ encoder.
const DefaultSPIFreq = 2500 * physic.KiloHertz

// Drawer pushes buffers to a periph display.Drawer. Devices that accept raw
// RGB bytes (nrzled) get them directly; anything else gets a 1-row image.
type Drawer struct {
	mu    sync.Mutex
	d     display.Drawer
	port  io.Closer
	count int
	img   *image.NRGBA
	raw   []byte
}

// NewDrawer wraps d for a strip of count LEDs. port, if not nil, is closed
// together with the drawer.
func NewDrawer(d display.Drawer, count int, port io.Closer) *Drawer {
	return &Drawer{
		d:     d,
		port:  port,
		count: count,
		img:   image.NewNRGBA(image.Rect(0, 0, count, 1)),
		raw:   make([]byte, count*3),
	}
}

// OpenSPI opens an SPI port (empty name picks the first one) and drives a
// WS281x strip on its MOSI line through the nrzled encoder.
func OpenSPI(dev string, count int, freq physic.Frequency) (*Drawer, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	if freq == 0 {
		freq = DefaultSPIFreq
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init: %w", err)
	}
	p, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: count,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	if err := d.Halt(); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("nrzled halt: %w", err)
	}
	return NewDrawer(d, count, p), nil
}

// NewConsole prints the strip as colored blocks on the terminal.
func NewConsole(count int) *Drawer {
	return NewDrawer(screen.New(count), count, nil)
}

func (s *Drawer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.d == nil {
		return "drawer{closed}"
	}
	return s.d.String()
}

func (s *Drawer) Write(leds []Color) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.d == nil {
		return ErrClosed
	}
	if err := checkLen(leds, s.count); err != nil {
		return err
	}

	if w, ok := s.d.(io.Writer); ok {
		for i, c := range leds {
			s.raw[i*3+0] = c.R()
			s.raw[i*3+1] = c.G()
			s.raw[i*3+2] = c.B()
		}
		if _, err := w.Write(s.raw); err != nil {
			return fmt.Errorf("%s write: %w", s.d, err)
		}
		return nil
	}

	for i, c := range leds {
		s.img.SetNRGBA(i, 0, c.NRGBA())
	}
	if err := s.d.Draw(s.d.Bounds(), s.img, image.Point{}); err != nil {
		return fmt.Errorf("%s draw: %w", s.d, err)
	}
	return nil
}

// Close halts the device, then releases the port.
func (s *Drawer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.d == nil {
		return nil
	}
	err := s.d.Halt()
	if s.port != nil {
		if cerr := s.port.Close(); err == nil {
			err = cerr
		}
	}
	s.d = nil
	return err
}
