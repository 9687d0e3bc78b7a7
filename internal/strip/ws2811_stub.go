//go:build !(linux && cgo && ws2811)

package strip

// WS2811 is unavailable in this build; build with -tags ws2811 on a Pi
// with librpi_ws281x installed.
type WS2811 struct{}

func OpenWS2811(o WS2811Opts) (*WS2811, error) { return nil, ErrUnsupported }

func (w *WS2811) Write(leds []Color) error { return ErrUnsupported }

func (w *WS2811) Close() error { return nil }
