//go:build linux && cgo && ws2811

package strip

/*
#cgo LDFLAGS: -lws2811
#include <stdlib.h>
#include <stdint.h>
#include <ws2811/ws2811.h>
*/
import "C"
import (
	"fmt"
	"sync"
	"unsafe"
)

// WS2811 drives a strip through rpi_ws281x (PWM/PCM + DMA).
type WS2811 struct {
	opts WS2811Opts

	mu   sync.Mutex
	dev  *C.ws2811_t
	leds []C.ws2811_led_t
}

// OpenWS2811 allocates and initializes the DMA channel and GPIO for channel 0.
func OpenWS2811(o WS2811Opts) (*WS2811, error) {
	o = o.withDefaults()
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	w := &WS2811{opts: o}

	w.dev = (*C.ws2811_t)(C.calloc(1, C.size_t(unsafe.Sizeof(*w.dev))))
	if w.dev == nil {
		return nil, fmt.Errorf("calloc ws2811_t failed")
	}
	w.dev.freq = C.uint32_t(o.FreqHz)
	w.dev.dmanum = C.int(o.DMA)

	ch := &w.dev.channel[0]
	ch.gpionum = C.int(o.GPIO)
	ch.count = C.int(o.Count)
	ch.invert = 0
	ch.brightness = C.uint8_t(o.Brightness)
	// Color values are already packed in the strip's native order, so the
	// library must shift them out untouched.
	ch.strip_type = C.WS2811_STRIP_RGB

	if st := C.ws2811_init(w.dev); st != C.WS2811_SUCCESS {
		C.free(unsafe.Pointer(w.dev))
		w.dev = nil
		return nil, fmt.Errorf("ws2811_init failed: %d", int(st))
	}
	w.leds = unsafe.Slice((*C.ws2811_led_t)(unsafe.Pointer(ch.leds)), o.Count)
	return w, nil
}

func (w *WS2811) Write(leds []Color) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dev == nil {
		return ErrClosed
	}
	if err := checkLen(leds, w.opts.Count); err != nil {
		return err
	}
	for i, c := range leds {
		w.leds[i] = C.ws2811_led_t(c)
	}
	if st := C.ws2811_render(w.dev); st != C.WS2811_SUCCESS {
		return fmt.Errorf("ws2811_render failed: %d", int(st))
	}
	return nil
}

func (w *WS2811) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.dev != nil {
		C.ws2811_fini(w.dev)
		C.free(unsafe.Pointer(w.dev))
		w.dev = nil
		w.leds = nil
	}
	return nil
}
