package strip

// WS2811Opts configures channel 0 of the rpi_ws281x library.
type WS2811Opts struct {
	GPIO       int
	DMA        int
	Count      int
	Brightness uint8
	FreqHz     int
}

func (o WS2811Opts) withDefaults() WS2811Opts {
	if o.FreqHz <= 0 {
		o.FreqHz = 800000
	}
	if o.GPIO == 0 {
		o.GPIO = 18
	}
	if o.DMA == 0 {
		o.DMA = 5
	}
	return o
}
