// Command brxsend sends MCU frames to a brx receiver: an image file or a
// generated test pattern.
package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-brx/internal/config"
	"github.com/coreman2200/arcaluminis-brx/internal/frame"
	"github.com/coreman2200/arcaluminis-brx/internal/source"
)

func main() {
	var (
		addr     = flag.String("addr", "127.0.0.1:2323", "receiver UDP address")
		imgPath  = flag.String("image", "", "image file to send (png, jpeg, gif, bmp, tiff, svg)")
		pattern  = flag.String("pattern", "rainbow", "pattern when no image: rainbow | gray | off")
		channels = flag.Int("channels", 3, "channels for images: 1 | 3")
		maxval   = flag.Int("maxval", 255, "maxval for images and the gray ramp (1..255)")
		fps      = flag.Int("fps", 10, "frames per second")
		count    = flag.Int("count", 1, "frames to send, 0 runs until interrupted")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	next, err := generator(*imgPath, *pattern, *channels, *maxval, *fps)
	if err != nil {
		log.Fatal().Err(err).Msg("bad input")
	}

	conn, err := net.Dial("udp", *addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("dial")
	}
	defer conn.Close()

	if *fps <= 0 {
		*fps = 1
	}
	ticker := time.NewTicker(time.Second / time.Duration(*fps))
	defer ticker.Stop()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)

	sent := 0
	for *count == 0 || sent < *count {
		b, err := next(sent).MarshalBinary()
		if err != nil {
			log.Fatal().Err(err).Msg("encode")
		}
		if _, err := conn.Write(b); err != nil {
			log.Error().Err(err).Msg("send")
		}
		sent++
		if *count != 0 && sent >= *count {
			break
		}
		select {
		case <-ticker.C:
		case <-sigs:
			log.Info().Int("sent", sent).Msg("interrupted")
			return
		}
	}
	log.Info().Int("sent", sent).Str("addr", *addr).Msg("done")
}

// generator returns the frame to send as the i-th one.
func generator(imgPath, pattern string, channels, maxval, fps int) (func(i int) *frame.Frame, error) {
	w, h := config.Width, config.Height
	if imgPath != "" {
		img, err := source.Load(imgPath, w, h)
		if err != nil {
			return nil, err
		}
		f, err := source.FromImage(img, w, h, channels, maxval)
		if err != nil {
			return nil, err
		}
		return func(int) *frame.Frame { return f }, nil
	}

	switch pattern {
	case "rainbow":
		// one full hue turn every three seconds
		step := 120.0 / float64(max(fps, 1))
		return func(i int) *frame.Frame { return source.Rainbow(w, h, float64(i)*step) }, nil
	case "gray":
		f, err := source.Ramp(w, h, maxval)
		if err != nil {
			return nil, err
		}
		return func(int) *frame.Frame { return f }, nil
	case "off":
		f := source.Off(w, h)
		return func(int) *frame.Frame { return f }, nil
	}
	return nil, fmt.Errorf("unknown pattern %q", pattern)
}
