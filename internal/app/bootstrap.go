package app

import (
	"fmt"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/arcaluminis-brx/internal/config"
	"github.com/coreman2200/arcaluminis-brx/internal/layout"
	"github.com/coreman2200/arcaluminis-brx/internal/power"
	"github.com/coreman2200/arcaluminis-brx/internal/preview"
	"github.com/coreman2200/arcaluminis-brx/internal/receiver"
	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// FromConfig builds a controller whose backend and receiver follow cfg.
func FromConfig(cfg config.Config, log zerolog.Logger) (*Controller, error) {
	topo, err := layout.Parse(cfg.Wiring, config.Width, config.Height)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Width:    config.Width,
		Height:   config.Height,
		Topology: topo,
		OpenBackend: func() (strip.Backend, error) {
			return OpenBackend(cfg, log.With().Str("component", "strip").Logger())
		},
		OpenReceiver: func() (FrameSource, error) {
			r, err := receiver.Listen(cfg.Listen, log.With().Str("component", "receiver").Logger())
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		Log: log.With().Str("component", "app").Logger(),
	}), nil
}

// OpenBackend opens the configured strip driver, then wraps it with the
// power gate and the preview mirror when those are enabled.
func OpenBackend(cfg config.Config, log zerolog.Logger) (strip.Backend, error) {
	count := cfg.Count()

	var hw strip.Backend
	switch cfg.Driver {
	case "ws2811":
		d, err := strip.OpenWS2811(strip.WS2811Opts{
			GPIO:       cfg.WS2811.GPIO,
			DMA:        cfg.WS2811.DMA,
			Count:      count,
			Brightness: uint8(cfg.WS2811.Brightness),
			FreqHz:     cfg.WS2811.FreqHz,
		})
		if err != nil {
			return nil, err
		}
		hw = d
	case "spi":
		d, err := strip.OpenSPI(cfg.SPI.Dev, count, physic.Frequency(cfg.SPI.SpeedHz)*physic.Hertz)
		if err != nil {
			return nil, err
		}
		hw = d
	case "console":
		hw = strip.NewConsole(count)
	case "sim":
		hw = strip.NewSim(count, log)
	default:
		return nil, fmt.Errorf("unknown driver %q", cfg.Driver)
	}
	log.Info().Str("driver", cfg.Driver).Int("count", count).Msg("strip ready")

	if cfg.Power.Line >= 0 {
		line, err := power.RequestLine(cfg.Power.Chip, cfg.Power.Line)
		if err != nil {
			_ = hw.Close()
			return nil, err
		}
		g, err := power.Gate(hw, line)
		if err != nil {
			_ = hw.Close()
			return nil, err
		}
		hw = g
	}

	if cfg.Preview.Addr != "" {
		p := preview.New(config.Width, config.Height, log.With().Str("component", "preview").Logger())
		if _, err := p.Listen(cfg.Preview.Addr); err != nil {
			_ = hw.Close()
			return nil, err
		}
		hw = strip.Multi{hw, p}
	}
	return hw, nil
}
