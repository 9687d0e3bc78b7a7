package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Matrix size is fixed at build time and must match the strip length.
const (
	Width  = 18
	Height = 8
)

type WS2811 struct {
	GPIO       int `yaml:"gpio"`
	DMA        int `yaml:"dma"`
	Brightness int `yaml:"brightness"` // 0..255
	FreqHz     int `yaml:"freq_hz"`
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, empty for the first port
	SpeedHz int    `yaml:"speed_hz"` // e.g. 2500000
}

type Power struct {
	Chip string `yaml:"chip"` // e.g. gpiochip0
	Line int    `yaml:"line"` // < 0 disables the gate
}

type Preview struct {
	Addr string `yaml:"addr"` // empty disables the websocket preview
}

type Config struct {
	Listen   string `yaml:"listen"`
	Driver   string `yaml:"driver"` // "ws2811" | "spi" | "console" | "sim"
	Wiring   string `yaml:"wiring"` // "rowmajor" | "serpentine"
	LogLevel string `yaml:"log_level"`

	WS2811  WS2811  `yaml:"ws2811"`
	SPI     SPI     `yaml:"spi,omitempty"`
	Power   Power   `yaml:"power"`
	Preview Preview `yaml:"preview,omitempty"`
}

// Default mirrors the wiring of the reference installation: GPIO 18,
// DMA 5, full brightness, UDP port 2323.
func Default() Config {
	return Config{
		Listen:   ":2323",
		Driver:   "ws2811",
		Wiring:   "rowmajor",
		LogLevel: "info",
		WS2811: WS2811{
			GPIO:       18,
			DMA:        5,
			Brightness: 255,
			FreqHz:     800000,
		},
		SPI:   SPI{SpeedHz: 2500000},
		Power: Power{Chip: "gpiochip0", Line: -1},
	}
}

// Count is the strip length.
func (c Config) Count() int { return Width * Height }

func (c Config) Validate() error {
	switch c.Driver {
	case "ws2811", "spi", "console", "sim":
	default:
		return fmt.Errorf("unknown driver %q", c.Driver)
	}
	switch c.Wiring {
	case "", "rowmajor", "serpentine":
	default:
		return fmt.Errorf("unknown wiring %q", c.Wiring)
	}
	if c.WS2811.Brightness < 0 || c.WS2811.Brightness > 255 {
		return fmt.Errorf("brightness must be between 0 and 255, got %d", c.WS2811.Brightness)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address is empty")
	}
	return nil
}

// Load reads path over Default().
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
