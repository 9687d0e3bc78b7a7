package main

import (
	"errors"
	"net"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-brx/internal/app"
	"github.com/coreman2200/arcaluminis-brx/internal/config"
	"github.com/coreman2200/arcaluminis-brx/internal/frame"
	"github.com/coreman2200/arcaluminis-brx/internal/layout"
	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "brx.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "nope.yaml"), "", "")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), *cfg)
}

func TestLoadConfigRejectsInvalidFile(t *testing.T) {
	for name, body := range map[string]string{
		"wiring":     "driver: sim\nwiring: zigzag\n",
		"brightness": "driver: sim\nws2811:\n  brightness: 300\n",
		"yaml":       "driver: [sim\n",
	} {
		t.Run(name, func(t *testing.T) {
			cfg, err := loadConfig(writeConfig(t, body), "", "")
			assert.Error(t, err)
			assert.Nil(t, cfg, "must not fall back to defaults")
		})
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	p := writeConfig(t, "driver: console\nlisten: \":4000\"\n")

	cfg, err := loadConfig(p, "sim", "127.0.0.1:0")
	require.NoError(t, err)
	assert.Equal(t, "sim", cfg.Driver)
	assert.Equal(t, "127.0.0.1:0", cfg.Listen)

	_, err = loadConfig(p, "dmx", "")
	assert.Error(t, err)
}

func TestRunExitsOneOnInitFailure(t *testing.T) {
	busy, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	cfg := config.Default()
	cfg.Driver = "sim"
	cfg.Listen = busy.LocalAddr().String()
	assert.Equal(t, 1, run(cfg, nil))
}

func TestRunExitsZeroOnSignal(t *testing.T) {
	cfg := config.Default()
	cfg.Driver = "sim"
	cfg.Listen = "127.0.0.1:0"

	sigs := make(chan os.Signal, 1)
	sigs <- syscall.SIGTERM
	assert.Equal(t, 0, run(cfg, sigs))
}

type failingBackend struct{ closed bool }

func (b *failingBackend) Write([]strip.Color) error { return errors.New("dma underrun") }
func (b *failingBackend) Close() error              { b.closed = true; return nil }

type queuedSource struct {
	ch     chan *frame.Frame
	closed bool
}

func (s *queuedSource) Frames() <-chan *frame.Frame { return s.ch }
func (s *queuedSource) Close() error                { s.closed = true; return nil }

func TestRunExitsZeroAfterBackendFailure(t *testing.T) {
	drv := &failingBackend{}
	src := &queuedSource{ch: make(chan *frame.Frame, 1)}
	src.ch <- &frame.Frame{Width: 1, Height: 1, Channels: frame.Gray, MaxValue: 255, Samples: []byte{9}}

	orig := newController
	t.Cleanup(func() { newController = orig })
	newController = func(cfg config.Config, log zerolog.Logger) (*app.Controller, error) {
		return app.New(app.Options{
			Width:        config.Width,
			Height:       config.Height,
			Topology:     layout.RowMajor(config.Width, config.Height),
			OpenBackend:  func() (strip.Backend, error) { return drv, nil },
			OpenReceiver: func() (app.FrameSource, error) { return src, nil },
			Log:          log,
		}), nil
	}

	assert.Equal(t, 0, run(config.Default(), nil))
	assert.True(t, src.closed, "receiver released")
	assert.True(t, drv.closed, "backend released")
}
