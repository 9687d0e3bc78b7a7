// Command brx receives Blinkenlights MCU frames over UDP and shows them on an
// 18x8 WS281x matrix.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/arcaluminis-brx/internal/app"
	"github.com/coreman2200/arcaluminis-brx/internal/config"
)

// newController builds the controller for run; tests swap it out.
var newController = app.FromConfig

func main() {
	var (
		configPath = flag.String("config", "brx.yaml", "path to brx.yaml")
		driver     = flag.String("driver", "", "override driver: ws2811 | spi | console | sim")
		listen     = flag.String("listen", "", "override UDP listen address")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := loadConfig(*configPath, *driver, *listen)
	if err != nil {
		log.Error().Err(err).Str("path", *configPath).Msg("bad configuration")
		os.Exit(1)
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level; using info")
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	code := run(*cfg, sigs)
	signal.Stop(sigs)
	os.Exit(code)
}

// loadConfig reads path, falling back to defaults only when the file does
// not exist, then applies the flag overrides and validates the result.
func loadConfig(path, driver, listen string) (*config.Config, error) {
	cfg, err := config.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Warn().Str("path", path).Msg("config file not found; using defaults")
		d := config.Default()
		cfg = &d
	case err != nil:
		return nil, err
	}
	if driver != "" {
		cfg.Driver = driver
	}
	if listen != "" {
		cfg.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("after flag overrides: %w", err)
	}
	return cfg, nil
}

// run drives one controller lifetime and returns the process exit code:
// 1 when startup fails, 0 once shutdown has completed.
func run(cfg config.Config, sigs <-chan os.Signal) int {
	ctl, err := newController(cfg, log.Logger)
	if err != nil {
		log.Error().Err(err).Msg("bad configuration")
		return 1
	}
	if err := ctl.Start(); err != nil {
		log.Error().Err(err).Msg("startup failed")
		return 1
	}
	log.Info().
		Str("listen", cfg.Listen).
		Str("driver", cfg.Driver).
		Str("wiring", cfg.Wiring).
		Msg("brx running")

	runErr := ctl.Run(context.Background(), sigs)
	if err := ctl.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("shutdown incomplete")
	}
	// a completed shutdown exits cleanly even after a backend failure
	if runErr != nil {
		log.Error().Err(runErr).Msg("stopped on error")
	}
	log.Info().Uint64("frames", ctl.Pipeline().Frames).Msg("bye")
	return 0
}
