// Package app sequences the strip backend and the frame receiver, and runs
// the single-threaded dispatch loop between them.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
	"github.com/coreman2200/arcaluminis-brx/internal/layout"
	"github.com/coreman2200/arcaluminis-brx/internal/render"
	"github.com/coreman2200/arcaluminis-brx/internal/strip"
)

// ErrInit wraps any failure to acquire the backend or the receiver.
var ErrInit = errors.New("initialization failed")

// ErrSourceClosed is returned by Run when the receiver stops on its own.
var ErrSourceClosed = errors.New("frame source closed")

type State int32

const (
	Uninitialized State = iota
	Running
	Stopping
	Terminated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

type Options struct {
	Width, Height int
	Topology      layout.Topology
	OpenBackend   func() (strip.Backend, error)
	OpenReceiver  func() (FrameSource, error)
	Log           zerolog.Logger
}

// Controller owns the backend, the receiver and the render pipeline from
// Start to Shutdown.
type Controller struct {
	opts  Options
	log   zerolog.Logger
	state atomic.Int32

	drv  strip.Backend
	src  FrameSource
	pipe *render.Pipeline
}

func New(opts Options) *Controller {
	return &Controller{opts: opts, log: opts.Log}
}

func (c *Controller) State() State { return State(c.state.Load()) }

func (c *Controller) setState(s State) {
	c.state.Store(int32(s))
	c.log.Debug().Stringer("state", s).Msg("lifecycle")
}

// Pipeline is nil before Start.
func (c *Controller) Pipeline() *render.Pipeline { return c.pipe }

// Start acquires the backend, then the receiver. On failure everything
// already acquired is released and the controller is Terminated.
func (c *Controller) Start() error {
	if s := c.State(); s != Uninitialized {
		return fmt.Errorf("start: controller is %s", s)
	}

	drv, err := c.opts.OpenBackend()
	if err != nil {
		c.setState(Terminated)
		return fmt.Errorf("%w: backend: %w", ErrInit, err)
	}

	pipe, err := render.New(c.opts.Width, c.opts.Height, c.opts.Topology, drv)
	if err != nil {
		c.release(drv)
		return fmt.Errorf("%w: pipeline: %w", ErrInit, err)
	}

	src, err := c.opts.OpenReceiver()
	if err != nil {
		c.release(drv)
		return fmt.Errorf("%w: receiver: %w", ErrInit, err)
	}

	c.drv, c.pipe, c.src = drv, pipe, src
	c.setState(Running)
	return nil
}

func (c *Controller) release(drv strip.Backend) {
	if err := drv.Close(); err != nil {
		c.log.Warn().Err(err).Msg("backend close")
	}
	c.setState(Terminated)
}

// Run dispatches events until a signal, context cancellation, a closed
// source or a backend failure. It returns the backend or source error that
// stopped it, nil for a requested stop. Frames that fail validation are
// logged and skipped.
func (c *Controller) Run(ctx context.Context, sigs <-chan os.Signal) error {
	if s := c.State(); s != Running {
		return fmt.Errorf("run: controller is %s", s)
	}
	frames := c.src.Frames()
	for {
		stop, err := c.dispatch(c.next(ctx, frames, sigs))
		if stop {
			c.setState(Stopping)
			return err
		}
	}
}

func (c *Controller) next(ctx context.Context, frames <-chan *frame.Frame, sigs <-chan os.Signal) Event {
	select {
	case <-ctx.Done():
		return Signal{}
	case sig := <-sigs:
		return Signal{Sig: sig}
	case f, ok := <-frames:
		if !ok {
			return SourceClosed{}
		}
		return FrameReceived{Frame: f}
	}
}

func (c *Controller) dispatch(ev Event) (stop bool, err error) {
	switch ev := ev.(type) {
	case FrameReceived:
		rerr := c.pipe.Render(ev.Frame)
		switch {
		case rerr == nil:
			return false, nil
		case errors.Is(rerr, render.ErrBackendFailure):
			c.log.Error().Err(rerr).Msg("render failed, stopping")
			return true, rerr
		default:
			c.log.Warn().Err(rerr).
				Int("width", ev.Frame.Width).
				Int("height", ev.Frame.Height).
				Int("channels", ev.Frame.Channels).
				Msg("skipping frame")
			return false, nil
		}
	case Signal:
		if ev.Sig != nil {
			c.log.Info().Str("signal", ev.Sig.String()).Msg("shutting down")
		} else {
			c.log.Info().Msg("context done, shutting down")
		}
		return true, nil
	case SourceClosed:
		c.log.Warn().Msg("frame source closed, shutting down")
		return true, ErrSourceClosed
	}
	return false, nil
}

// Shutdown closes the receiver, blanks the display and releases the backend.
// It always runs every step and returns the joined errors.
func (c *Controller) Shutdown() error {
	switch c.State() {
	case Uninitialized, Terminated:
		return nil
	}
	c.setState(Stopping)

	var errs []error
	if err := c.src.Close(); err != nil {
		errs = append(errs, fmt.Errorf("receiver close: %w", err))
	}
	if err := c.pipe.Clear(); err != nil {
		errs = append(errs, fmt.Errorf("clear: %w", err))
	}
	if err := c.drv.Close(); err != nil {
		errs = append(errs, fmt.Errorf("backend close: %w", err))
	}
	c.setState(Terminated)
	return errors.Join(errs...)
}
