// Package strip holds the physical side of the matrix: the native LED color
// and the backends that push a buffer of them out to hardware.
package strip

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by Write after Close.
	ErrClosed = errors.New("strip: backend closed")
	// ErrUnsupported is returned when a backend is not built for this platform.
	ErrUnsupported = errors.New("strip: backend not supported in this build")
)

// Backend abstracts an LED output sink.
type Backend interface {
	// Write pushes a full buffer to the strip. It blocks until the strip has
	// been updated or the update failed.
	Write(leds []Color) error
	// Close releases the hardware.
	Close() error
}

// Multi fans a buffer out to several backends. The first backend is the
// primary one; any failing Write fails the whole submission.
type Multi []Backend

func (m Multi) Write(leds []Color) error {
	for _, b := range m {
		if err := b.Write(leds); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every backend in reverse order and returns the first error.
func (m Multi) Close() error {
	var first error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func checkLen(leds []Color, count int) error {
	if len(leds) != count {
		return fmt.Errorf("strip: buffer length %d does not match count %d", len(leds), count)
	}
	return nil
}
