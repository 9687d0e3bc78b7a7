// Package receiver listens for MCU frame datagrams on UDP and hands the
// parsed frames to a single consumer, in arrival order.
package receiver

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
)

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// Receiver owns the UDP socket. Frames are delivered on an unbuffered
// channel, so a slow consumer holds the reader and the kernel drops excess
// datagrams rather than queueing stale frames here.
type Receiver struct {
	conn   *net.UDPConn
	log    zerolog.Logger
	frames chan *frame.Frame
	done   chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup

	dropped atomic.Uint64
}

// Listen binds addr (e.g. ":2323") and starts reading.
func Listen(addr string, log zerolog.Logger) (*Receiver, error) {
	ua, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", ua)
	if err != nil {
		return nil, fmt.Errorf("listen %q: %w", addr, err)
	}
	r := &Receiver{
		conn:   conn,
		log:    log,
		frames: make(chan *frame.Frame),
		done:   make(chan struct{}),
	}
	r.wg.Add(1)
	go r.readLoop()
	return r, nil
}

// Addr is the bound local address.
func (r *Receiver) Addr() net.Addr { return r.conn.LocalAddr() }

// Frames yields parsed frames until Close.
func (r *Receiver) Frames() <-chan *frame.Frame { return r.frames }

// Dropped counts datagrams that could not be parsed.
func (r *Receiver) Dropped() uint64 { return r.dropped.Load() }

// Close stops reading and closes the socket. The Frames channel is closed
// once the reader has exited.
func (r *Receiver) Close() error {
	var err error
	r.closeOnce.Do(func() {
		close(r.done)
		err = r.conn.Close()
		r.wg.Wait()
	})
	return err
}

func (r *Receiver) readLoop() {
	defer r.wg.Done()
	defer close(r.frames)

	buf := make([]byte, maxDatagram)
	for {
		n, from, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			select {
			case <-r.done:
				return
			default:
			}
			r.log.Warn().Err(err).Msg("udp read")
			continue
		}

		f, err := frame.Unmarshal(buf[:n])
		if err != nil {
			r.dropped.Add(1)
			r.log.Debug().Err(err).Stringer("from", from).Int("bytes", n).Msg("dropping datagram")
			continue
		}
		r.log.Debug().
			Stringer("from", from).
			Int("width", f.Width).
			Int("height", f.Height).
			Int("channels", f.Channels).
			Int("maxval", f.MaxValue).
			Msg("frame")

		select {
		case r.frames <- f:
		case <-r.done:
			return
		}
	}
}
