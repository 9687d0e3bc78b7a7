package receiver

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/arcaluminis-brx/internal/frame"
)

func listen(t *testing.T) *Receiver {
	t.Helper()
	r, err := Listen("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func send(t *testing.T, to net.Addr, b []byte) {
	t.Helper()
	c, err := net.DialUDP("udp", nil, to.(*net.UDPAddr))
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write(b)
	require.NoError(t, err)
}

func next(t *testing.T, r *Receiver) *frame.Frame {
	t.Helper()
	select {
	case f, ok := <-r.Frames():
		require.True(t, ok, "frames channel closed")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return nil
	}
}

func TestReceiverDeliversFramesInOrder(t *testing.T) {
	r := listen(t)

	for i := byte(1); i <= 3; i++ {
		f := &frame.Frame{Width: 1, Height: 1, Channels: frame.Gray, MaxValue: 255, Samples: []byte{i}}
		b, err := f.MarshalBinary()
		require.NoError(t, err)
		send(t, r.Addr(), b)
		got := next(t, r)
		assert.Equal(t, f, got)
	}
}

func TestReceiverSkipsGarbage(t *testing.T) {
	r := listen(t)

	send(t, r.Addr(), []byte("hello"))
	good := &frame.Frame{Width: 2, Height: 1, Channels: frame.Gray, MaxValue: 1, Samples: []byte{0, 1}}
	b, err := good.MarshalBinary()
	require.NoError(t, err)
	send(t, r.Addr(), b)

	assert.Equal(t, good, next(t, r))
	assert.Equal(t, uint64(1), r.Dropped())
}

func TestReceiverCloseClosesChannel(t *testing.T) {
	r, err := Listen("127.0.0.1:0", zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())

	select {
	case _, ok := <-r.Frames():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("frames channel not closed")
	}
}

func TestListenBadAddress(t *testing.T) {
	_, err := Listen("not-an-address", zerolog.Nop())
	assert.Error(t, err)
}
