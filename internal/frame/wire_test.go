package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func header(height, width, channels, maxval uint16) []byte {
	return []byte{
		0x23, 0x54, 0x26, 0x66,
		byte(height >> 8), byte(height),
		byte(width >> 8), byte(width),
		byte(channels >> 8), byte(channels),
		byte(maxval >> 8), byte(maxval),
	}
}

func TestUnmarshalMCUFrame(t *testing.T) {
	b := append(header(1, 2, 3, 255), 1, 2, 3, 4, 5, 6, 0xEE)
	f, err := Unmarshal(b)
	require.NoError(t, err)

	assert.Equal(t, 2, f.Width)
	assert.Equal(t, 1, f.Height)
	assert.Equal(t, RGB, f.Channels)
	assert.Equal(t, 255, f.MaxValue)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, f.Samples, "trailing bytes are dropped")

	// samples must not alias the receive buffer
	b[HeaderSize] = 99
	assert.Equal(t, byte(1), f.Samples[0])
}

func TestUnmarshalWideMaxval(t *testing.T) {
	f, err := Unmarshal(append(header(1, 1, 1, 1000), 100))
	require.NoError(t, err)
	assert.Equal(t, 1000, f.MaxValue)
}

func TestUnmarshalErrors(t *testing.T) {
	tests := []struct {
		name string
		b    []byte
		want error
	}{
		{"empty", nil, ErrShortPacket},
		{"short header", header(1, 1, 1, 1)[:11], ErrShortPacket},
		{"bad magic", append([]byte{0xDE, 0xAD, 0xBE, 0xEF}, header(1, 1, 1, 1)[4:]...), ErrBadMagic},
		{"zero width", header(1, 0, 1, 1), ErrInvalidHeader},
		{"zero height", header(0, 1, 1, 1), ErrInvalidHeader},
		{"zero maxval", append(header(1, 1, 1, 0), 1), ErrInvalidHeader},
		{"short data", append(header(2, 2, 1, 255), 1, 2, 3), ErrShortFrame},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Unmarshal(tt.b)
			assert.Nil(t, f)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUnmarshalLeavesChannelCheckToValidate(t *testing.T) {
	f, err := Unmarshal(append(header(1, 1, 2, 255), 1, 2))
	require.NoError(t, err)
	assert.ErrorIs(t, f.Validate(), ErrUnsupportedFormat)
}

func TestMarshalBinary(t *testing.T) {
	f := &Frame{Width: 2, Height: 1, Channels: Gray, MaxValue: 15, Samples: []byte{15, 7}}
	b, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, append(header(1, 2, 1, 15), 15, 7), b)

	back, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, f, back)
}

func TestMarshalBinaryRejectsBadFrames(t *testing.T) {
	_, err := (&Frame{Width: 1, Height: 1, Channels: 1, MaxValue: 0, Samples: []byte{1}}).MarshalBinary()
	assert.ErrorIs(t, err, ErrInvalidHeader)

	_, err = (&Frame{Width: 2, Height: 1, Channels: 1, MaxValue: 1, Samples: []byte{1}}).MarshalBinary()
	assert.ErrorIs(t, err, ErrShortFrame)
}
