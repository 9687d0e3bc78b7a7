package frame

import (
	"encoding/binary"
	"fmt"
)

// Blinkenlights MCU frame datagram: a 12 byte big-endian header followed by
// height*width*channels samples.
const (
	Magic      uint32 = 0x23542666
	HeaderSize        = 12
)

// Unmarshal parses one datagram. The samples are copied out of b.
// Unsupported channel counts are left for Validate to report.
func Unmarshal(b []byte) (*Frame, error) {
	if len(b) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortPacket, len(b))
	}
	if m := binary.BigEndian.Uint32(b[0:4]); m != Magic {
		return nil, fmt.Errorf("%w: magic 0x%08x", ErrBadMagic, m)
	}
	f := &Frame{
		Height:   int(binary.BigEndian.Uint16(b[4:6])),
		Width:    int(binary.BigEndian.Uint16(b[6:8])),
		Channels: int(binary.BigEndian.Uint16(b[8:10])),
		MaxValue: int(binary.BigEndian.Uint16(b[10:12])),
	}
	if f.Width == 0 || f.Height == 0 || f.MaxValue == 0 {
		return nil, fmt.Errorf("%w: %dx%d maxval %d", ErrInvalidHeader, f.Width, f.Height, f.MaxValue)
	}
	data := b[HeaderSize:]
	need := f.Width * f.Height * f.Channels
	if len(data) < need {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrShortFrame, len(data), need)
	}
	f.Samples = append([]byte(nil), data[:need]...)
	return f, nil
}

// MarshalBinary encodes f as an MCU frame datagram.
func (f *Frame) MarshalBinary() ([]byte, error) {
	if f.Width <= 0 || f.Height <= 0 || f.MaxValue <= 0 || f.Channels <= 0 ||
		f.Width > 0xFFFF || f.Height > 0xFFFF || f.MaxValue > 0xFFFF || f.Channels > 0xFFFF {
		return nil, fmt.Errorf("%w: %dx%dx%d maxval %d", ErrInvalidHeader, f.Width, f.Height, f.Channels, f.MaxValue)
	}
	need := f.Width * f.Height * f.Channels
	if len(f.Samples) < need {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrShortFrame, len(f.Samples), need)
	}
	b := make([]byte, HeaderSize+need)
	binary.BigEndian.PutUint32(b[0:4], Magic)
	binary.BigEndian.PutUint16(b[4:6], uint16(f.Height))
	binary.BigEndian.PutUint16(b[6:8], uint16(f.Width))
	binary.BigEndian.PutUint16(b[8:10], uint16(f.Channels))
	binary.BigEndian.PutUint16(b[10:12], uint16(f.MaxValue))
	copy(b[HeaderSize:], f.Samples[:need])
	return b, nil
}
