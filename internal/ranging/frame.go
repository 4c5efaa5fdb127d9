package ranging

import "encoding/binary"

// FrameLen is the size of a TF02 distance frame:
//
//	0x59 0x59 | dist u16 LE | strength u16 LE | temp u16 LE | checksum
//
// The checksum is the low byte of the sum of the first eight bytes.
const FrameLen = 9

const frameHeader = 0x59

// Checksum sums b modulo 256.
func Checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return sum
}

// DecodeFrame returns the distance carried by b. The frame is rejected unless
// it is exactly FrameLen bytes with a matching header and checksum.
func DecodeFrame(b []byte) (Distance, bool) {
	if len(b) != FrameLen {
		return NoReading, false
	}
	if b[0] != frameHeader || b[1] != frameHeader {
		return NoReading, false
	}
	if Checksum(b[:FrameLen-1]) != b[FrameLen-1] {
		return NoReading, false
	}
	dist := binary.LittleEndian.Uint16(b[2:4])
	return Distance(dist), true
}

// Frame is a fully decoded TF02 frame. Strength and temperature are raw
// sensor units.
type Frame struct {
	Distance Distance
	Strength uint16
	Temp     uint16
}

func ParseFrame(b []byte) (Frame, bool) {
	d, ok := DecodeFrame(b)
	if !ok {
		return Frame{Distance: NoReading}, false
	}
	return Frame{
		Distance: d,
		Strength: binary.LittleEndian.Uint16(b[4:6]),
		Temp:     binary.LittleEndian.Uint16(b[6:8]),
	}, true
}
