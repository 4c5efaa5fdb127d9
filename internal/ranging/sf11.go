package ranging

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const sf11Addr = 0x55

// SF11 is a LightWare SF11/C in I2C mode.
type SF11 struct {
	bus Bus
}

// Init selects the distance register. The sensor does not acknowledge it, so
// only a transport failure is reported.
func (s *SF11) Init() error {
	if err := s.bus.Write([]byte{0x00}); err != nil {
		return errors.Wrap(err, "sf11: select distance register")
	}
	return nil
}

func (s *SF11) Poll() Distance {
	var buf [2]byte
	n, err := s.bus.Read(buf[:])
	if err != nil || n < 2 {
		return NoReading
	}
	return Distance(binary.BigEndian.Uint16(buf[:]))
}
