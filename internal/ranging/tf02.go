package ranging

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const tf02Addr = 0x10

var (
	tf02CmdVersion   = []byte{0x5A, 0x04, 0x01, 0x5F}
	tf02CmdFrameRate = []byte{0x5A, 0x06, 0x03, 0xE8, 0x03, 0x4E} // 1000 Hz
	tf02CmdFormat    = []byte{0x5A, 0x05, 0x05, 0x01, 0x65}       // cm, 9-byte frame
	tf02CmdSave      = []byte{0x5A, 0x04, 0x11, 0x6F}
	tf02CmdTrigger   = []byte{0x5A, 0x05, 0x00, 0x01, 0x60}

	tf02SaveAck = []byte{0x5A, 0x05, 0x11, 0x01, 0x71}
)

const tf02StepDelay = 100 * time.Millisecond

// TF02 is a Benewake TF02 in I2C mode.
type TF02 struct {
	bus  Bus
	wait WaitFunc

	// Version is filled in by Init as major.minor.micro.
	Version string
}

func (t *TF02) Init() error {
	resp, n := t.command(tf02CmdVersion, 7)
	if n == 0 {
		return errors.New("tf02: no answer to version query (sensor missing or in serial mode)")
	}
	if n >= 6 {
		t.Version = fmt.Sprintf("%d.%d.%d", resp[5], resp[4], resp[3])
	}
	log.WithField("firmware", t.Version).Info("tf02: rangefinder found")

	if resp, n := t.command(tf02CmdFrameRate, 6); n > 0 {
		log.Debugf("tf02: frame rate ack % X", resp[:n])
	}
	if resp, n := t.command(tf02CmdFormat, 5); n > 0 {
		log.Debugf("tf02: format ack % X", resp[:n])
	}
	resp, n = t.command(tf02CmdSave, 5)
	if !bytes.Equal(resp[:n], tf02SaveAck) {
		log.Warnf("tf02: unexpected save ack % X", resp[:n])
	}
	return nil
}

// command sends cmd, waits for the sensor to act on it and reads up to size
// bytes of response.
func (t *TF02) command(cmd []byte, size int) ([]byte, int) {
	buf := make([]byte, size)
	if err := t.bus.Write(cmd); err != nil {
		log.WithError(err).Debugf("tf02: write % X", cmd)
		return buf, 0
	}
	t.wait(tf02StepDelay)
	n, err := t.bus.Read(buf)
	if err != nil {
		return buf, 0
	}
	return buf, n
}

func (t *TF02) Poll() Distance {
	if err := t.bus.Write(tf02CmdTrigger); err != nil {
		log.WithError(err).Debug("tf02: trigger failed")
		return NoReading
	}
	buf := make([]byte, FrameLen)
	n, err := t.bus.Read(buf)
	if err != nil {
		n = 0
	}
	if n > FrameLen {
		n = FrameLen
	}
	d, ok := DecodeFrame(buf[:n])
	if !ok {
		log.Debugf("tf02: bad frame % X", buf[:n])
		return NoReading
	}
	return d
}
