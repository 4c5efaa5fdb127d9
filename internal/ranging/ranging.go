// Package ranging talks to I2C laser rangefinders.
//
// Two sensors are supported: the Benewake TF02, which answers a trigger
// command with a checksummed 9-byte frame, and the LightWare SF11, which
// returns a bare big-endian distance. Both report centimetres, and both
// collapse any failed poll into NoReading so the logger never blocks on them.
package ranging

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Distance is a range in centimetres, or NoReading.
type Distance int32

const NoReading Distance = -1

func (d Distance) Valid() bool { return d >= 0 }

// Device is a ranging sensor. Init performs the startup handshake once; Poll
// takes a single reading and never returns an error.
type Device interface {
	Init() error
	Poll() Distance
}

// Bus is the byte transport to one device. Read reports how many bytes
// arrived; an error counts as zero bytes.
type Bus interface {
	Write(p []byte) error
	Read(p []byte) (int, error)
}

// WaitFunc pauses for d. Callers pass a wait that keeps other inputs drained.
type WaitFunc func(d time.Duration)

const (
	ModelTF02 = "tf02"
	ModelSF11 = "sf11"
)

// DefaultAddress returns the factory I2C address for model, or 0 if unknown.
func DefaultAddress(model string) uint16 {
	switch strings.ToLower(model) {
	case ModelTF02:
		return tf02Addr
	case ModelSF11:
		return sf11Addr
	default:
		return 0
	}
}

// New builds the client for model on bus. wait may be nil, in which case a
// plain sleep is used between handshake steps.
func New(model string, bus Bus, wait WaitFunc) (Device, error) {
	if bus == nil {
		return nil, errors.New("ranging: bus is nil")
	}
	if wait == nil {
		wait = func(d time.Duration) { sleep(d) }
	}
	switch strings.ToLower(model) {
	case ModelTF02:
		return &TF02{bus: bus, wait: wait}, nil
	case ModelSF11:
		return &SF11{bus: bus}, nil
	default:
		return nil, errors.Errorf("ranging: unknown model %q", model)
	}
}

var sleep = time.Sleep
