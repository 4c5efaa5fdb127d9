package lsm6ds33

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"

	"lidarlog/internal/i2c"
)

var sleep = time.Sleep

// Minimal LSM6DS33 driver (Pololu MinIMU-9 v5 / AltIMU-10 v5 accel+gyro).
//
// Configuration matches the Pololu "enableDefault" setup:
// accel ±2 g and gyro 245 dps, both at 1.66 kHz, with register
// auto-increment so one burst read returns gyro then accel.

const (
	AddrSA0High = 0x6B
	AddrSA0Low  = 0x6A

	regWhoAmI = 0x0F
	whoAmIVal = 0x69

	regCtrl1XL = 0x10
	regCtrl2G  = 0x11
	regCtrl3C  = 0x12
	regOutXLG  = 0x22 // gyro X..Z then accel X..Z, little-endian

	ctrl1XL1660Hz2g   = 0x80
	ctrl2G1660Hz245   = 0x80
	ctrl3CIfInc       = 0x04
	ctrl3CSoftwareRst = 0x01
)

// Reading holds raw two's-complement counts in the sensor frame.
type Reading struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

type Device struct {
	dev  regIO
	wait func(time.Duration)
}

type regIO interface {
	ReadRegU8(reg byte) (byte, error)
	ReadReg(reg byte, dst []byte) error
	WriteReg(reg, value byte) error
}

func DefaultAddress() uint16 { return AddrSA0High }

// New probes and configures the chip. wait is used for the post-reset
// delay; nil falls back to time.Sleep.
func New(dev *i2c.Dev, wait func(time.Duration)) (*Device, error) {
	if dev == nil {
		return nil, errors.New("lsm6ds33: dev is nil")
	}
	return newWithIO(dev, wait)
}

func newWithIO(dev regIO, wait func(time.Duration)) (*Device, error) {
	if dev == nil {
		return nil, errors.New("lsm6ds33: dev is nil")
	}
	if wait == nil {
		wait = sleep
	}
	d := &Device{dev: dev, wait: wait}

	who, err := d.dev.ReadRegU8(regWhoAmI)
	if err != nil {
		return nil, errors.Wrap(err, "lsm6ds33: whoami read failed")
	}
	if who != whoAmIVal {
		return nil, errors.Errorf("lsm6ds33: whoami=0x%02X want 0x%02X", who, whoAmIVal)
	}

	if err := d.init(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	if err := d.dev.WriteReg(regCtrl3C, ctrl3CSoftwareRst); err != nil {
		return errors.Wrap(err, "lsm6ds33: reset failed")
	}
	d.wait(10 * time.Millisecond)

	if err := d.dev.WriteReg(regCtrl1XL, ctrl1XL1660Hz2g); err != nil {
		return errors.Wrap(err, "lsm6ds33: accel config failed")
	}
	if err := d.dev.WriteReg(regCtrl2G, ctrl2G1660Hz245); err != nil {
		return errors.Wrap(err, "lsm6ds33: gyro config failed")
	}
	if err := d.dev.WriteReg(regCtrl3C, ctrl3CIfInc); err != nil {
		return errors.Wrap(err, "lsm6ds33: ctrl3 config failed")
	}
	return nil
}

// Read returns one raw accel+gyro reading.
func (d *Device) Read() (Reading, error) {
	if d == nil {
		return Reading{}, errors.New("lsm6ds33: device is nil")
	}
	var buf [12]byte
	if err := d.dev.ReadReg(regOutXLG, buf[:]); err != nil {
		return Reading{}, errors.Wrap(err, "lsm6ds33: read sensors failed")
	}
	le := func(i int) int16 { return int16(binary.LittleEndian.Uint16(buf[i : i+2])) }
	return Reading{
		Gx: le(0), Gy: le(2), Gz: le(4),
		Ax: le(6), Ay: le(8), Az: le(10),
	}, nil
}
