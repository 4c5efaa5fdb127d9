//go:build linux

package i2c

import (
	"os"
	"path/filepath"
	"time"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Linux I2C transport backed by /dev/i2c-*.
//
// Transfers go through I2C_RDWR so register reads can use a repeated start.
// The adapter timeout (I2C_TIMEOUT) bounds every transfer, which is what keeps
// a silent device from stalling the caller.

const (
	i2cMrd     = 0x0001
	i2cTimeout = 0x0702
	i2cRdwr    = 0x0707
)

type msg struct {
	addr  uint16
	flags uint16
	len   uint16
	buf   uintptr
}

type rdwrData struct {
	msgs  uintptr
	nmsgs uint32
}

// Bus is an opened I2C adapter (e.g. /dev/i2c-1). Several Dev handles may
// share one Bus; transfers are not safe for concurrent use.
type Bus struct {
	f    *os.File
	path string
}

func Open(path string) (*Bus, error) {
	path = filepath.Clean(path)
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "i2c: open %s", path)
	}
	return &Bus{f: f, path: path}, nil
}

// SetTimeout sets the adapter transfer timeout. The kernel counts in units of
// 10 ms; anything shorter is rounded up to one unit.
func (b *Bus) SetTimeout(d time.Duration) error {
	if b == nil || b.f == nil {
		return errors.New("i2c: bus is closed")
	}
	units := int((d + 10*time.Millisecond - 1) / (10 * time.Millisecond))
	if units < 1 {
		units = 1
	}
	if err := unix.IoctlSetInt(int(b.f.Fd()), i2cTimeout, units); err != nil {
		return errors.Wrapf(err, "i2c: set timeout on %s", b.path)
	}
	return nil
}

func (b *Bus) Path() string {
	if b == nil {
		return ""
	}
	return b.path
}

func (b *Bus) Close() error {
	if b == nil || b.f == nil {
		return nil
	}
	err := b.f.Close()
	b.f = nil
	return err
}

func (b *Bus) Dev(addr uint16) *Dev {
	if b == nil {
		return nil
	}
	return &Dev{bus: b, addr: addr}
}

// Dev is a device at a 7-bit address on a Bus.
type Dev struct {
	bus  *Bus
	addr uint16
}

func (d *Dev) Addr() uint16 {
	if d == nil {
		return 0
	}
	return d.addr
}

func (d *Dev) Write(p []byte) error {
	_, err := d.tx(p, nil)
	return err
}

// Read fills p from the device and reports how many bytes arrived. A failed
// or timed-out transfer delivers nothing.
func (d *Dev) Read(p []byte) (int, error) {
	return d.tx(nil, p)
}

func (d *Dev) WriteRead(w, r []byte) error {
	_, err := d.tx(w, r)
	return err
}

func (d *Dev) ReadReg(reg byte, dst []byte) error {
	return d.WriteRead([]byte{reg}, dst)
}

func (d *Dev) ReadRegU8(reg byte) (byte, error) {
	var b [1]byte
	if err := d.ReadReg(reg, b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Dev) WriteReg(reg, value byte) error {
	return d.Write([]byte{reg, value})
}

func (d *Dev) tx(w, r []byte) (int, error) {
	if d == nil || d.bus == nil || d.bus.f == nil {
		return 0, errors.New("i2c device is nil")
	}
	if d.addr == 0 || d.addr > 0x7F {
		return 0, errors.Errorf("invalid i2c addr 0x%X", d.addr)
	}

	msgs := make([]msg, 0, 2)
	if len(w) > 0 {
		msgs = append(msgs, msg{addr: d.addr, len: uint16(len(w)), buf: uintptr(unsafe.Pointer(&w[0]))})
	}
	if len(r) > 0 {
		msgs = append(msgs, msg{addr: d.addr, flags: i2cMrd, len: uint16(len(r)), buf: uintptr(unsafe.Pointer(&r[0]))})
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	data := rdwrData{msgs: uintptr(unsafe.Pointer(&msgs[0])), nmsgs: uint32(len(msgs))}
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, d.bus.f.Fd(), uintptr(i2cRdwr), uintptr(unsafe.Pointer(&data)))
	if errno != 0 {
		return 0, errors.Wrapf(errno, "i2c: transfer to 0x%02X", d.addr)
	}
	if len(r) > 0 {
		return len(r), nil
	}
	return len(w), nil
}
