package gps

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// openSerial opens device with a zero read timeout so that Read returns
// whatever is buffered, possibly nothing, without waiting.
func openSerial(device string, baud int) (io.ReadWriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, errors.Wrapf(err, "gps: open %s at %d baud", device, baud)
	}
	if err := port.SetReadTimeout(0); err != nil {
		_ = port.Close()
		return nil, errors.Wrapf(err, "gps: set read timeout on %s", device)
	}
	return port, nil
}

var openPort = openSerial

// autoDetectDevice picks the first USB or on-board UART the OS reports.
func autoDetectDevice() string {
	ports, err := serial.GetPortsList()
	if err != nil {
		return ""
	}
	for _, prefix := range []string{"/dev/ttyACM", "/dev/ttyUSB", "/dev/serial0", "/dev/ttyAMA", "/dev/ttyS"} {
		for _, p := range ports {
			if strings.HasPrefix(p, prefix) {
				return p
			}
		}
	}
	return ""
}
