// Package diag opens the optional diagnostic text stream: a copy of every
// record (and optionally the raw NMEA) for someone watching a console.
package diag

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.bug.st/serial"
)

const retryInterval = 250 * time.Millisecond

type Config struct {
	// Device is "stdout" or a serial device such as /dev/ttyGS0 (USB gadget).
	Device string
	Baud   int
	// Wait bounds how long Open keeps retrying a device that is not there yet.
	Wait time.Duration
}

func openSerial(device string, baud int) (io.WriteCloser, error) {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, err
	}
	return port, nil
}

var openPort = openSerial

// Open returns the stream, retrying until cfg.Wait has been spent. pause is
// called between attempts.
func Open(cfg Config, pause func(time.Duration)) (*Stream, error) {
	dev := strings.TrimSpace(cfg.Device)
	if dev == "" || dev == "stdout" || dev == "-" {
		return &Stream{w: os.Stdout}, nil
	}
	if pause == nil {
		pause = time.Sleep
	}

	var lastErr error
	for spent := time.Duration(0); ; spent += retryInterval {
		port, err := openPort(dev, cfg.Baud)
		if err == nil {
			log.WithField("device", dev).Info("diag: stream open")
			return &Stream{w: port, c: port}, nil
		}
		lastErr = err
		if spent >= cfg.Wait {
			break
		}
		pause(retryInterval)
	}
	return nil, errors.Wrapf(lastErr, "diag: open %s", dev)
}

// Stream never fails its caller: a write error is logged once and the
// stream goes quiet until a write succeeds again.
type Stream struct {
	w      io.Writer
	c      io.Closer
	failed bool
}

func (s *Stream) Write(p []byte) (int, error) {
	if s == nil || s.w == nil {
		return len(p), nil
	}
	if _, err := s.w.Write(p); err != nil {
		if !s.failed {
			log.WithError(err).Warn("diag: write failed")
		}
		s.failed = true
		return len(p), nil
	}
	s.failed = false
	return len(p), nil
}

func (s *Stream) Close() error {
	if s == nil || s.c == nil {
		return nil
	}
	return s.c.Close()
}
