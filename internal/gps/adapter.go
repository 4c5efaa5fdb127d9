package gps

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// NMEA caps sentences at 82 characters; anything much longer is noise.
	maxLineLen = 120

	pollInterval   = time.Millisecond
	noticeInterval = 5 * time.Second
)

// Config selects the receiver. Now and Sleep default to the wall clock.
type Config struct {
	Device string
	Baud   int
	Model  string

	// Echo, if set, receives a copy of the raw NMEA stream.
	Echo io.Writer

	Now   func() time.Time
	Sleep func(time.Duration)
}

type Adapter struct {
	cfg     Config
	variant Variant

	port io.ReadWriteCloser

	buf      []byte
	line     []byte
	overflow bool

	st    fixState
	ready bool

	sentences uint64
	rejected  uint64
}

func New(cfg Config) (*Adapter, error) {
	v, err := LookupVariant(cfg.Model)
	if err != nil {
		return nil, err
	}
	if cfg.Baud == 0 {
		cfg.Baud = v.Baud
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	return &Adapter{
		cfg:     cfg,
		variant: v,
		buf:     make([]byte, 256),
		line:    make([]byte, 0, maxLineLen),
	}, nil
}

// Init opens the serial port. An empty device is auto-detected.
func (a *Adapter) Init() error {
	device := strings.TrimSpace(a.cfg.Device)
	if device == "" {
		device = autoDetectDevice()
		if device == "" {
			return errors.New("gps: no serial port found")
		}
	}
	port, err := openPort(device, a.cfg.Baud)
	if err != nil {
		return err
	}
	a.cfg.Device = device
	a.port = port
	log.WithFields(log.Fields{"device": device, "baud": a.cfg.Baud, "model": a.variant.Name}).Info("gps: port open")
	return nil
}

// SetEcho starts (or, with nil, stops) copying the raw stream to w.
func (a *Adapter) SetEcho(w io.Writer) {
	a.cfg.Echo = w
}

func (a *Adapter) Close() error {
	if a.port == nil {
		return nil
	}
	err := a.port.Close()
	a.port = nil
	return err
}

// Drain feeds every byte the port currently holds to the decoder. It never
// waits for more: the port is opened with a zero read timeout, so an empty
// read means nothing is buffered. A short read does not.
func (a *Adapter) Drain() {
	if a.port == nil {
		return
	}
	for {
		n, err := a.port.Read(a.buf)
		if n > 0 {
			a.feed(a.buf[:n])
		}
		if err != nil {
			if err != io.EOF {
				log.WithError(err).Debug("gps: read failed")
			}
			return
		}
		if n == 0 {
			return
		}
	}
}

func (a *Adapter) feed(b []byte) {
	if a.cfg.Echo != nil {
		_, _ = a.cfg.Echo.Write(bytes.ReplaceAll(b, []byte{'\r'}, nil))
	}
	for _, c := range b {
		switch {
		case c == '\n':
			if !a.overflow {
				a.handleLine(string(a.line))
			}
			a.line = a.line[:0]
			a.overflow = false
		case a.overflow:
		case len(a.line) >= maxLineLen:
			a.overflow = true
		default:
			a.line = append(a.line, c)
		}
	}
}

func (a *Adapter) handleLine(line string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "$") {
		return
	}
	sent, err := nmea.Parse(line)
	if err != nil {
		// Unsupported talkers and checksum failures both land here.
		a.rejected++
		log.WithError(err).Debug("gps: sentence rejected")
		return
	}
	a.sentences++
	a.ready = true

	now := a.cfg.Now()
	switch m := sent.(type) {
	case nmea.RMC:
		a.st.applyRMC(now, m)
	case nmea.GGA:
		a.st.applyGGA(now, m)
	}
}

func (a *Adapter) Fix() Fix {
	return a.st.snapshot(a.cfg.Now())
}

// Ready reports whether the receiver has produced a valid sentence yet.
func (a *Adapter) Ready() bool {
	return a.ready
}

// Stats returns the number of decoded and rejected sentences.
func (a *Adapter) Stats() (decoded, rejected uint64) {
	return a.sentences, a.rejected
}

// Pause waits for d while keeping the port drained. It drains at least once.
func (a *Adapter) Pause(d time.Duration) {
	deadline := a.cfg.Now().Add(d)
	for {
		a.Drain()
		if !a.cfg.Now().Before(deadline) {
			return
		}
		a.cfg.Sleep(pollInterval)
	}
}

// BootstrapWait drains until the receiver is talking, giving up after
// timeout. A notice is logged every few seconds while waiting.
func (a *Adapter) BootstrapWait(timeout time.Duration) error {
	start := a.cfg.Now()
	lastNotice := start
	for {
		a.Drain()
		if a.ready {
			return nil
		}
		now := a.cfg.Now()
		if now.Sub(start) >= timeout {
			return errors.Errorf("gps: no NMEA from %s within %s", a.cfg.Device, timeout)
		}
		if now.Sub(lastNotice) >= noticeInterval {
			log.WithField("waited", now.Sub(start).Round(time.Second)).Info("gps: could not lock receiver, waiting")
			lastNotice = now
		}
		a.cfg.Sleep(pollInterval)
	}
}

// Configure sends the receiver model's setup commands, pausing between them.
func (a *Adapter) Configure() error {
	if len(a.variant.Commands) == 0 {
		return nil
	}
	if a.port == nil {
		return errors.New("gps: port not open")
	}
	for _, cmd := range a.variant.Commands {
		if _, err := a.port.Write(cmd); err != nil {
			return errors.Wrap(err, "gps: configure receiver")
		}
		a.Pause(a.variant.Gap)
	}
	log.WithField("model", a.variant.Name).Info("gps: receiver configured")
	return nil
}
