// Package acquire runs the logger: an ordered bootstrap that halts with a
// blink code on failure, then a loop that samples the rangefinder and IMU
// and writes one record per fresh position fix (or one every few seconds
// while there is none).
//
// Everything runs on one goroutine. Any pause keeps draining the GPS port so
// its buffer never overflows.
package acquire

import (
	"io"
	"time"

	"lidarlog/internal/gps"
	"lidarlog/internal/orientation"
	"lidarlog/internal/ranging"
	"lidarlog/internal/status"
	"lidarlog/internal/storage"
)

const pollInterval = time.Millisecond

type Positioner interface {
	Init() error
	BootstrapWait(timeout time.Duration) error
	Configure() error
	Drain()
	Fix() gps.Fix
}

type Orientation interface {
	Init() error
	Read() (orientation.Sample, error)
}

type Store interface {
	Init() error
	Create(stamp time.Time) (*storage.LogFile, error)
}

// DiagOpener opens the diagnostic stream, using pause between attempts.
type DiagOpener func(pause func(time.Duration)) (io.Writer, error)

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type wallClock struct{}

func (wallClock) Now() time.Time        { return time.Now() }
func (wallClock) Sleep(d time.Duration) { time.Sleep(d) }

type Config struct {
	// StaleAfter is the oldest fix still treated as current.
	StaleAfter time.Duration
	// NoFixInterval spaces records while no fix is available.
	NoFixInterval time.Duration
	// FixTimeout bounds the wait for the receiver at startup.
	FixTimeout time.Duration
	// Settle is the pause between writing the header and the ready blink.
	Settle time.Duration
}

func (c *Config) applyDefaults() {
	if c.StaleAfter <= 0 {
		c.StaleAfter = 1750 * time.Millisecond
	}
	if c.NoFixInterval <= 0 {
		c.NoFixInterval = 5 * time.Second
	}
	if c.FixTimeout <= 0 {
		c.FixTimeout = 60 * time.Second
	}
	if c.Settle <= 0 {
		c.Settle = 2 * time.Second
	}
}

type Devices struct {
	Indicator   *status.Indicator
	Positioning Positioner
	Ranging     ranging.Device
	Orientation Orientation
	Storage     Store
	// Diag is optional.
	Diag DiagOpener
}

type LoopState int

const (
	AcquiringFix LoopState = iota
	FixValid
)

func (s LoopState) String() string {
	if s == FixValid {
		return "fix_valid"
	}
	return "acquiring_fix"
}

type Scheduler struct {
	cfg   Config
	clock Clock
	dev   Devices

	diag io.Writer
	file *storage.LogFile

	state    LoopState
	consumed uint64
	records  uint64
}

// New builds a scheduler. A nil clock uses the wall clock.
func New(cfg Config, dev Devices, clock Clock) *Scheduler {
	cfg.applyDefaults()
	if clock == nil {
		clock = wallClock{}
	}
	if dev.Indicator == nil {
		dev.Indicator = status.NewIndicator(nil)
	}
	return &Scheduler{cfg: cfg, clock: clock, dev: dev}
}

// Wait pauses for d, draining the GPS port throughout. It drains at least
// once even for d <= 0.
func (s *Scheduler) Wait(d time.Duration) {
	deadline := s.clock.Now().Add(d)
	for {
		s.dev.Positioning.Drain()
		if !s.clock.Now().Before(deadline) {
			return
		}
		s.clock.Sleep(pollInterval)
	}
}

func (s *Scheduler) State() LoopState { return s.state }

// Records returns how many records have been written since bootstrap.
func (s *Scheduler) Records() uint64 { return s.records }

// LogFile is nil until bootstrap has allocated one.
func (s *Scheduler) LogFile() *storage.LogFile { return s.file }

func (s *Scheduler) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}
