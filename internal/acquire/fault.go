package acquire

import (
	"context"
	"fmt"
	"time"

	"lidarlog/internal/status"
)

// ErrorCode identifies which bootstrap step failed. The LED blinks red once
// per unit of the code.
type ErrorCode int

const (
	RangingInitFailed ErrorCode = iota + 1
	PositioningFixTimeout
	OrientationInitFailed
	StorageUnavailable
	LogFileCreateFailed
)

var blinkCounts = map[ErrorCode]int{
	RangingInitFailed:     1,
	PositioningFixTimeout: 2,
	OrientationInitFailed: 3,
	StorageUnavailable:    4,
	LogFileCreateFailed:   5,
}

func (c ErrorCode) Blinks() int { return blinkCounts[c] }

func (c ErrorCode) String() string {
	switch c {
	case RangingInitFailed:
		return "rangefinder init failed"
	case PositioningFixTimeout:
		return "gps not responding"
	case OrientationInitFailed:
		return "imu init failed"
	case StorageUnavailable:
		return "storage unavailable"
	case LogFileCreateFailed:
		return "log file create failed"
	}
	return fmt.Sprintf("error %d", int(c))
}

// FatalError is returned by Bootstrap; the process should Halt with Code.
type FatalError struct {
	Code ErrorCode
	Err  error
}

func (e *FatalError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Err.Error()
}

func (e *FatalError) Unwrap() error { return e.Err }

// Cause supports github.com/pkg/errors.Cause.
func (e *FatalError) Cause() error { return e.Err }

func fatal(code ErrorCode, err error) *FatalError {
	return &FatalError{Code: code, Err: err}
}

const (
	blinkOn    = 250 * time.Millisecond
	blinkOff   = 250 * time.Millisecond
	blinkPause = 2 * time.Second
)

// Halt reports code on the LED until ctx is cancelled. Cancellation is
// only noticed between blink cycles, so the caller may release the devices
// once Halt returns.
func (s *Scheduler) Halt(ctx context.Context, code ErrorCode) {
	for ctx.Err() == nil {
		s.blinkCode(code)
	}
	s.dev.Indicator.Set(status.Off)
}

// blinkCode shows code once: N red flashes then a pause.
func (s *Scheduler) blinkCode(code ErrorCode) {
	for i := 0; i < code.Blinks(); i++ {
		s.dev.Indicator.Set(status.Error)
		s.Wait(blinkOn)
		s.dev.Indicator.Set(status.Off)
		s.Wait(blinkOff)
	}
	s.Wait(blinkPause)
}
