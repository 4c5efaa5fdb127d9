package acquire

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"lidarlog/internal/gps"
	"lidarlog/internal/record"
	"lidarlog/internal/status"
)

const (
	allocSettle   = 500 * time.Millisecond
	readyBlinks   = 5
	readyBlinkDur = 100 * time.Millisecond
)

// Bootstrap brings the hardware up in order and opens a new log file. The
// first failing step aborts it with a *FatalError.
func (s *Scheduler) Bootstrap() error {
	s.dev.Indicator.Set(status.Initializing)

	if s.dev.Diag != nil {
		w, err := s.dev.Diag(s.Wait)
		if err != nil {
			log.WithError(err).Warn("acquire: diagnostic stream unavailable, continuing without it")
		} else {
			s.diag = w
		}
	}

	if err := s.dev.Ranging.Init(); err != nil {
		return fatal(RangingInitFailed, err)
	}
	log.Info("acquire: rangefinder ready")

	if err := s.dev.Positioning.Init(); err != nil {
		return fatal(PositioningFixTimeout, err)
	}
	if err := s.dev.Positioning.BootstrapWait(s.cfg.FixTimeout); err != nil {
		return fatal(PositioningFixTimeout, err)
	}
	if err := s.dev.Positioning.Configure(); err != nil {
		return fatal(PositioningFixTimeout, err)
	}
	log.Info("acquire: gps ready")

	if err := s.dev.Orientation.Init(); err != nil {
		return fatal(OrientationInitFailed, err)
	}
	log.Info("acquire: imu ready")

	if err := s.dev.Storage.Init(); err != nil {
		return fatal(StorageUnavailable, err)
	}

	s.dev.Positioning.Drain()
	f, err := s.dev.Storage.Create(fileStamp(s.dev.Positioning.Fix()))
	if err != nil {
		return fatal(LogFileCreateFailed, err)
	}
	s.file = f
	s.dev.Positioning.Drain()
	s.Wait(allocSettle)

	if err := record.WriteHeader(s.file); err != nil {
		return fatal(LogFileCreateFailed, errors.Wrap(err, "write header"))
	}
	if err := s.file.Flush(); err != nil {
		return fatal(LogFileCreateFailed, err)
	}
	if s.diag != nil {
		_ = record.WriteHeader(s.diag)
	}

	s.Wait(s.cfg.Settle)
	for i := 0; i < readyBlinks; i++ {
		s.dev.Indicator.Set(status.Off)
		s.Wait(readyBlinkDur)
		s.dev.Indicator.Set(status.Confirm)
		s.Wait(readyBlinkDur)
	}

	s.state = AcquiringFix
	log.WithField("file", s.file.Name()).Info("acquire: logging started")
	return nil
}

// fileStamp is the receiver's date and time, or zero if either is unknown.
func fileStamp(fix gps.Fix) time.Time {
	if fix.Date == nil || fix.Time == nil {
		return time.Time{}
	}
	return time.Date(fix.Date.Year, time.Month(fix.Date.Month), fix.Date.Day,
		fix.Time.Hour, fix.Time.Minute, fix.Time.Second, 0, time.UTC)
}
