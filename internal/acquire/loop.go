package acquire

import (
	"context"
	"io"

	log "github.com/sirupsen/logrus"

	"lidarlog/internal/gps"
	"lidarlog/internal/orientation"
	"lidarlog/internal/ranging"
	"lidarlog/internal/record"
	"lidarlog/internal/status"
)

// Run ticks until ctx is done, then closes the log file. Cancellation is only
// observed between ticks.
func (s *Scheduler) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		s.Tick()
	}
	return s.Close()
}

// fresh reports whether fix carries a date not yet written and a current
// location.
func (s *Scheduler) fresh(fix gps.Fix) bool {
	return fix.Updates != s.consumed && !fix.Stale(s.cfg.StaleAfter)
}

// Tick runs one iteration: a record for a fresh fix, or the no-fix wait
// that writes periodic records until one arrives.
func (s *Scheduler) Tick() {
	s.dev.Indicator.Set(status.Off)
	s.dev.Positioning.Drain()

	if !s.fresh(s.dev.Positioning.Fix()) {
		if s.state != AcquiringFix {
			log.Info("acquire: fix lost")
		}
		s.state = AcquiringFix
		s.awaitFix()
		return
	}

	if s.state != FixValid {
		log.Info("acquire: fix acquired")
	}
	s.state = FixValid
	s.dev.Indicator.Set(status.Ready)
	o := s.readOrientation()
	s.dev.Positioning.Drain()
	d := s.dev.Ranging.Poll()
	s.emit(d, o, status.Writing)
}

// awaitFix drains until a fresh fix arrives, writing a record each time
// another NoFixInterval has elapsed.
func (s *Scheduler) awaitFix() {
	s.dev.Indicator.Set(status.NoFix)
	start := s.clock.Now()
	next := s.cfg.NoFixInterval

	for !s.fresh(s.dev.Positioning.Fix()) {
		s.dev.Positioning.Drain()
		if s.clock.Now().Sub(start) > next {
			d := s.dev.Ranging.Poll()
			o := s.readOrientation()
			s.emit(d, o, status.WritingNoFix)
			s.dev.Indicator.Set(status.NoFix)
			next += s.cfg.NoFixInterval
		}
		s.clock.Sleep(pollInterval)
	}
}

func (s *Scheduler) readOrientation() orientation.Sample {
	o, err := s.dev.Orientation.Read()
	if err != nil {
		log.WithError(err).Warn("acquire: imu read failed")
		return orientation.Invalid()
	}
	return o
}

func (s *Scheduler) emit(d ranging.Distance, o orientation.Sample, writing status.State) {
	fix := s.dev.Positioning.Fix()
	line := record.Format(fix, d, o)

	if s.diag != nil {
		_, _ = io.WriteString(s.diag, line)
	}

	s.dev.Indicator.Set(writing)
	if _, err := s.file.WriteString(line); err != nil {
		log.WithError(err).Error("acquire: record write failed")
	} else if err := s.file.Flush(); err != nil {
		log.WithError(err).Error("acquire: record flush failed")
	}

	s.consumed = fix.Updates
	s.records++
}
