package gps

import (
	"time"

	"github.com/adrianmo/go-nmea"
)

type Date struct {
	Year, Month, Day int
}

type TimeOfDay struct {
	Hour, Minute, Second int
}

type Location struct {
	Lat, Lon float64
}

// Fix is a snapshot of the latest decoded position. Nil fields have never
// been reported by the receiver.
type Fix struct {
	Date      *Date
	Time      *TimeOfDay
	Location  *Location
	AltitudeM *float64
	SpeedKt   *float64
	CourseDeg *float64
	HDOP      *float64

	Satellites int

	// Age is the time since Location was last committed. It is only
	// meaningful when Location is set.
	Age time.Duration

	// Updates increases every time a sentence commits a date.
	Updates uint64
}

// Stale reports whether the location is missing or older than maxAge.
func (f Fix) Stale(maxAge time.Duration) bool {
	return f.Location == nil || f.Age > maxAge
}

type fixState struct {
	date   *Date
	tod    *TimeOfDay
	loc    *Location
	alt    *float64
	speed  *float64
	course *float64
	hdop   *float64
	sats   int

	locationAt time.Time
	updates    uint64
}

func (s *fixState) applyTime(t nmea.Time) {
	if t.Valid {
		s.tod = &TimeOfDay{Hour: t.Hour, Minute: t.Minute, Second: t.Second}
	}
}

// RMC commits date and time always, and location, speed and course only when
// the receiver flags the fix active.
func (s *fixState) applyRMC(now time.Time, m nmea.RMC) {
	if m.Date.Valid {
		s.date = &Date{Year: 2000 + m.Date.YY, Month: m.Date.MM, Day: m.Date.DD}
		s.updates++
	}
	s.applyTime(m.Time)
	if m.Validity != nmea.ValidRMC {
		return
	}
	s.loc = &Location{Lat: m.Latitude, Lon: m.Longitude}
	s.locationAt = now
	speed, course := m.Speed, m.Course
	s.speed, s.course = &speed, &course
}

// GGA always carries satellites and HDOP; position and altitude need a
// non-zero fix quality.
func (s *fixState) applyGGA(now time.Time, m nmea.GGA) {
	s.applyTime(m.Time)
	s.sats = int(m.NumSatellites)
	hdop := m.HDOP
	s.hdop = &hdop
	if m.FixQuality == "" || m.FixQuality == nmea.Invalid {
		return
	}
	s.loc = &Location{Lat: m.Latitude, Lon: m.Longitude}
	s.locationAt = now
	alt := m.Altitude
	s.alt = &alt
}

func (s *fixState) snapshot(now time.Time) Fix {
	f := Fix{
		Date:       s.date,
		Time:       s.tod,
		Location:   s.loc,
		AltitudeM:  s.alt,
		SpeedKt:    s.speed,
		CourseDeg:  s.course,
		HDOP:       s.hdop,
		Satellites: s.sats,
		Updates:    s.updates,
	}
	if s.loc != nil {
		f.Age = now.Sub(s.locationAt)
	}
	return f
}
