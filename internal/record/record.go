// Package record renders log lines.
//
// A record is one tab-separated line. Fields the sensors could not supply are
// written as INVALID (date, time) or NaN (numbers) so every line keeps the
// same column count.
package record

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"lidarlog/internal/gps"
	"lidarlog/internal/orientation"
	"lidarlog/internal/ranging"
)

const (
	Comment = "# GPS and laser rangefinder log; units: accel=g gyro=deg/s"

	invalid = "INVALID"
	nan     = "NaN"
)

var Columns = []string{
	"#gmt_date", "gmt_time", "num_sats", "longitude", "latitude",
	"gps_altitude_m", "SOG_kt", "COG", "HDOP", "laser_altitude_cm",
	"tilt_deg", "accel_x", "accel_y", "accel_z", "gyro_x", "gyro_y", "gyro_z",
}

// Header returns the two header lines, newline-terminated.
func Header() string {
	return Comment + "\n" + strings.Join(Columns, "\t") + "\n"
}

func WriteHeader(w io.Writer) error {
	_, err := io.WriteString(w, Header())
	return err
}

// Format renders one record, newline-terminated.
func Format(fix gps.Fix, dist ranging.Distance, o orientation.Sample) string {
	f := make([]string, 0, len(Columns))

	if d := fix.Date; d != nil {
		f = append(f, fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day))
	} else {
		f = append(f, invalid)
	}
	if t := fix.Time; t != nil {
		f = append(f, fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second))
	} else {
		f = append(f, invalid)
	}

	f = append(f, strconv.Itoa(fix.Satellites))

	if l := fix.Location; l != nil {
		f = append(f, fixed(l.Lon, 6), fixed(l.Lat, 6))
	} else {
		f = append(f, nan, nan)
	}

	f = append(f,
		optional(fix.AltitudeM, 2),
		optional(fix.SpeedKt, 2),
		optional(fix.CourseDeg, 2),
		optional(fix.HDOP, 2),
	)

	if dist.Valid() {
		f = append(f, strconv.Itoa(int(dist)))
	} else {
		f = append(f, nan)
	}

	f = append(f,
		fixed(o.TiltDeg, 2),
		fixed(o.AccelX, 4), fixed(o.AccelY, 4), fixed(o.AccelZ, 4),
		fixed(o.GyroX, 3), fixed(o.GyroY, 3), fixed(o.GyroZ, 3),
	)

	return strings.Join(f, "\t") + "\n"
}

func fixed(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func optional(v *float64, prec int) string {
	if v == nil {
		return nan
	}
	return fixed(*v, prec)
}
