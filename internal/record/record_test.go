package record

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lidarlog/internal/gps"
	"lidarlog/internal/orientation"
	"lidarlog/internal/ranging"
)

func f64(v float64) *float64 { return &v }

func TestFormat_InvalidFields(t *testing.T) {
	fix := gps.Fix{
		Satellites: 4,
		Location:   &gps.Location{Lat: -23.654321, Lon: 10.123456},
	}
	o := orientation.Sample{TiltDeg: 1.005, AccelX: 0.01, AccelY: -0.02, AccelZ: 0.99, GyroX: 0.1, GyroY: -0.2, GyroZ: 0.3}

	got := Format(fix, ranging.NoReading, o)
	want := "INVALID\tINVALID\t4\t10.123456\t-23.654321\tNaN\tNaN\tNaN\tNaN\tNaN\t" +
		"1.00\t0.0100\t-0.0200\t0.9900\t0.100\t-0.200\t0.300\n"
	assert.Equal(t, want, got)
}

func TestFormat_FullRecord(t *testing.T) {
	fix := gps.Fix{
		Date:       &gps.Date{Year: 2024, Month: 3, Day: 7},
		Time:       &gps.TimeOfDay{Hour: 9, Minute: 5, Second: 2},
		Location:   &gps.Location{Lat: 48.1173, Lon: 11.516667},
		AltitudeM:  f64(545.4),
		SpeedKt:    f64(22.4),
		CourseDeg:  f64(84.4),
		HDOP:       f64(0.9),
		Satellites: 8,
	}
	got := Format(fix, 1234, orientation.Sample{AccelZ: 1})
	fields := strings.Split(strings.TrimSuffix(got, "\n"), "\t")
	require.Len(t, fields, len(Columns))
	assert.Equal(t, []string{
		"2024/03/07", "09:05:02", "8", "11.516667", "48.117300",
		"545.40", "22.40", "84.40", "0.90", "1234",
		"0.00", "0.0000", "0.0000", "1.0000", "0.000", "0.000", "0.000",
	}, fields)
}

func TestFormat_NoLocation(t *testing.T) {
	got := Format(gps.Fix{}, 0, orientation.Sample{})
	fields := strings.Split(strings.TrimSuffix(got, "\n"), "\t")
	require.Len(t, fields, len(Columns))
	assert.Equal(t, "NaN", fields[3])
	assert.Equal(t, "NaN", fields[4])
	assert.Equal(t, "0", fields[9], "zero distance is a reading")
}

func TestFormat_InvalidOrientation(t *testing.T) {
	got := Format(gps.Fix{}, ranging.NoReading, orientation.Invalid())
	fields := strings.Split(strings.TrimSuffix(got, "\n"), "\t")
	for _, f := range fields[10:] {
		assert.Equal(t, "NaN", f)
	}
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "#"))
	assert.Equal(t, "#gmt_date\tgmt_time\tnum_sats\tlongitude\tlatitude\tgps_altitude_m\tSOG_kt\tCOG\tHDOP\t"+
		"laser_altitude_cm\ttilt_deg\taccel_x\taccel_y\taccel_z\tgyro_x\tgyro_y\tgyro_z", lines[1])
}
