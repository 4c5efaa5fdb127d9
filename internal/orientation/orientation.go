// Package orientation turns bursts of raw IMU readings into one averaged,
// vehicle-frame sample with a tilt angle.
package orientation

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// AccelScale converts ±2 g counts to g.
	AccelScale = 0.000061
	// GyroScale converts 245 dps counts to degrees per second.
	GyroScale = 0.00875

	DefaultSamples = 100
)

// Raw is one reading in sensor counts and sensor axes.
type Raw struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

// RawReader is the IMU as seen by the sampler.
type RawReader interface {
	Init() error
	ReadRaw() (Raw, error)
}

// Sample is an averaged reading in the vehicle frame.
type Sample struct {
	AccelX, AccelY, AccelZ float64 // g
	GyroX, GyroY, GyroZ    float64 // deg/s
	TiltDeg                float64
}

// Invalid is written when the IMU could not be read.
func Invalid() Sample {
	n := math.NaN()
	return Sample{AccelX: n, AccelY: n, AccelZ: n, GyroX: n, GyroY: n, GyroZ: n, TiltDeg: n}
}

// Remap rotates a sensor-frame vector into the vehicle frame for the board's
// mounting: x' = z, y' = -x, z' = -y.
func Remap(x, y, z int64) (int64, int64, int64) {
	return z, -x, -y
}

// Tilt returns the angle between the vector and the vertical axis, in
// degrees. A vector lying in the horizontal plane is 90; the zero vector is 0.
func Tilt(x, y, z float64) float64 {
	horizontal := math.Sqrt(x*x + y*y)
	if math.Abs(z) < 1e-9 {
		if horizontal == 0 {
			return 0
		}
		return 90
	}
	return math.Abs(math.Atan(horizontal/z)) * 180 / math.Pi
}

type Sampler struct {
	dev     RawReader
	samples int
}

// NewSampler averages n readings per sample; n <= 0 selects DefaultSamples.
func NewSampler(dev RawReader, n int) *Sampler {
	if n <= 0 {
		n = DefaultSamples
	}
	return &Sampler{dev: dev, samples: n}
}

func (s *Sampler) Init() error {
	if s == nil || s.dev == nil {
		return errors.New("orientation: no device")
	}
	return s.dev.Init()
}

// Read takes the configured number of readings back to back. Any failed read
// discards the whole burst.
func (s *Sampler) Read() (Sample, error) {
	var ax, ay, az, gx, gy, gz int64
	for i := 0; i < s.samples; i++ {
		r, err := s.dev.ReadRaw()
		if err != nil {
			return Sample{}, errors.Wrapf(err, "orientation: reading %d of %d", i+1, s.samples)
		}
		x, y, z := Remap(int64(r.Ax), int64(r.Ay), int64(r.Az))
		ax, ay, az = ax+x, ay+y, az+z
		x, y, z = Remap(int64(r.Gx), int64(r.Gy), int64(r.Gz))
		gx, gy, gz = gx+x, gy+y, gz+z
	}

	n := float64(s.samples)
	out := Sample{
		AccelX: float64(ax) / n * AccelScale,
		AccelY: float64(ay) / n * AccelScale,
		AccelZ: float64(az) / n * AccelScale,
		GyroX:  float64(gx) / n * GyroScale,
		GyroY:  float64(gy) / n * GyroScale,
		GyroZ:  float64(gz) / n * GyroScale,
	}
	out.TiltDeg = Tilt(out.AccelX, out.AccelY, out.AccelZ)
	return out, nil
}
