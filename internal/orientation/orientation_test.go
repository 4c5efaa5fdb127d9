package orientation

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIMU struct {
	readings []Raw
	initErr  error
	failAt   int
	calls    int
}

func (f *fakeIMU) Init() error { return f.initErr }

func (f *fakeIMU) ReadRaw() (Raw, error) {
	f.calls++
	if f.failAt > 0 && f.calls == f.failAt {
		return Raw{}, errors.New("bus timeout")
	}
	return f.readings[(f.calls-1)%len(f.readings)], nil
}

func TestSampler_IdenticalReadingsIndependentOfCount(t *testing.T) {
	raw := Raw{Ax: 1000, Ay: -2000, Az: 16393, Gx: 10, Gy: -20, Gz: 30}
	// Remap: x'=z, y'=-x, z'=-y.
	want := Sample{
		AccelX: 16393 * AccelScale,
		AccelY: -1000 * AccelScale,
		AccelZ: 2000 * AccelScale,
		GyroX:  30 * GyroScale,
		GyroY:  -10 * GyroScale,
		GyroZ:  20 * GyroScale,
	}
	want.TiltDeg = Tilt(want.AccelX, want.AccelY, want.AccelZ)

	for _, n := range []int{1, 7, 100} {
		imu := &fakeIMU{readings: []Raw{raw}}
		got, err := NewSampler(imu, n).Read()
		require.NoError(t, err)
		assert.Equal(t, n, imu.calls)
		assert.InDelta(t, want.AccelX, got.AccelX, 1e-12, "n=%d", n)
		assert.InDelta(t, want.AccelY, got.AccelY, 1e-12, "n=%d", n)
		assert.InDelta(t, want.AccelZ, got.AccelZ, 1e-12, "n=%d", n)
		assert.InDelta(t, want.GyroX, got.GyroX, 1e-12, "n=%d", n)
		assert.InDelta(t, want.GyroY, got.GyroY, 1e-12, "n=%d", n)
		assert.InDelta(t, want.GyroZ, got.GyroZ, 1e-12, "n=%d", n)
		assert.InDelta(t, want.TiltDeg, got.TiltDeg, 1e-9, "n=%d", n)
	}
}

func TestSampler_AveragesWithoutOverflow(t *testing.T) {
	imu := &fakeIMU{readings: []Raw{{Az: math.MaxInt16}, {Az: math.MaxInt16 - 2}}}
	got, err := NewSampler(imu, 100).Read()
	require.NoError(t, err)
	assert.InDelta(t, float64(math.MaxInt16-1)*AccelScale, got.AccelX, 1e-9)
}

func TestSampler_DefaultCount(t *testing.T) {
	imu := &fakeIMU{readings: []Raw{{}}}
	_, err := NewSampler(imu, 0).Read()
	require.NoError(t, err)
	assert.Equal(t, DefaultSamples, imu.calls)
}

func TestSampler_ReadErrorDiscardsBurst(t *testing.T) {
	imu := &fakeIMU{readings: []Raw{{Ax: 1}}, failAt: 50}
	s, err := NewSampler(imu, 100).Read()
	assert.Error(t, err)
	assert.Equal(t, Sample{}, s)
	assert.Equal(t, 50, imu.calls)
}

func TestSampler_InitPropagates(t *testing.T) {
	assert.Error(t, NewSampler(&fakeIMU{initErr: errors.New("whoami")}, 1).Init())
	assert.Error(t, NewSampler(nil, 1).Init())
}

func TestTilt(t *testing.T) {
	assert.InDelta(t, 0, Tilt(0, 0, -1), 1e-12)
	assert.InDelta(t, 0, Tilt(0, 0, 1), 1e-12)
	assert.InDelta(t, 45, Tilt(1, 0, 1), 1e-9)
	assert.InDelta(t, 45, Tilt(0, 1, -1), 1e-9)
	assert.InDelta(t, 90, Tilt(1, 0, 0), 1e-12)
	assert.InDelta(t, 90, Tilt(0, -0.5, 1e-12), 1e-12)
	assert.Equal(t, 0.0, Tilt(0, 0, 0))

	// Approaches 90 as the vertical component vanishes.
	prev := 0.0
	for _, z := range []float64{1, 0.1, 0.01, 0.001} {
		tilt := Tilt(1, 0, z)
		assert.Greater(t, tilt, prev)
		prev = tilt
	}
	assert.InDelta(t, 90, prev, 0.1)
}

func TestRemap(t *testing.T) {
	x, y, z := Remap(1, 2, 3)
	assert.Equal(t, []int64{3, -1, -2}, []int64{x, y, z})
}

func TestInvalid(t *testing.T) {
	s := Invalid()
	assert.True(t, math.IsNaN(s.AccelX))
	assert.True(t, math.IsNaN(s.TiltDeg))
}
