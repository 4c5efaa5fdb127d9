package ranging

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBus answers reads from a queue of canned responses and records writes.
type fakeBus struct {
	writes    [][]byte
	responses [][]byte
	readErr   error
	writeErr  error
	reads     int
}

func (f *fakeBus) Write(p []byte) error {
	f.writes = append(f.writes, append([]byte(nil), p...))
	return f.writeErr
}

func (f *fakeBus) Read(p []byte) (int, error) {
	f.reads++
	if f.readErr != nil {
		return 0, f.readErr
	}
	if len(f.responses) == 0 {
		return 0, nil
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return copy(p, r), nil
}

func frame(dist, strength, temp uint16) []byte {
	b := []byte{
		0x59, 0x59,
		byte(dist), byte(dist >> 8),
		byte(strength), byte(strength >> 8),
		byte(temp), byte(temp >> 8),
		0,
	}
	b[8] = Checksum(b[:8])
	return b
}

func TestDecodeFrame_Valid(t *testing.T) {
	for _, dist := range []uint16{0, 1, 250, 0x1234, 0xFFFF} {
		d, ok := DecodeFrame(frame(dist, 900, 40))
		require.True(t, ok, "dist=%d", dist)
		assert.Equal(t, Distance(dist), d)
	}
}

func TestDecodeFrame_SingleBitFlipInHeaderOrChecksum(t *testing.T) {
	good := frame(1234, 100, 30)
	for _, idx := range []int{0, 1, 8} {
		for bit := 0; bit < 8; bit++ {
			b := append([]byte(nil), good...)
			b[idx] ^= 1 << bit
			d, ok := DecodeFrame(b)
			assert.False(t, ok, "byte=%d bit=%d", idx, bit)
			assert.Equal(t, NoReading, d)
		}
	}
}

func TestDecodeFrame_PayloadCorruptionCaughtByChecksum(t *testing.T) {
	b := frame(500, 100, 30)
	b[3] ^= 0x01
	_, ok := DecodeFrame(b)
	assert.False(t, ok)
}

func TestDecodeFrame_WrongLength(t *testing.T) {
	good := frame(42, 1, 2)
	for _, n := range []int{0, 1, 8} {
		d, ok := DecodeFrame(good[:n])
		assert.False(t, ok, "len=%d", n)
		assert.Equal(t, NoReading, d)
	}
	d, ok := DecodeFrame(append(good, 0x00))
	assert.False(t, ok)
	assert.Equal(t, NoReading, d)
}

func TestParseFrame_Fields(t *testing.T) {
	f, ok := ParseFrame(frame(321, 1500, 0x2345))
	require.True(t, ok)
	assert.Equal(t, Frame{Distance: 321, Strength: 1500, Temp: 0x2345}, f)
}

func TestTF02_InitHandshake(t *testing.T) {
	bus := &fakeBus{responses: [][]byte{
		{0x5A, 0x07, 0x01, 0x03, 0x02, 0x01, 0x6A},
		{0x5A, 0x06, 0x03, 0xE8, 0x03, 0x4E},
		{0x5A, 0x05, 0x05, 0x01, 0x65},
		{0x5A, 0x05, 0x11, 0x01, 0x71},
	}}
	var waits []time.Duration
	dev, err := New(ModelTF02, bus, func(d time.Duration) { waits = append(waits, d) })
	require.NoError(t, err)

	require.NoError(t, dev.Init())
	assert.Equal(t, [][]byte{tf02CmdVersion, tf02CmdFrameRate, tf02CmdFormat, tf02CmdSave}, bus.writes)
	assert.Equal(t, []time.Duration{tf02StepDelay, tf02StepDelay, tf02StepDelay, tf02StepDelay}, waits)
	assert.Equal(t, "1.2.3", dev.(*TF02).Version)
}

func TestTF02_InitSaveAckMismatchIsNotFatal(t *testing.T) {
	hook := logtest.NewGlobal()
	t.Cleanup(hook.Reset)

	bus := &fakeBus{responses: [][]byte{
		{0x5A, 0x07, 0x01, 0x03, 0x02, 0x01, 0x6A},
		{0x5A, 0x06, 0x03, 0xE8, 0x03, 0x4E},
		{0x5A, 0x05, 0x05, 0x01, 0x65},
		{0x5A, 0x05, 0x11, 0x00, 0x70},
	}}
	dev, err := New(ModelTF02, bus, func(time.Duration) {})
	require.NoError(t, err)

	hook.Reset()
	require.NoError(t, dev.Init())
	assert.Len(t, bus.writes, 4)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.HasPrefix(e.Message, "tf02: unexpected save ack") {
			warned = true
		}
	}
	assert.True(t, warned, "mismatched save ack is logged")
}

func TestTF02_InitFailsWhenSilent(t *testing.T) {
	bus := &fakeBus{}
	dev, err := New(ModelTF02, bus, func(time.Duration) {})
	require.NoError(t, err)

	assert.Error(t, dev.Init())
	assert.Len(t, bus.writes, 1, "no retry and no further handshake")
}

func TestTF02_InitFailsOnTimeout(t *testing.T) {
	bus := &fakeBus{readErr: errors.New("timeout")}
	dev, _ := New(ModelTF02, bus, func(time.Duration) {})
	assert.Error(t, dev.Init())
}

func TestTF02_Poll(t *testing.T) {
	bus := &fakeBus{responses: [][]byte{frame(777, 10, 20)}}
	dev, _ := New(ModelTF02, bus, nil)

	assert.Equal(t, Distance(777), dev.Poll())
	assert.Equal(t, [][]byte{tf02CmdTrigger}, bus.writes)
}

func TestTF02_PollRejectsBadInput(t *testing.T) {
	bad := frame(777, 10, 20)
	bad[8]++
	cases := map[string]*fakeBus{
		"short":    {responses: [][]byte{frame(777, 10, 20)[:5]}},
		"checksum": {responses: [][]byte{bad}},
		"silent":   {},
		"timeout":  {readErr: errors.New("timeout")},
		"nack":     {writeErr: errors.New("nack")},
	}
	for name, bus := range cases {
		t.Run(name, func(t *testing.T) {
			dev, _ := New(ModelTF02, bus, nil)
			assert.Equal(t, NoReading, dev.Poll())
		})
	}
}

func TestSF11(t *testing.T) {
	bus := &fakeBus{responses: [][]byte{{0x01, 0x02}, {0x07}}}
	dev, err := New("SF11", bus, nil)
	require.NoError(t, err)

	require.NoError(t, dev.Init())
	assert.Equal(t, [][]byte{{0x00}}, bus.writes)
	assert.Equal(t, Distance(0x0102), dev.Poll())
	assert.Equal(t, NoReading, dev.Poll(), "one byte is not a reading")
	assert.Equal(t, NoReading, dev.Poll(), "nothing is not a reading")
}

func TestNew_Errors(t *testing.T) {
	_, err := New("lidarlite", &fakeBus{}, nil)
	assert.EqualError(t, err, `ranging: unknown model "lidarlite"`)

	_, err = New(ModelTF02, nil, nil)
	assert.Error(t, err)
}

func TestDefaultAddress(t *testing.T) {
	assert.Equal(t, uint16(0x10), DefaultAddress("tf02"))
	assert.Equal(t, uint16(0x55), DefaultAddress("SF11"))
	assert.Equal(t, uint16(0), DefaultAddress("x"))
}
