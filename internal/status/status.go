// Package status drives the three-channel status LED.
package status

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Color is a 3-bit RGB value: bit 0 red, bit 1 green, bit 2 blue.
type Color uint8

const (
	Black   Color = 0
	Red     Color = 1
	Green   Color = 2
	Yellow  Color = Red | Green
	Blue    Color = 4
	Magenta Color = Red | Blue
	Cyan    Color = Green | Blue
	White   Color = Red | Green | Blue
)

func (c Color) RGB() (r, g, b bool) {
	return c&Red != 0, c&Green != 0, c&Blue != 0
}

func (c Color) String() string {
	switch c {
	case Black:
		return "black"
	case Red:
		return "red"
	case Green:
		return "green"
	case Yellow:
		return "yellow"
	case Blue:
		return "blue"
	case Magenta:
		return "magenta"
	case Cyan:
		return "cyan"
	case White:
		return "white"
	}
	return "invalid"
}

// State is what the logger wants to tell the operator.
type State int

const (
	Off          State = iota
	Initializing       // bootstrap in progress
	NoFix              // acquiring a position fix
	Ready              // fix valid, sampling
	Writing            // record being written with a valid fix
	WritingNoFix       // record being written without a fix
	Confirm            // ready blink after bootstrap
	Error              // fatal blink
)

var stateColors = map[State]Color{
	Off:          Black,
	Initializing: Yellow,
	NoFix:        Blue,
	Ready:        Green,
	Writing:      White,
	WritingNoFix: Magenta,
	Confirm:      Cyan,
	Error:        Red,
}

func (s State) Color() Color {
	return stateColors[s]
}

// Output sets the three LED channels.
type Output interface {
	SetRGB(r, g, b bool) error
}

// Indicator maps states to colours and skips writes that would not change
// the LED.
type Indicator struct {
	out     Output
	cur     Color
	applied bool
}

func NewIndicator(out Output) *Indicator {
	if out == nil {
		out = Nop{}
	}
	return &Indicator{out: out}
}

func (i *Indicator) Set(s State) {
	i.SetColor(s.Color())
}

func (i *Indicator) SetColor(c Color) {
	if i.applied && c == i.cur {
		return
	}
	r, g, b := c.RGB()
	if err := i.out.SetRGB(r, g, b); err != nil {
		log.WithError(err).WithField("color", c).Debug("status: led write failed")
		return
	}
	i.cur = c
	i.applied = true
}

func (i *Indicator) Color() Color {
	return i.cur
}

// Nop is an Output for headless runs.
type Nop struct{}

func (Nop) SetRGB(r, g, b bool) error { return nil }

// Pins are the BCM GPIO numbers wired to the LED channels.
type Pins struct {
	Red, Green, Blue int
}

func (p Pins) validate() error {
	if p.Red <= 0 || p.Green <= 0 || p.Blue <= 0 {
		return errors.Errorf("status: invalid gpio pins r=%d g=%d b=%d", p.Red, p.Green, p.Blue)
	}
	if p.Red == p.Green || p.Red == p.Blue || p.Green == p.Blue {
		return errors.Errorf("status: gpio pins must differ r=%d g=%d b=%d", p.Red, p.Green, p.Blue)
	}
	return nil
}

// Open returns the GPIO output for pins. When activeLow is set the lines are
// driven low to light the LED (common-anode wiring).
func Open(pins Pins, activeLow bool) (*GPIO, error) {
	if err := pins.validate(); err != nil {
		return nil, err
	}
	return openGPIOFn(pins, activeLow)
}
