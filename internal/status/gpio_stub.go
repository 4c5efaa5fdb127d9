//go:build !linux || (!arm && !arm64)

package status

import "github.com/pkg/errors"

// GPIO is unavailable off Linux/ARM.
type GPIO struct{}

func openGPIO(pins Pins, activeLow bool) (*GPIO, error) {
	return nil, errors.New("status: gpio unsupported on this platform")
}

var openGPIOFn = openGPIO

func (g *GPIO) SetRGB(r, gr, b bool) error { return errors.New("status: gpio unsupported on this platform") }
func (g *GPIO) Close() error               { return nil }
