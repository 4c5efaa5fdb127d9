//go:build linux && (arm || arm64)

package status

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/warthog618/go-gpiocdev"
)

// GPIO drives the LED through the Linux GPIO character device.
type GPIO struct {
	chip      *gpiocdev.Chip
	lines     *gpiocdev.Lines
	activeLow bool
}

func chipCandidates() []string {
	// Pi 5 kernels may expose the header on gpiochip4.
	out := []string{"/dev/gpiochip0", "/dev/gpiochip4"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "gpiochip") {
			out = append(out, filepath.Join("/dev", e.Name()))
		}
	}
	return out
}

func openGPIO(pins Pins, activeLow bool) (*GPIO, error) {
	names := []string{
		fmt.Sprintf("GPIO%d", pins.Red),
		fmt.Sprintf("GPIO%d", pins.Green),
		fmt.Sprintf("GPIO%d", pins.Blue),
	}
	off := 0
	if activeLow {
		off = 1
	}

	for _, chipPath := range chipCandidates() {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offsets := make([]int, 0, len(names))
		for _, name := range names {
			o, err := chip.FindLine(name)
			if err != nil {
				break
			}
			offsets = append(offsets, o)
		}
		if len(offsets) != len(names) {
			_ = chip.Close()
			continue
		}
		lines, err := chip.RequestLines(offsets, gpiocdev.AsOutput(off, off, off), gpiocdev.WithConsumer("lidarlog-status"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &GPIO{chip: chip, lines: lines, activeLow: activeLow}, nil
	}
	return nil, errors.Errorf("status: gpio lines %v not found (or busy)", names)
}

var openGPIOFn = openGPIO

func (g *GPIO) SetRGB(r, gr, b bool) error {
	if g == nil || g.lines == nil {
		return errors.New("status: gpio not initialized")
	}
	level := func(on bool) int {
		if on != g.activeLow {
			return 1
		}
		return 0
	}
	return g.lines.SetValues([]int{level(r), level(gr), level(b)})
}

func (g *GPIO) Close() error {
	if g == nil || g.lines == nil {
		return nil
	}
	_ = g.SetRGB(false, false, false)
	err := g.lines.Close()
	g.lines = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
