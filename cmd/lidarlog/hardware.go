package main

import (
	"io"
	"time"

	log "github.com/sirupsen/logrus"

	"lidarlog/internal/acquire"
	"lidarlog/internal/config"
	"lidarlog/internal/diag"
	"lidarlog/internal/gps"
	"lidarlog/internal/i2c"
	"lidarlog/internal/orientation"
	"lidarlog/internal/ranging"
	"lidarlog/internal/status"
	"lidarlog/internal/storage"
)

// hardware owns every device handle the scheduler uses.
type hardware struct {
	led     *status.GPIO
	buses   map[string]*i2c.Bus
	gps     *gps.Adapter
	diag    *diag.Stream
	devices acquire.Devices
	sched   *acquire.Scheduler
}

// openBus opens path once; later calls share the handle. A bus that cannot
// be opened yields nil, which the devices on it report when initialised.
func (h *hardware) openBus(path string, timeout time.Duration) *i2c.Bus {
	if b, ok := h.buses[path]; ok {
		return b
	}
	b, err := i2c.Open(path)
	if err != nil {
		log.WithError(err).Error("i2c bus unavailable")
		b = nil
	} else if err := b.SetTimeout(timeout); err != nil {
		log.WithError(err).Warn("i2c timeout not set, transfers use the adapter default")
	}
	h.buses[path] = b
	return b
}

func newHardware(cfg config.Config) (*hardware, error) {
	h := &hardware{buses: map[string]*i2c.Bus{}}

	var out status.Output = status.Nop{}
	if cfg.Status.Driver == "gpio" {
		led, err := status.Open(status.Pins{Red: cfg.Status.RedPin, Green: cfg.Status.GreenPin, Blue: cfg.Status.BluePin}, cfg.Status.ActiveLow)
		if err != nil {
			// The logger is still useful without its LED.
			log.WithError(err).Warn("status led unavailable")
		} else {
			h.led = led
			out = led
		}
	}

	pos, err := gps.New(gps.Config{Device: cfg.GPS.Device, Baud: cfg.GPS.Baud, Model: cfg.GPS.Model})
	if err != nil {
		h.Close()
		return nil, err
	}
	h.gps = pos

	rangingAddr := cfg.Ranging.Addr
	if rangingAddr == 0 {
		rangingAddr = ranging.DefaultAddress(cfg.Ranging.Model)
	}
	rangingBus := h.openBus(cfg.Ranging.Bus, cfg.Ranging.Timeout)
	wait := func(d time.Duration) { h.sched.Wait(d) }
	rng, err := ranging.New(cfg.Ranging.Model, rangingBus.Dev(rangingAddr), wait)
	if err != nil {
		h.Close()
		return nil, err
	}

	imuBus := h.openBus(cfg.IMU.Bus, cfg.Ranging.Timeout)
	imu := orientation.NewSampler(&orientation.LSM6{Dev: imuBus.Dev(cfg.IMU.Addr), Wait: wait}, cfg.IMU.Samples)

	h.devices = acquire.Devices{
		Indicator:   status.NewIndicator(out),
		Positioning: pos,
		Ranging:     rng,
		Orientation: imu,
		Storage:     &storage.Volume{Dir: cfg.Storage.Dir, Prefix: cfg.Storage.Prefix, Ext: cfg.Storage.Ext},
	}
	if cfg.Diag.Enable {
		dc := diag.Config{Device: cfg.Diag.Device, Baud: cfg.Diag.Baud, Wait: cfg.Diag.Wait}
		h.devices.Diag = func(pause func(time.Duration)) (io.Writer, error) {
			s, err := diag.Open(dc, pause)
			if err != nil {
				return nil, err
			}
			h.diag = s
			if cfg.Diag.EchoNMEA {
				pos.SetEcho(s)
			}
			return s, nil
		}
	}

	h.sched = acquire.New(acquire.Config{
		StaleAfter:    cfg.Acquire.StaleAfter,
		NoFixInterval: cfg.Acquire.NoFixInterval,
		FixTimeout:    cfg.GPS.ReadyTimeout,
		Settle:        cfg.Acquire.Settle,
	}, h.devices, nil)
	return h, nil
}

func (h *hardware) Close() {
	if h == nil {
		return
	}
	if h.sched != nil {
		if err := h.sched.Close(); err != nil {
			log.WithError(err).Error("log file close failed")
		}
	}
	if h.gps != nil {
		_ = h.gps.Close()
		h.gps = nil
	}
	if h.diag != nil {
		_ = h.diag.Close()
		h.diag = nil
	}
	for path, b := range h.buses {
		if b != nil {
			_ = b.Close()
		}
		delete(h.buses, path)
	}
	if h.led != nil {
		_ = h.led.Close()
		h.led = nil
	}
}
