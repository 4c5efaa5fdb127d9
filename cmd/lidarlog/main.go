package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"lidarlog/internal/acquire"
	"lidarlog/internal/config"
)

func configureLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log.level")
	}
	log.SetLevel(lvl)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	return nil
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "/etc/lidarlog.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	if err := configureLogging(cfg.Log.Level); err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hw, err := newHardware(cfg)
	if err != nil {
		log.Fatalf("hardware setup failed: %v", err)
	}
	defer hw.Close()

	log.WithField("config", configPath).Info("lidarlog starting")

	if err := hw.sched.Bootstrap(); err != nil {
		var fe *acquire.FatalError
		if !errors.As(err, &fe) {
			log.Fatalf("bootstrap failed: %v", err)
		}
		log.WithError(err).WithField("blinks", fe.Code.Blinks()).Error("bootstrap failed, halting")
		hw.sched.Halt(ctx, fe.Code)
		return
	}

	if err := hw.sched.Run(ctx); err != nil {
		log.WithError(err).Error("log file close failed")
	}
	log.Info("lidarlog stopping")
}
