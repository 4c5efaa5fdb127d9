package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Diag    DiagConfig    `yaml:"diag"`
	Status  StatusConfig  `yaml:"status"`
	Ranging RangingConfig `yaml:"ranging"`
	GPS     GPSConfig     `yaml:"gps"`
	IMU     IMUConfig     `yaml:"imu"`
	Storage StorageConfig `yaml:"storage"`
	Acquire AcquireConfig `yaml:"acquire"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type DiagConfig struct {
	Enable bool `yaml:"enable"`
	// Device is "stdout" or a serial device.
	Device   string        `yaml:"device"`
	Baud     int           `yaml:"baud"`
	Wait     time.Duration `yaml:"wait"`
	EchoNMEA bool          `yaml:"echo_nmea"`
}

type StatusConfig struct {
	// Driver is "gpio" or "none".
	Driver    string `yaml:"driver"`
	RedPin    int    `yaml:"red_pin"`
	GreenPin  int    `yaml:"green_pin"`
	BluePin   int    `yaml:"blue_pin"`
	ActiveLow bool   `yaml:"active_low"`
}

type RangingConfig struct {
	// Model is "tf02" or "sf11".
	Model   string        `yaml:"model"`
	Bus     string        `yaml:"bus"`
	Addr    uint16        `yaml:"addr"`
	Timeout time.Duration `yaml:"timeout"`
}

type GPSConfig struct {
	// Model is "em506", "gt735t", "gt735t-nmea" or "none".
	Model string `yaml:"model"`
	// Device may be empty to auto-detect.
	Device       string        `yaml:"device"`
	Baud         int           `yaml:"baud"`
	ReadyTimeout time.Duration `yaml:"ready_timeout"`
}

type IMUConfig struct {
	Bus     string `yaml:"bus"`
	Addr    uint16 `yaml:"addr"`
	Samples int    `yaml:"samples"`
}

type StorageConfig struct {
	Dir    string `yaml:"dir"`
	Prefix string `yaml:"prefix"`
	Ext    string `yaml:"ext"`
}

type AcquireConfig struct {
	StaleAfter    time.Duration `yaml:"stale_after"`
	NoFixInterval time.Duration `yaml:"nofix_interval"`
	Settle        time.Duration `yaml:"settle"`
}

func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}

	if cfg.Storage.Dir == "" {
		return Config{}, fmt.Errorf("storage.dir is required")
	}
	if cfg.Storage.Prefix == "" {
		cfg.Storage.Prefix = "LOG_"
	}
	if cfg.Storage.Ext == "" {
		cfg.Storage.Ext = ".CSV"
	}
	if strings.ContainsAny(cfg.Storage.Prefix+cfg.Storage.Ext, `/\`) {
		return Config{}, fmt.Errorf("storage.prefix and storage.ext must not contain path separators")
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Diag.Enable {
		if cfg.Diag.Device == "" {
			cfg.Diag.Device = "stdout"
		}
		if cfg.Diag.Baud <= 0 {
			cfg.Diag.Baud = 9600
		}
		if cfg.Diag.Wait <= 0 {
			cfg.Diag.Wait = 6 * time.Second
		}
	} else if cfg.Diag.EchoNMEA {
		return Config{}, fmt.Errorf("diag.echo_nmea requires diag.enable")
	}

	cfg.Status.Driver = strings.ToLower(strings.TrimSpace(cfg.Status.Driver))
	switch cfg.Status.Driver {
	case "":
		cfg.Status.Driver = "gpio"
	case "gpio", "none":
	default:
		return Config{}, fmt.Errorf("status.driver must be 'gpio' or 'none'")
	}
	if cfg.Status.RedPin == 0 && cfg.Status.GreenPin == 0 && cfg.Status.BluePin == 0 {
		cfg.Status.RedPin, cfg.Status.GreenPin, cfg.Status.BluePin = 17, 27, 22
	}

	cfg.Ranging.Model = strings.ToLower(strings.TrimSpace(cfg.Ranging.Model))
	switch cfg.Ranging.Model {
	case "":
		cfg.Ranging.Model = "tf02"
	case "tf02", "sf11":
	default:
		return Config{}, fmt.Errorf("ranging.model must be 'tf02' or 'sf11'")
	}
	if cfg.Ranging.Bus == "" {
		cfg.Ranging.Bus = "/dev/i2c-1"
	}
	if cfg.Ranging.Timeout <= 0 {
		cfg.Ranging.Timeout = 250 * time.Millisecond
	}
	if cfg.Ranging.Addr > 0x7F {
		return Config{}, fmt.Errorf("ranging.addr must be a 7-bit address")
	}

	cfg.GPS.Model = strings.ToLower(strings.TrimSpace(cfg.GPS.Model))
	if cfg.GPS.Model == "" {
		cfg.GPS.Model = "em506"
	}
	if cfg.GPS.ReadyTimeout <= 0 {
		cfg.GPS.ReadyTimeout = 60 * time.Second
	}
	if cfg.GPS.Baud < 0 {
		return Config{}, fmt.Errorf("gps.baud must be > 0")
	}

	if cfg.IMU.Bus == "" {
		cfg.IMU.Bus = cfg.Ranging.Bus
	}
	if cfg.IMU.Addr == 0 {
		cfg.IMU.Addr = 0x6B
	}
	if cfg.IMU.Addr > 0x7F {
		return Config{}, fmt.Errorf("imu.addr must be a 7-bit address")
	}
	if cfg.IMU.Samples <= 0 {
		cfg.IMU.Samples = 100
	}

	if cfg.Acquire.StaleAfter <= 0 {
		cfg.Acquire.StaleAfter = 1750 * time.Millisecond
	}
	if cfg.Acquire.NoFixInterval <= 0 {
		cfg.Acquire.NoFixInterval = 5 * time.Second
	}
	if cfg.Acquire.Settle <= 0 {
		cfg.Acquire.Settle = 2 * time.Second
	}

	return cfg, nil
}
