package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/arloliu/go-vgc/vgc"
)

// watchConfig is the resolved configuration for the watch poller.
type watchConfig struct {
	Host        string
	Port        int
	SerialPort  string
	BaudRate    int
	Interval    time.Duration
	ReadTimeout time.Duration
	Channels    []int
	Temperature bool
	Logfile     string
	Verbose     bool
}

type watchFileConfig struct {
	Host        string `toml:"device_host"`
	Port        int    `toml:"device_port"`
	SerialPort  string `toml:"serial_port"`
	BaudRate    int    `toml:"baud_rate"`
	Interval    string `toml:"interval"`
	ReadTimeout string `toml:"read_timeout"`
	Channels    []int  `toml:"channels"`
	Temperature bool   `toml:"temperature"`
	Logfile     string `toml:"logfile"`
	Verbose     bool   `toml:"verbose"`
}

func defaultWatchConfig() watchConfig {
	return watchConfig{
		Host:        "127.0.0.1",
		Port:        8000,
		BaudRate:    vgc.DefaultBaudRate,
		Interval:    10 * time.Second,
		ReadTimeout: vgc.DefaultReadTimeout,
		Channels:    []int{1},
	}
}

// loadWatchConfig reads a TOML poller configuration, applying defaults for
// keys that are absent.
func loadWatchConfig(path string) (watchConfig, error) {
	cfg := defaultWatchConfig()

	var raw watchFileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return watchConfig{}, fmt.Errorf("load watch config: %w", err)
	}

	if meta.IsDefined("device_host") {
		cfg.Host = strings.TrimSpace(raw.Host)
	}
	if meta.IsDefined("device_port") {
		cfg.Port = raw.Port
	}
	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}
	if meta.IsDefined("baud_rate") {
		cfg.BaudRate = raw.BaudRate
	}

	if meta.IsDefined("interval") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Interval))
		if err != nil {
			return watchConfig{}, fmt.Errorf("parse interval: %w", err)
		}
		cfg.Interval = d
	}

	if meta.IsDefined("read_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.ReadTimeout))
		if err != nil {
			return watchConfig{}, fmt.Errorf("parse read_timeout: %w", err)
		}
		cfg.ReadTimeout = d
	}

	if meta.IsDefined("channels") {
		cfg.Channels = raw.Channels
	}
	if meta.IsDefined("temperature") {
		cfg.Temperature = raw.Temperature
	}
	if meta.IsDefined("logfile") {
		cfg.Logfile = strings.TrimSpace(raw.Logfile)
	}
	if meta.IsDefined("verbose") {
		cfg.Verbose = raw.Verbose
	}

	return cfg, validateWatchConfig(cfg)
}

func validateWatchConfig(cfg watchConfig) error {
	if cfg.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %v", cfg.Interval)
	}

	if len(cfg.Channels) == 0 {
		return fmt.Errorf("watch config names no gauge channels")
	}

	for _, ch := range cfg.Channels {
		if ch < 1 {
			return fmt.Errorf("gauge channel %d must be positive", ch)
		}
	}

	return nil
}
