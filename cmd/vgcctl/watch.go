package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-vgc/internal/pool"
	"github.com/arloliu/go-vgc/logger"
	"github.com/arloliu/go-vgc/vgc"
)

var watchConfigPath string

func init() {
	watchCmd.Flags().StringVarP(&watchConfigPath, "config", "c", "", "TOML watch configuration file (required)")
	_ = watchCmd.MarkFlagRequired("config")

	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the configured gauge channels periodically",
	Long: `watch polls the controller at a fixed interval and logs one structured
record per reading. A cycle that yields no valid reading is logged as a
warning and polling continues; connection faults trigger a reconnect on
the next cycle. Stop with Ctrl-C.

Example configuration:

  device_host = "10.0.0.5"
  device_port = 8000
  interval    = "10s"
  channels    = [1, 2]
  temperature = true
  logfile     = "vgc.log"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadWatchConfig(watchConfigPath)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, cfg)
	},
}

func runWatch(ctx context.Context, cfg watchConfig) error {
	log, closeLog, err := watchLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	dev, err := watchDevice(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = dev.Disconnect() }()

	if err := dev.Connect(); err != nil {
		// Tolerated: the poll loop retries every cycle.
		log.Error("initial connect failed, will retry", "error", err)
	}

	log.Info("watch started",
		"interval", cfg.Interval.String(),
		"channels", fmt.Sprint(cfg.Channels),
		"temperature", cfg.Temperature)

	for {
		pollOnce(dev, cfg, log)

		timer := pool.GetTimer(cfg.Interval)
		select {
		case <-ctx.Done():
			pool.PutTimer(timer)
			log.Info("watch stopped")

			return nil

		case <-timer.C:
			pool.PutTimer(timer)
		}
	}
}

// pollOnce runs one polling cycle: all configured gauge channels, then
// temperature when enabled. Sentinel readings are logged and skipped;
// connection faults tear the connection down so the next cycle redials.
func pollOnce(dev *vgc.Device, cfg watchConfig, log logger.Logger) {
	if !dev.IsConnected() {
		if err := dev.Connect(); err != nil {
			log.Error("reconnect failed", "error", err)

			return
		}
	}

	for _, ch := range cfg.Channels {
		v, err := dev.ReadPressure(ch)
		if err != nil {
			logReadFailure(dev, log, "pressure read failed", ch, err)

			continue
		}

		if v == vgc.SentinelReading {
			log.Warn("no valid reading this cycle", "gauge", ch)

			continue
		}

		log.Info("pressure", "gauge", ch, "value", v, "unit", dev.UnitName())
	}

	if cfg.Temperature {
		v, err := dev.ReadTemperature()
		switch {
		case err != nil:
			logReadFailure(dev, log, "temperature read failed", 0, err)
		case v == vgc.SentinelReading:
			log.Warn("no valid temperature this cycle")
		default:
			log.Info("temperature", "value", v)
		}
	}
}

func logReadFailure(dev *vgc.Device, log logger.Logger, msg string, gauge int, err error) {
	if gauge > 0 {
		log.Error(msg, "gauge", gauge, "error", err)
	} else {
		log.Error(msg, "error", err)
	}

	// A connection fault poisons the stream; reopen on the next cycle.
	if errors.Is(err, vgc.ErrConnectionFault) {
		_ = dev.Disconnect()
	}
}

func watchDevice(cfg watchConfig, log logger.Logger) (*vgc.Device, error) {
	opts := []vgc.DeviceOption{
		vgc.WithLogger(log),
	}
	if cfg.ReadTimeout > 0 {
		opts = append(opts, vgc.WithReadTimeout(cfg.ReadTimeout))
	}
	if cfg.SerialPort != "" {
		opts = append(opts, vgc.WithSerialPort(cfg.SerialPort, cfg.BaudRate))
	}

	devCfg, err := vgc.NewDeviceConfig(cfg.Host, cfg.Port, opts...)
	if err != nil {
		return nil, err
	}

	return vgc.NewDevice(devCfg)
}

// watchLogger builds the poller's logger: file-backed when a logfile is
// configured, the process default otherwise.
func watchLogger(cfg watchConfig) (logger.Logger, func(), error) {
	level := logger.InfoLevel
	if cfg.Verbose {
		level = logger.DebugLevel
	}

	if cfg.Logfile == "" {
		log := logger.GetLogger()
		log.SetLevel(level)

		return log, func() {}, nil
	}

	f, err := os.OpenFile(cfg.Logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open logfile: %w", err)
	}

	return logger.NewSlogWithWriter(f, level, false), func() { _ = f.Close() }, nil
}
