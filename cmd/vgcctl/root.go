package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-vgc/logger"
	"github.com/arloliu/go-vgc/vgc"
)

var (
	// TCP connection flags
	deviceHost string
	devicePort int

	// Serial connection flags
	serialPort string
	baudRate   int

	readTimeout time.Duration
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "vgcctl",
	Short: "Inficon VGC-series vacuum gauge controller utility",
	Long: `vgcctl talks to Inficon VGC-series vacuum gauge pressure controllers
over TCP or RS-232.

Provides one-shot commands for pressure, temperature, display unit, and
controller identity, a raw-command console for manual protocol entry, and
a periodic watch mode for continuous polling.

Connection modes:
  TCP:    --host 10.0.0.5 --port 8000
  Serial: --serial /dev/ttyUSB0 [--baud 9600]

Numeric reads report "no valid reading" when the controller stays silent
or replies with garbage; that is transient noise, not a protocol error.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	// TCP connection flags
	rootCmd.PersistentFlags().StringVar(&deviceHost, "host", "127.0.0.1", "Controller host (TCP)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 8000, "Controller port (TCP)")

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&serialPort, "serial", "s", "", "Serial port device (overrides TCP)")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", vgc.DefaultBaudRate, "Baud rate (serial only)")

	rootCmd.PersistentFlags().DurationVar(&readTimeout, "timeout", vgc.DefaultReadTimeout, "Per-read response timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newConnectedDevice builds a device from the persistent flags and opens
// the connection.
func newConnectedDevice() (*vgc.Device, error) {
	log := logger.GetLogger()
	if verbose {
		log.SetLevel(logger.DebugLevel)
	}

	opts := []vgc.DeviceOption{
		vgc.WithReadTimeout(readTimeout),
		vgc.WithLogger(log),
	}
	if serialPort != "" {
		opts = append(opts, vgc.WithSerialPort(serialPort, baudRate))
	}

	cfg, err := vgc.NewDeviceConfig(deviceHost, devicePort, opts...)
	if err != nil {
		return nil, err
	}

	dev, err := vgc.NewDevice(cfg)
	if err != nil {
		return nil, err
	}

	if err := dev.Connect(); err != nil {
		return nil, err
	}

	return dev, nil
}
