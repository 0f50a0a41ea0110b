package vgc

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/arloliu/go-vgc/logger"
)

// Default configuration values.
const (
	// DefaultReadTimeout is the per-read wait for a handshake byte or reply
	// payload. Timeouts are per read, not per operation.
	DefaultReadTimeout = 1 * time.Second

	DefaultDialTimeout = 3 * time.Second

	// DefaultBaudRate matches the controller's factory RS-232 setting.
	DefaultBaudRate = 9600
)

// Read timeout limits. The lower bound keeps the driver from spinning on
// sub-millisecond deadlines; the upper bound keeps a wedged controller from
// stalling a polling cycle indefinitely.
const (
	MinReadTimeout = 10 * time.Millisecond
	MaxReadTimeout = 60 * time.Second
)

// DeviceConfig holds all configuration for a gauge controller connection.
type DeviceConfig struct {
	// TCP endpoint (default transport).
	host string
	port int

	// Serial endpoint, used instead of TCP when serialPort is non-empty.
	serialPort string
	baudRate   int

	readTimeout time.Duration
	dialTimeout time.Duration

	capabilities Capability

	logger logger.Logger
}

// NewDeviceConfig creates a configuration for a controller reachable at
// host:port over TCP.
//
// opts are functional options applied in order; see With* functions.
func NewDeviceConfig(host string, port int, opts ...DeviceOption) (*DeviceConfig, error) {
	cfg := &DeviceConfig{
		baudRate:     DefaultBaudRate,
		readTimeout:  DefaultReadTimeout,
		dialTimeout:  DefaultDialTimeout,
		capabilities: DefaultCapabilities,
		logger:       logger.GetLogger(),
	}

	if err := cfg.setHost(host); err != nil {
		return nil, err
	}
	if err := cfg.setPort(port); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

func (cfg *DeviceConfig) setHost(host string) error {
	if ip := net.ParseIP(host); ip != nil {
		cfg.host = host
		return nil
	}

	host = strings.TrimPrefix(host, ".")
	host = strings.TrimSuffix(host, ".")
	if host != "" && !strings.ContainsAny(host, " \t") {
		cfg.host = host
		return nil
	}

	return fmt.Errorf("vgc: invalid host %q", host)
}

func (cfg *DeviceConfig) setPort(port int) error {
	if port < 0 || port > 65535 {
		return fmt.Errorf("vgc: port %d out of range [0, 65535]", port)
	}
	cfg.port = port

	return nil
}

// --- Getters ---

// Host returns the configured TCP host address.
func (cfg *DeviceConfig) Host() string { return cfg.host }

// Port returns the configured TCP port.
func (cfg *DeviceConfig) Port() int { return cfg.port }

// Addr returns "host:port".
func (cfg *DeviceConfig) Addr() string { return fmt.Sprintf("%s:%d", cfg.host, cfg.port) }

// SerialPort returns the serial device path, or "" when the TCP transport
// is configured.
func (cfg *DeviceConfig) SerialPort() string { return cfg.serialPort }

// BaudRate returns the configured serial baud rate.
func (cfg *DeviceConfig) BaudRate() int { return cfg.baudRate }

// IsSerial returns true when the serial transport is configured.
func (cfg *DeviceConfig) IsSerial() bool { return cfg.serialPort != "" }

// ReadTimeout returns the per-read timeout.
func (cfg *DeviceConfig) ReadTimeout() time.Duration { return cfg.readTimeout }

// DialTimeout returns the TCP dial timeout.
func (cfg *DeviceConfig) DialTimeout() time.Duration { return cfg.dialTimeout }

// Capabilities returns the configured capability set.
func (cfg *DeviceConfig) Capabilities() Capability { return cfg.capabilities }

// GetLogger returns the configured logger.
func (cfg *DeviceConfig) GetLogger() logger.Logger { return cfg.logger }

// --- DeviceOption ---

// DeviceOption is a functional option for configuring a DeviceConfig.
type DeviceOption interface {
	apply(*DeviceConfig) error
}

type deviceOptFunc func(*DeviceConfig) error

func (f deviceOptFunc) apply(cfg *DeviceConfig) error { return f(cfg) }

// WithSerialPort switches the transport to RS-232 on the given device path,
// e.g. "/dev/ttyUSB0". The host/port pair is ignored while a serial port is
// configured.
func WithSerialPort(path string, baudRate int) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if path == "" {
			return errors.New("vgc: serial port path must not be empty")
		}
		if baudRate <= 0 {
			return fmt.Errorf("vgc: baud rate %d must be positive", baudRate)
		}
		cfg.serialPort = path
		cfg.baudRate = baudRate

		return nil
	})
}

// WithReadTimeout sets the per-read timeout for handshake and payload reads.
func WithReadTimeout(d time.Duration) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if d < MinReadTimeout || d > MaxReadTimeout {
			return fmt.Errorf("vgc: read timeout %v out of range [%v, %v]", d, MinReadTimeout, MaxReadTimeout)
		}
		cfg.readTimeout = d

		return nil
	})
}

// WithDialTimeout sets the TCP dial timeout.
func WithDialTimeout(d time.Duration) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if d <= 0 {
			return errors.New("vgc: dial timeout must be positive")
		}
		cfg.dialTimeout = d

		return nil
	})
}

// WithCapabilities restricts or extends the device variant's feature set.
func WithCapabilities(caps Capability) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		cfg.capabilities = caps

		return nil
	})
}

// WithLogger sets the logger for the device.
// Use logger.NewNop() for a fully silent driver.
func WithLogger(l logger.Logger) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if l == nil {
			return errors.New("vgc: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
