package vgc

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/arloliu/go-vgc/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

// Device is the command façade for one gauge controller.
//
// It owns its connection exclusively and serializes commands with an
// internal mutex held for the whole command/response cycle, so at most one
// command is in flight at a time. A polling loop and a manual console can
// therefore share one Device safely.
type Device struct {
	cfg    *DeviceConfig
	logger logger.Logger

	// mu guards the transport, cached identity, and cached unit name for
	// the duration of each exchange.
	mu        sync.Mutex
	conn      Conn
	transport *lineTransport
	identity  *Identity
	unitName  string

	// lastReadings caches the most recent valid pressure per gauge channel.
	// Readable without the command mutex.
	lastReadings *xsync.MapOf[int, float64]

	metrics DeviceMetrics
}

// NewDevice creates a Device for the given configuration. The device is
// not connected until Connect is called.
func NewDevice(cfg *DeviceConfig) (*Device, error) {
	if cfg == nil {
		return nil, errors.New("vgc: device config is nil")
	}

	return &Device{
		cfg:          cfg,
		logger:       cfg.logger,
		lastReadings: xsync.NewMapOf[int, float64](),
	}, nil
}

// --- Lifecycle ---

// Connect opens the configured transport. Calling Connect on an already
// connected device is a no-op.
func (d *Device) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport != nil {
		d.logger.Debug("vgc: already connected", "endpoint", d.endpoint())

		return nil
	}

	conn, err := dial(d.cfg)
	if err != nil {
		d.logger.Error("vgc: connect failed", "endpoint", d.endpoint(), "error", err)

		return err
	}

	d.attachLocked(conn)
	d.logger.Info("vgc: connected", "endpoint", d.endpoint())

	return nil
}

// Disconnect closes the connection and invalidates the cached identity.
// Calling Disconnect on an already disconnected device is a no-op.
func (d *Device) Disconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		return nil
	}

	err := d.conn.Close()
	d.conn = nil
	d.transport = nil
	d.identity = nil

	if err != nil && !isConnClosedError(err) {
		d.logger.Error("vgc: failed to close connection", "error", err)

		return fmt.Errorf("%w: close: %w", ErrConnectionFault, err)
	}

	d.logger.Info("vgc: connection closed", "endpoint", d.endpoint())

	return nil
}

// IsConnected reports whether the device currently holds an open connection.
func (d *Device) IsConnected() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.transport != nil
}

func (d *Device) endpoint() string {
	if d.cfg.IsSerial() {
		return d.cfg.SerialPort()
	}

	return d.cfg.Addr()
}

// attachLocked installs an already-open connection. Tests use it to wire
// a pipe-backed fake controller.
func (d *Device) attachLocked(conn Conn) {
	d.conn = conn
	d.transport = newLineTransport(conn, d.cfg, d.logger)
	d.metrics.incConnectCount()
}

// --- Read operations ---

// ReadPressure reads the pressure of one gauge channel via PR<gauge>.
//
// Transient failures (timeout, unreadable payload) return SentinelReading
// with a nil error so polling loops are not interrupted. NAK and unknown
// handshake replies indicate protocol desync and are returned as errors,
// as are connection faults. gauge must be >= 1, and within the
// controller's channel count when the identity is known; identity is
// initialized lazily when a gauge above 1 is requested before the channel
// count is known.
func (d *Device) ReadPressure(gauge int) (float64, error) {
	if gauge < 1 {
		return 0, fmt.Errorf("%w: gauge %d must be positive", ErrInvalidGauge, gauge)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return 0, ErrNotConnected
	}

	// Gauge 1 exists on every variant; only higher channels need the count.
	if gauge > 1 && d.identity == nil && d.cfg.Capabilities().Has(CapIdentity) {
		if err := d.initializeIdentityLocked(); err != nil {
			d.logger.Warn("vgc: lazy identity initialization failed", "error", err)
		}
	}

	if d.identity != nil && d.identity.GaugeCount > 0 && gauge > d.identity.GaugeCount {
		return 0, fmt.Errorf("%w: gauge %d exceeds channel count %d",
			ErrInvalidGauge, gauge, d.identity.GaugeCount)
	}

	v, err := d.readNumericLocked(cmdPressure+strconv.Itoa(gauge), decodePressure)
	if err == nil && v != SentinelReading {
		d.lastReadings.Store(gauge, v)
	}

	return v, err
}

// ReadTemperature reads the controller temperature via TMP. It follows the
// same sentinel degradation policy as ReadPressure.
func (d *Device) ReadTemperature() (float64, error) {
	if !d.cfg.Capabilities().Has(CapTemperature) {
		return 0, fmt.Errorf("%w: temperature", ErrUnsupported)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return 0, ErrNotConnected
	}

	return d.readNumericLocked(cmdTemperature, decodeScalar)
}

// readNumericLocked runs one exchange and applies the tolerant-polling
// policy: timeouts and payload failures degrade to the sentinel, decode
// failures degrade to the sentinel, protocol desync and faults surface.
func (d *Device) readNumericLocked(cmd string, decode func([]byte) (float64, error)) (float64, error) {
	out := d.exchangeLocked(cmd)

	switch out.state {
	case handshakeTimedOut, handshakePayloadFailed:
		return SentinelReading, nil

	case handshakeRejected:
		return 0, ErrWrongCommand

	case handshakeUnknownAck, handshakeFaulted:
		d.logFaultLocked(cmd, out)

		return 0, out.err

	case handshakeComplete:
		v, err := decode(out.payload)
		if err != nil {
			d.metrics.incDecodeErrCount()
			d.logger.Error("vgc: failed to decode reply", "command", cmd, "error", err)

			return SentinelReading, nil
		}

		return v, nil

	default:
		return 0, fmt.Errorf("vgc: unexpected handshake state %s", out.state)
	}
}

// --- Unit operations ---

// GetPressureUnit queries the controller's display unit via UNI and
// refreshes the cached unit name.
//
// Unlike the numeric polling reads, this configuration query surfaces
// timeouts and decode failures as errors; its callers are interactive.
func (d *Device) GetPressureUnit() (PressureUnit, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.getPressureUnitLocked()
}

func (d *Device) getPressureUnitLocked() (PressureUnit, error) {
	out := d.exchangeLocked(cmdUnit)

	switch out.state {
	case handshakeRejected:
		return 0, ErrWrongCommand

	case handshakeComplete:
		u, err := decodeUnit(out.payload)
		if err != nil {
			d.metrics.incDecodeErrCount()

			return 0, err
		}

		d.unitName = u.String()

		return u, nil

	default:
		d.logFaultLocked(cmdUnit, out)

		return 0, out.err
	}
}

// SetPressureUnit programs the controller's display unit via UNI,<code>.
//
// It succeeds only when the controller echoes the requested code back.
// An out-of-range code is a caller bug and returns ErrInvalidUnit without
// touching the transport. A mismatched or unreadable echo returns false
// with a nil error.
func (d *Device) SetPressureUnit(unit PressureUnit) (bool, error) {
	if !unit.Valid() {
		return false, fmt.Errorf("%w: code %d, want 0-5", ErrInvalidUnit, int(unit))
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return false, ErrNotConnected
	}

	cmd := fmt.Sprintf("%s,%d", cmdUnit, int(unit))
	out := d.exchangeLocked(cmd)

	switch out.state {
	case handshakeRejected:
		return false, ErrWrongCommand

	case handshakeComplete:
		echo, err := decodeUnit(out.payload)
		if err != nil {
			d.metrics.incDecodeErrCount()
			d.logger.Error("vgc: unreadable unit echo", "command", cmd, "error", err)

			return false, nil
		}

		if echo != unit {
			d.logger.Warn("vgc: controller echoed different unit",
				"requested", int(unit), "echoed", int(echo))

			return false, nil
		}

		d.unitName = unit.String()

		return true, nil

	default:
		d.logFaultLocked(cmd, out)

		return false, out.err
	}
}

// UnitName returns the last-known display unit name, e.g. "Pascal".
// It is empty until a unit operation has completed.
func (d *Device) UnitName() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.unitName
}

// --- Identity ---

// InitializeIdentity queries the display unit and the controller identity
// (AYT), caching the identity fields and gauge count. A malformed identity
// reply is logged and tolerated; the gauge count stays unset.
//
// The cached identity is invalidated by Disconnect.
func (d *Device) InitializeIdentity() error {
	if !d.cfg.Capabilities().Has(CapIdentity) {
		return fmt.Errorf("%w: identity", ErrUnsupported)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return ErrNotConnected
	}

	return d.initializeIdentityLocked()
}

func (d *Device) initializeIdentityLocked() error {
	if _, err := d.getPressureUnitLocked(); err != nil {
		// The unit query is best-effort scene setting; AYT is the point.
		d.logger.Warn("vgc: unit query during identity initialization failed", "error", err)
	}

	out := d.exchangeLocked(cmdIdentify)

	switch out.state {
	case handshakeRejected:
		return ErrWrongCommand

	case handshakeComplete:
		ident, err := decodeIdentity(out.payload)
		if err != nil {
			d.metrics.incDecodeErrCount()
			d.logger.Error("vgc: malformed identity reply", "error", err)

			return nil // tolerated; gauge count stays unknown
		}

		if ident.GaugeCount == 0 {
			d.logger.Warn("vgc: model designation carries no gauge count", "model", ident.Model)
		}

		d.identity = &ident
		d.logger.Info("vgc: controller identified",
			"type", ident.Type,
			"model", ident.Model,
			"serial", ident.Serial,
			"firmware", ident.Firmware,
			"hardware", ident.Hardware,
			"gauges", ident.GaugeCount)

		return nil

	default:
		d.logFaultLocked(cmdIdentify, out)

		return out.err
	}
}

// Identity returns the cached controller identity, if initialized.
func (d *Device) Identity() (Identity, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.identity == nil {
		return Identity{}, false
	}

	return *d.identity, true
}

// --- Raw passthrough and dispatch ---

// RawCommand sends an arbitrary mnemonic through the full handshake and
// returns the reply payload with the terminator stripped. It is the
// passthrough used by interactive consoles.
func (d *Device) RawCommand(cmd string) (string, error) {
	cmd = strings.TrimSpace(cmd)
	if cmd == "" || strings.ContainsAny(cmd, "\r\n") {
		return "", ErrInvalidRaw
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.transport == nil {
		return "", ErrNotConnected
	}

	out := d.exchangeLocked(cmd)

	switch out.state {
	case handshakeRejected:
		return "", ErrWrongCommand

	case handshakeComplete:
		return string(bytes.TrimSpace(out.payload)), nil

	default:
		d.logFaultLocked(cmd, out)

		return "", out.err
	}
}

// GetAtomicValue resolves a named quantity: names containing "pressure"
// (with an optional trailing gauge digit), "temp", or "unit" dispatch to
// the corresponding operation. Unrecognized names return SentinelReading.
func (d *Device) GetAtomicValue(name string) (any, error) {
	lower := strings.ToLower(name)

	switch {
	case strings.Contains(lower, "pressure"):
		gauge := trailingNumber(lower)
		if gauge == 0 {
			gauge = 1
		}

		return d.ReadPressure(gauge)

	case strings.Contains(lower, "temp"):
		return d.ReadTemperature()

	case strings.Contains(lower, "unit"):
		u, err := d.GetPressureUnit()
		if err != nil {
			return nil, err
		}

		return u.String(), nil

	default:
		d.logger.Warn("vgc: unrecognized atomic value name", "name", name)

		return SentinelReading, nil
	}
}

// trailingNumber parses the full digit run at the end of name, e.g. 12
// from "pressure12". Returns 0 when name does not end in a digit.
func trailingNumber(name string) int {
	i := len(name)
	for i > 0 && name[i-1] >= '0' && name[i-1] <= '9' {
		i--
	}

	if i == len(name) {
		return 0
	}

	n, err := strconv.Atoi(name[i:])
	if err != nil {
		return 0
	}

	return n
}

// --- Shared internals ---

// LastPressure returns the most recent valid pressure reading for a gauge
// channel. It never touches the transport.
func (d *Device) LastPressure(gauge int) (float64, bool) {
	return d.lastReadings.Load(gauge)
}

// Metrics returns the metrics associated with the device.
func (d *Device) Metrics() *DeviceMetrics {
	return &d.metrics
}

// exchangeLocked runs one command exchange and records metrics for the
// terminal state. The command mutex must be held.
func (d *Device) exchangeLocked(cmd string) handshakeOutcome {
	if d.transport == nil {
		return handshakeOutcome{state: handshakeFaulted, err: ErrNotConnected}
	}

	d.metrics.incCommandSendCount()

	out := d.transport.exchange(cmd)

	switch out.state {
	case handshakeComplete, handshakePayloadFailed:
		d.metrics.incAckRecvCount()

		if errors.Is(out.err, ErrTimeout) {
			d.metrics.incTimeoutCount()
		}

	case handshakeTimedOut:
		d.metrics.incTimeoutCount()

	case handshakeRejected:
		d.metrics.incNakRecvCount()

	case handshakeUnknownAck:
		d.metrics.incUnknownAckCount()
	}

	return out
}

// logFaultLocked records diagnostics for raise-worthy terminal states.
func (d *Device) logFaultLocked(cmd string, out handshakeOutcome) {
	if out.err == nil {
		return
	}

	if out.state == handshakeFaulted && (isConnClosedError(out.err) || isConnResetError(out.err)) {
		d.logger.Error("vgc: connection lost during command, reconnect required",
			"command", cmd, "error", out.err)

		return
	}

	d.logger.Debug("vgc: command failed", "command", cmd, "state", out.state.String(), "error", out.err)
}
