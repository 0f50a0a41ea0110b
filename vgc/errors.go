package vgc

import (
	"errors"
	"fmt"
)

// Sentinel errors for the gauge controller protocol.
var (
	// Transport errors.
	ErrNotConnected    = errors.New("vgc: not connected")
	ErrConnectionFault = errors.New("vgc: connection fault")
	ErrTimeout         = errors.New("vgc: response timeout")

	// Protocol errors.
	ErrWrongCommand = errors.New("vgc: command rejected by controller (NAK)")
	ErrDecode       = errors.New("vgc: malformed reply payload")

	// Input-contract violations. These indicate caller bugs and are never
	// downgraded to the sentinel reading.
	ErrInvalidGauge = errors.New("vgc: gauge number out of range")
	ErrInvalidUnit  = errors.New("vgc: pressure unit code out of range")
	ErrInvalidRaw   = errors.New("vgc: raw command must be a single non-empty line")

	// ErrUnsupported is returned when an operation is not available on the
	// configured device variant.
	ErrUnsupported = errors.New("vgc: operation unsupported for this device variant")
)

// UnknownResponseError is returned when the handshake byte is neither ACK
// nor NAK. It carries the raw bytes for diagnostics, since this usually
// indicates a framing desync that requires reconnecting.
type UnknownResponseError struct {
	Raw []byte
}

func (e *UnknownResponseError) Error() string {
	return fmt.Sprintf("vgc: unknown handshake response % X", e.Raw)
}
