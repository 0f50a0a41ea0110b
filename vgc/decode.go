package vgc

import (
	"fmt"
	"strconv"
	"strings"
)

// Reply decoders: pure, stateless parsing of payload lines into typed
// results. Payload shape validation lives here, decoupled from the
// protocol-level ACK/NAK validation in the handshake engine, so each can
// be exercised against synthetic byte streams independently.

// decodePressure parses a pressure reply "<status>,<value>".
// The value is the second comma-separated field.
func decodePressure(payload []byte) (float64, error) {
	fields := strings.Split(strings.TrimSpace(string(payload)), ",")
	if len(fields) < 2 {
		return 0, fmt.Errorf("%w: pressure reply %q has %d field(s), want at least 2",
			ErrDecode, strings.TrimSpace(string(payload)), len(fields))
	}

	v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: pressure value %q is not a number", ErrDecode, fields[1])
	}

	return v, nil
}

// decodeScalar parses a single-value numeric reply (e.g. TMP).
func decodeScalar(payload []byte) (float64, error) {
	s := strings.TrimSpace(string(payload))

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: scalar reply %q is not a number", ErrDecode, s)
	}

	return v, nil
}

// decodeUnit parses the UNI reply into a pressure unit code.
func decodeUnit(payload []byte) (PressureUnit, error) {
	s := strings.TrimSpace(string(payload))

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: unit reply %q is not an integer", ErrDecode, s)
	}

	u := PressureUnit(n)
	if !u.Valid() {
		return 0, fmt.Errorf("%w: unit code %d out of range [0, 5]", ErrDecode, n)
	}

	return u, nil
}

// decodeIdentity parses the AYT reply "type,model,serial,firmware,hardware".
//
// The gauge count is derived from the trailing digit of the model
// designation; it is zero when no digit is present. The caller decides
// whether a zero count is worth a diagnostic.
func decodeIdentity(payload []byte) (Identity, error) {
	line := strings.TrimSpace(string(payload))

	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return Identity{}, fmt.Errorf("%w: identity reply %q has %d field(s), want 5",
			ErrDecode, line, len(fields))
	}

	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}

	serial, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: identity serial %q is not an integer", ErrDecode, fields[2])
	}

	return Identity{
		Type:       fields[0],
		Model:      fields[1],
		Serial:     serial,
		Firmware:   fields[3],
		Hardware:   fields[4],
		GaugeCount: deriveGaugeCount(fields[1]),
	}, nil
}

// deriveGaugeCount extracts the channel count from a model designation
// such as "DUAL2" or "VGC503". Returns 0 when the designation does not
// end in a digit.
func deriveGaugeCount(model string) int {
	if model == "" {
		return 0
	}

	c := model[len(model)-1]
	if c < '0' || c > '9' {
		return 0
	}

	return int(c - '0')
}
