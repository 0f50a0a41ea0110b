package vgc

import (
	"bytes"
	"errors"
	"fmt"
)

// handshakeState is the per-command state machine discriminant.
//
// Every command starts in handshakeSent and reaches exactly one terminal
// state. The Device maps terminal states onto its per-operation error
// policy: protocol desync states (rejected, unknownAck) and faults surface
// as errors; timedOut and payloadFailed degrade to the sentinel reading
// for numeric polling reads.
type handshakeState int

const (
	// handshakeSent: command line written, waiting for the handshake byte.
	handshakeSent handshakeState = iota
	// handshakeAwaitPayload: ACK received, ENQ sent, waiting for the reply line.
	handshakeAwaitPayload

	// Terminal states.
	handshakeComplete      // payload received
	handshakeTimedOut      // no handshake byte within the read timeout
	handshakeRejected      // controller answered NAK
	handshakeUnknownAck    // handshake bytes neither ACK nor NAK
	handshakeFaulted       // I/O fault before the payload phase
	handshakePayloadFailed // timeout or fault while fetching the payload
)

func (s handshakeState) String() string {
	switch s {
	case handshakeSent:
		return "sent"
	case handshakeAwaitPayload:
		return "awaitPayload"
	case handshakeComplete:
		return "complete"
	case handshakeTimedOut:
		return "timedOut"
	case handshakeRejected:
		return "rejected"
	case handshakeUnknownAck:
		return "unknownAck"
	case handshakeFaulted:
		return "faulted"
	case handshakePayloadFailed:
		return "payloadFailed"
	default:
		return fmt.Sprintf("handshakeState(%d)", int(s))
	}
}

// handshakeOutcome is the result of one full command exchange.
type handshakeOutcome struct {
	state   handshakeState
	payload []byte // valid only when state == handshakeComplete
	raw     []byte // handshake bytes as received, terminator stripped
	err     error  // underlying error for the faulted/timed-out states
}

// exchange runs the full command exchange on the wire: command line out,
// handshake byte in, then ENQ out and payload line in on ACK.
func (t *lineTransport) exchange(cmd string) handshakeOutcome {
	if err := t.sendLine(cmd); err != nil {
		return handshakeOutcome{state: handshakeFaulted, err: err}
	}

	t.logger.Debug("vgc: command sent", "command", cmd)

	line, err := t.readLine(t.cfg.ReadTimeout())
	if err != nil {
		if errors.Is(err, ErrTimeout) {
			t.logger.Warn("vgc: timeout waiting for acknowledgment", "command", cmd)

			return handshakeOutcome{state: handshakeTimedOut, err: err}
		}

		return handshakeOutcome{state: handshakeFaulted, err: err}
	}

	ack := bytes.TrimSpace(line)

	switch {
	case len(ack) == 1 && ack[0] == ACK:
		// Proceed to the payload phase.

	case len(ack) == 1 && ack[0] == NAK:
		t.logger.Error("vgc: NAK received", "command", cmd)

		return handshakeOutcome{state: handshakeRejected, raw: ack, err: ErrWrongCommand}

	default:
		t.logger.Error("vgc: unknown acknowledgment",
			"command", cmd,
			"raw", fmt.Sprintf("% X", ack))

		raw := append([]byte(nil), ack...)

		return handshakeOutcome{state: handshakeUnknownAck, raw: raw, err: &UnknownResponseError{Raw: raw}}
	}

	t.logger.Debug("vgc: ACK received, sending ENQ", "command", cmd)

	if err := t.writeByte(ENQ); err != nil {
		return handshakeOutcome{state: handshakePayloadFailed, err: err}
	}

	payload, err := t.readLine(t.cfg.ReadTimeout())
	if err != nil {
		t.logger.Warn("vgc: failed to read reply payload", "command", cmd, "error", err)

		return handshakeOutcome{state: handshakePayloadFailed, err: err}
	}

	t.logger.Debug("vgc: reply payload received",
		"command", cmd,
		"payload", string(bytes.TrimSpace(payload)))

	return handshakeOutcome{state: handshakeComplete, payload: payload, raw: ack}
}
