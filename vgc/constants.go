package vgc

import "math"

// Control bytes of the handshake protocol.
const (
	// ENQ requests the queued reply payload after an ACK.
	ENQ byte = 0x05
	// ACK is the positive command acknowledgment.
	ACK byte = 0x06
	// NAK is the negative command acknowledgment.
	NAK byte = 0x15
)

// Terminator is the line delimiter for commands and replies.
const Terminator = "\r\n"

// MaxLineLength bounds the number of bytes accumulated for a single reply
// line before the read is abandoned.
const MaxLineLength = 4096

// SentinelReading is the reserved "no valid reading" value returned by
// numeric read operations when the controller times out or replies with a
// payload that cannot be decoded. Callers must treat it as invalid data,
// never as a legitimate extreme measurement.
const SentinelReading = math.MaxFloat64

// Command mnemonics.
const (
	cmdPressure    = "PR" // PR<gauge>: pressure of one gauge channel
	cmdTemperature = "TMP"
	cmdUnit        = "UNI"
	cmdIdentify    = "AYT"
)
