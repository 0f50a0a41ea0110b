// Package vgc implements a client driver for Inficon VGC-series vacuum
// gauge pressure controllers speaking the ASCII mnemonic protocol over
// TCP or RS-232.
//
// Every command follows the same half-duplex exchange: the client sends a
// mnemonic line (e.g. "PR1\r\n"), the controller answers with a single
// handshake byte (ACK 0x06 or NAK 0x15), and on ACK the client sends ENQ
// (0x05) to request the CR-LF terminated reply payload.
//
// The Device type is the public façade. Numeric polling reads
// (ReadPressure, ReadTemperature) degrade transient faults — timeouts and
// malformed payloads — to the SentinelReading constant instead of
// returning an error, so polling loops keep running through momentary
// noise. Protocol desync conditions (NAK, unexpected handshake bytes) and
// connection faults are always surfaced as errors.
//
// A Device owns its connection exclusively and serializes commands
// internally; at most one command is in flight at a time.
package vgc
