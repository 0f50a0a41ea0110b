package vgc

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig creates a DeviceConfig with short timeouts suitable for tests.
func newTestConfig(t *testing.T, opts ...DeviceOption) *DeviceConfig {
	t.Helper()

	defaults := []DeviceOption{
		WithReadTimeout(50 * time.Millisecond),
	}

	cfg, err := NewDeviceConfig("127.0.0.1", 8000, append(defaults, opts...)...)
	if err != nil {
		t.Fatalf("newTestConfig: %v", err)
	}

	return cfg
}

// newTestDevice creates a Device attached to the local end of net.Pipe().
// Returns the device and the remote end for controller simulation.
func newTestDevice(t *testing.T, opts ...DeviceOption) (*Device, net.Conn) {
	t.Helper()

	cfg := newTestConfig(t, opts...)

	d, err := NewDevice(cfg)
	require.NoError(t, err)

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	d.attachLocked(local)

	return d, remote
}

// newTestTransport creates a lineTransport backed by the local end of
// net.Pipe(). Returns the transport and the remote end.
func newTestTransport(t *testing.T, cfg *DeviceConfig) (*lineTransport, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	lt := newLineTransport(local, cfg, cfg.GetLogger())

	return lt, remote
}

// exchangeStep scripts one command exchange of the fake controller.
type exchangeStep struct {
	wantCmd   string // expected command text without terminator; "" skips the check
	handshake []byte // handshake bytes written after the command line; nil stays silent
	payload   []byte // reply line written after ENQ; nil skips the payload phase
	readEnq   bool   // consume the ENQ byte even when no payload follows
}

// ackLine is an ACK handshake terminated like the real controller does.
func ackLine() []byte {
	return append([]byte{ACK}, Terminator...)
}

// nakLine is a NAK handshake with terminator.
func nakLine() []byte {
	return append([]byte{NAK}, Terminator...)
}

// serveController simulates the controller side of remote, one scripted
// exchange at a time. It runs in a goroutine; failures are reported via
// assert, which is safe off the test goroutine.
func serveController(t *testing.T, remote net.Conn, steps ...exchangeStep) {
	t.Helper()

	go func() {
		for _, step := range steps {
			line, err := readUntilTerminator(remote)
			if !assert.NoError(t, err, "fake controller: read command") {
				return
			}

			if step.wantCmd != "" {
				assert.Equal(t, step.wantCmd+Terminator, string(line))
			}

			if step.handshake == nil {
				continue // stay silent, let the client time out
			}

			if _, err := remote.Write(step.handshake); !assert.NoError(t, err) {
				return
			}

			if step.payload == nil && !step.readEnq {
				continue
			}

			one := make([]byte, 1)
			if _, err := io.ReadFull(remote, one); !assert.NoError(t, err, "fake controller: read ENQ") {
				return
			}
			assert.Equal(t, ENQ, one[0])

			if step.payload != nil {
				if _, err := remote.Write(step.payload); !assert.NoError(t, err) {
					return
				}
			}
		}
	}()
}

// readUntilTerminator reads single bytes from r until the buffer ends with
// the line terminator.
func readUntilTerminator(r io.Reader) ([]byte, error) {
	var buf []byte
	one := make([]byte, 1)

	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return buf, err
		}

		buf = append(buf, one[0])

		if len(buf) >= len(Terminator) && string(buf[len(buf)-len(Terminator):]) == Terminator {
			return buf, nil
		}
	}
}

// mustWrite writes data to w, failing the test on error. Only call from
// the test goroutine.
func mustWrite(t *testing.T, w io.Writer, data []byte) {
	t.Helper()

	if _, err := w.Write(data); err != nil {
		t.Fatalf("mustWrite: %v", err)
	}
}
