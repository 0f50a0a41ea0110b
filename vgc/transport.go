package vgc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/arloliu/go-vgc/logger"
	"go.bug.st/serial"
)

// Conn is the byte-stream endpoint the driver speaks over. net.Conn
// satisfies it directly; serial ports are wrapped by serialConn so that
// per-read deadlines work uniformly across both transports.
type Conn interface {
	io.Reader
	io.Writer
	io.Closer

	// SetReadDeadline sets the absolute deadline for subsequent Read calls.
	SetReadDeadline(t time.Time) error
}

// serialConn adapts a go.bug.st/serial port to the Conn interface,
// mapping the absolute read deadline onto the port's relative read timeout.
type serialConn struct {
	port serial.Port
}

func (s *serialConn) Read(p []byte) (int, error) {
	n, err := s.port.Read(p)
	if n == 0 && err == nil {
		// The serial stack signals an expired read timeout as a zero-length
		// read; normalize it to the net-style deadline error.
		return 0, os.ErrDeadlineExceeded
	}

	return n, err
}

func (s *serialConn) Write(p []byte) (int, error) { return s.port.Write(p) }

func (s *serialConn) Close() error { return s.port.Close() }

func (s *serialConn) SetReadDeadline(t time.Time) error {
	if t.IsZero() {
		return s.port.SetReadTimeout(serial.NoTimeout)
	}

	d := time.Until(t)
	if d <= 0 {
		d = time.Nanosecond
	}

	return s.port.SetReadTimeout(d)
}

// dial opens the configured transport: RS-232 when a serial port is set,
// TCP otherwise.
func dial(cfg *DeviceConfig) (Conn, error) {
	if cfg.IsSerial() {
		mode := &serial.Mode{BaudRate: cfg.BaudRate()}

		port, err := serial.Open(cfg.SerialPort(), mode)
		if err != nil {
			return nil, fmt.Errorf("%w: open serial port %s: %w", ErrConnectionFault, cfg.SerialPort(), err)
		}

		return &serialConn{port: port}, nil
	}

	conn, err := net.DialTimeout("tcp", cfg.Addr(), cfg.DialTimeout())
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", ErrConnectionFault, cfg.Addr(), err)
	}

	return conn, nil
}

// lineTransport frames the byte stream into CR-LF terminated lines.
//
// This type is NOT goroutine-safe. The Device serializes access,
// consistent with the one-command-in-flight protocol.
type lineTransport struct {
	conn   Conn
	reader *bufio.Reader
	cfg    *DeviceConfig
	logger logger.Logger
}

func newLineTransport(conn Conn, cfg *DeviceConfig, l logger.Logger) *lineTransport {
	return &lineTransport{
		conn:   conn,
		reader: bufio.NewReader(conn),
		cfg:    cfg,
		logger: l,
	}
}

// sendLine writes the command text followed by the line terminator.
func (t *lineTransport) sendLine(cmd string) error {
	return t.writeAll(append([]byte(cmd), Terminator...))
}

// writeByte writes a single control byte (ENQ).
func (t *lineTransport) writeByte(b byte) error {
	return t.writeAll([]byte{b})
}

// writeAll writes all bytes in data to the connection.
func (t *lineTransport) writeAll(data []byte) error {
	for written := 0; written < len(data); {
		n, err := t.conn.Write(data[written:])
		written += n

		if err != nil {
			return fmt.Errorf("%w: write: %w", ErrConnectionFault, err)
		}
	}

	return nil
}

// readLine accumulates bytes until the buffer ends with the line
// terminator, MaxLineLength is reached, or the peer closes the stream.
//
// The returned slice includes the terminator. A peer close mid-line
// returns the partial bytes without error; a close before any byte is a
// connection fault. The timeout applies per read call, restarting after
// each received chunk, so partial-frame delivery from the transport does
// not trip it.
func (t *lineTransport) readLine(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, 0, 32)

	for {
		if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("%w: set read deadline: %w", ErrConnectionFault, err)
		}

		b, err := t.reader.ReadByte()
		if err != nil {
			switch {
			case isTimeoutError(err):
				return nil, fmt.Errorf("%w: no data within %v", ErrTimeout, timeout)

			case errors.Is(err, io.EOF):
				if len(buf) > 0 {
					return buf, nil
				}

				return nil, fmt.Errorf("%w: connection closed by peer", ErrConnectionFault)

			default:
				return nil, fmt.Errorf("%w: read: %w", ErrConnectionFault, err)
			}
		}

		buf = append(buf, b)

		if len(buf) >= len(Terminator) && string(buf[len(buf)-len(Terminator):]) == Terminator {
			return buf, nil
		}

		if len(buf) >= MaxLineLength {
			t.logger.Warn("vgc: reply line hit maximum length without terminator",
				"maxBytes", MaxLineLength)

			return buf, nil
		}
	}
}

// --- Error classification helpers ---

func isTimeoutError(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}

func isConnClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe)
}

func isConnResetError(err error) bool {
	return strings.Contains(err.Error(), "connection reset by peer")
}
