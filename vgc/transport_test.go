package vgc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine_IncludesTerminator(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	go mustWriteAsync(remote, []byte("1.234e-5\r\n"))

	line, err := lt.readLine(cfg.ReadTimeout())
	require.NoError(t, err)
	assert.Equal(t, "1.234e-5\r\n", string(line))
}

func TestReadLine_ChunkedDelivery(t *testing.T) {
	// The per-read timeout restarts after each chunk, so slow partial
	// delivery must not trip it.
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	go func() {
		for _, chunk := range []string{"PR1", ",7.5", "e-3", "\r", "\n"} {
			time.Sleep(10 * time.Millisecond)
			_, _ = remote.Write([]byte(chunk))
		}
	}()

	line, err := lt.readLine(cfg.ReadTimeout())
	require.NoError(t, err)
	assert.Equal(t, "PR1,7.5e-3\r\n", string(line))
}

func TestReadLine_Timeout(t *testing.T) {
	cfg := newTestConfig(t)
	lt, _ := newTestTransport(t, cfg)

	start := time.Now()
	_, err := lt.readLine(cfg.ReadTimeout())

	require.ErrorIs(t, err, ErrTimeout)
	assert.GreaterOrEqual(t, time.Since(start), cfg.ReadTimeout())
}

func TestReadLine_PartialLineOnPeerClose(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	go func() {
		_, _ = remote.Write([]byte("1.0e-"))
		_ = remote.Close()
	}()

	line, err := lt.readLine(cfg.ReadTimeout())
	require.NoError(t, err)
	assert.Equal(t, "1.0e-", string(line))
}

func TestReadLine_EmptyCloseIsConnectionFault(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	go func() { _ = remote.Close() }()

	_, err := lt.readLine(cfg.ReadTimeout())
	require.ErrorIs(t, err, ErrConnectionFault)
}

func TestReadLine_StopsAtMaxLength(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	junk := make([]byte, MaxLineLength+16)
	for i := range junk {
		junk[i] = 'x'
	}
	go mustWriteAsync(remote, junk)

	line, err := lt.readLine(cfg.ReadTimeout())
	require.NoError(t, err)
	assert.Len(t, line, MaxLineLength)
}

func TestSendLine_AppendsTerminator(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	done := make(chan []byte, 1)
	go func() {
		line, err := readUntilTerminator(remote)
		assert.NoError(t, err)
		done <- line
	}()

	require.NoError(t, lt.sendLine("UNI,2"))
	assert.Equal(t, "UNI,2\r\n", string(<-done))
}

func TestSendLine_ClosedConnIsConnectionFault(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	_ = remote.Close()
	_ = lt.conn.Close()

	err := lt.sendLine("PR1")
	require.ErrorIs(t, err, ErrConnectionFault)
}

// mustWriteAsync writes data ignoring errors; used inside goroutines
// scripting the remote end.
func mustWriteAsync(w interface{ Write([]byte) (int, error) }, data []byte) {
	_, _ = w.Write(data)
}
