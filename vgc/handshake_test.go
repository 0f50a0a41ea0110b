package vgc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchange_Complete(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	serveController(t, remote, exchangeStep{
		wantCmd:   "PR1",
		handshake: ackLine(),
		payload:   []byte("PR1,7.5e-3\r\n"),
	})

	out := lt.exchange("PR1")
	require.Equal(t, handshakeComplete, out.state)
	assert.Equal(t, "PR1,7.5e-3\r\n", string(out.payload))
	assert.Equal(t, []byte{ACK}, out.raw)
	assert.NoError(t, out.err)
}

func TestExchange_Rejected(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	serveController(t, remote, exchangeStep{
		wantCmd:   "BOGUS",
		handshake: nakLine(),
	})

	out := lt.exchange("BOGUS")
	require.Equal(t, handshakeRejected, out.state)
	assert.ErrorIs(t, out.err, ErrWrongCommand)
}

func TestExchange_UnknownAck(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	serveController(t, remote, exchangeStep{
		wantCmd:   "PR1",
		handshake: []byte{0x99, '\r', '\n'},
	})

	out := lt.exchange("PR1")
	require.Equal(t, handshakeUnknownAck, out.state)

	var unknownErr *UnknownResponseError
	require.True(t, errors.As(out.err, &unknownErr))
	assert.Equal(t, []byte{0x99}, unknownErr.Raw)
	assert.Equal(t, []byte{0x99}, out.raw)
}

func TestExchange_HandshakeTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	// Consume the command, then stay silent.
	serveController(t, remote, exchangeStep{wantCmd: "TMP"})

	out := lt.exchange("TMP")
	require.Equal(t, handshakeTimedOut, out.state)
	assert.ErrorIs(t, out.err, ErrTimeout)
}

func TestExchange_PayloadTimeout(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	// ACK the command and swallow the ENQ, then stay silent.
	serveController(t, remote, exchangeStep{
		wantCmd:   "PR1",
		handshake: ackLine(),
		readEnq:   true,
	})

	out := lt.exchange("PR1")
	require.Equal(t, handshakePayloadFailed, out.state)
	assert.ErrorIs(t, out.err, ErrTimeout)
}

func TestExchange_ClosedConnFaults(t *testing.T) {
	cfg := newTestConfig(t)
	lt, remote := newTestTransport(t, cfg)

	_ = remote.Close()
	_ = lt.conn.Close()

	out := lt.exchange("PR1")
	require.Equal(t, handshakeFaulted, out.state)
	assert.ErrorIs(t, out.err, ErrConnectionFault)
}

func TestHandshakeState_String(t *testing.T) {
	assert.Equal(t, "sent", handshakeSent.String())
	assert.Equal(t, "awaitPayload", handshakeAwaitPayload.String())
	assert.Equal(t, "complete", handshakeComplete.String())
	assert.Equal(t, "timedOut", handshakeTimedOut.String())
	assert.Equal(t, "rejected", handshakeRejected.String())
	assert.Equal(t, "unknownAck", handshakeUnknownAck.String())
	assert.Equal(t, "faulted", handshakeFaulted.String())
	assert.Equal(t, "payloadFailed", handshakePayloadFailed.String())
}
