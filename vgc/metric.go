package vgc

import (
	"sync/atomic"
)

// DeviceMetrics contains atomic metrics for a gauge controller connection.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type DeviceMetrics struct {
	// CommandSendCount indicates the number of command lines sent.
	CommandSendCount atomic.Uint64
	// AckRecvCount indicates the number of ACK handshakes received.
	AckRecvCount atomic.Uint64
	// NakRecvCount indicates the number of NAK rejections received.
	NakRecvCount atomic.Uint64
	// UnknownAckCount indicates the number of unclassifiable handshake replies.
	UnknownAckCount atomic.Uint64
	// TimeoutCount indicates the number of handshake or payload timeouts.
	TimeoutCount atomic.Uint64
	// DecodeErrCount indicates the number of payloads that failed to decode.
	DecodeErrCount atomic.Uint64
	// ConnectCount indicates the number of successful connection attempts.
	ConnectCount atomic.Uint64
}

func (m *DeviceMetrics) incCommandSendCount() {
	m.CommandSendCount.Add(1)
}

func (m *DeviceMetrics) incAckRecvCount() {
	m.AckRecvCount.Add(1)
}

func (m *DeviceMetrics) incNakRecvCount() {
	m.NakRecvCount.Add(1)
}

func (m *DeviceMetrics) incUnknownAckCount() {
	m.UnknownAckCount.Add(1)
}

func (m *DeviceMetrics) incTimeoutCount() {
	m.TimeoutCount.Add(1)
}

func (m *DeviceMetrics) incDecodeErrCount() {
	m.DecodeErrCount.Add(1)
}

func (m *DeviceMetrics) incConnectCount() {
	m.ConnectCount.Add(1)
}
