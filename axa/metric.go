package axa

import (
	"sync/atomic"
)

// DeviceMetrics contains atomic metrics for a Device.
// Metrics can be used as the value of a prometheus CounterFunc or GaugeFunc.
type DeviceMetrics struct {
	// CommandSendCount indicates the number of commands sent.
	CommandSendCount atomic.Uint64
	// CommandErrCount indicates the number of commands that failed.
	CommandErrCount atomic.Uint64

	// EmptyResponseCount indicates the number of empty responses.
	EmptyResponseCount atomic.Uint64
	// EchoMismatchCount indicates the number of responses whose first line
	// did not echo the sent command.
	EchoMismatchCount atomic.Uint64
	// DecodeErrCount indicates the number of responses with undecodable bytes.
	DecodeErrCount atomic.Uint64

	// SyncCorrectionCount indicates the number of forced status corrections
	// applied by SyncStatus.
	SyncCorrectionCount atomic.Uint64
	// ReconnectCount indicates the number of reconnect attempts made from
	// the disconnected state.
	ReconnectCount atomic.Uint64
}

func (m *DeviceMetrics) incCommandSendCount() {
	m.CommandSendCount.Add(1)
}

func (m *DeviceMetrics) incCommandErrCount() {
	m.CommandErrCount.Add(1)
}

func (m *DeviceMetrics) incEmptyResponseCount() {
	m.EmptyResponseCount.Add(1)
}

func (m *DeviceMetrics) incEchoMismatchCount() {
	m.EchoMismatchCount.Add(1)
}

func (m *DeviceMetrics) incDecodeErrCount() {
	m.DecodeErrCount.Add(1)
}

func (m *DeviceMetrics) incSyncCorrectionCount() {
	m.SyncCorrectionCount.Add(1)
}

func (m *DeviceMetrics) incReconnectCount() {
	m.ReconnectCount.Add(1)
}
