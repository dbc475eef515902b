package axa

import (
	"testing"
	"time"

	"github.com/axaremote/go-axa/transport"
	"github.com/stretchr/testify/require"
)

// newTestDevice creates a Device over a scripted mock transport.
func newTestDevice(t *testing.T, opts ...DeviceOption) (*Device, *transport.Mock) {
	t.Helper()

	m := transport.NewMock()

	d, err := NewDevice(m, opts...)
	require.NoError(t, err)

	return d, m
}

// scriptIdentity scripts the connect handshake of a locked AXA Remote 2.0.
func scriptIdentity(m *transport.Mock) {
	m.Respond("DEVICE", "DEVICE", "260 AXA RV2900 2.0")
	m.Respond("VERSION", "VERSION", "261 Firmware V2.03")
	m.Respond("STATUS", "STATUS", "211 Strong Locked")
}

// rewindMotion moves the anchor of the current motion into the past, so a
// test can observe the ramp without sleeping.
func rewindMotion(t *testing.T, d *Device, elapsed time.Duration) {
	t.Helper()

	d.est.mu.Lock()
	d.est.startedAt = d.est.startedAt.Add(-elapsed)
	d.est.mu.Unlock()
}
