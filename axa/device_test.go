package axa

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/axaremote/go-axa/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeviceValidation(t *testing.T) {
	require := require.New(t)

	_, err := NewDevice(nil)
	require.Error(err)

	_, err = newTestDeviceErr(WithCommandTimeout(0))
	require.Error(err)

	_, err = newTestDeviceErr(WithMotionTimings(MotionTimings{}))
	require.Error(err)

	_, err = newTestDeviceErr(WithLogger(nil))
	require.Error(err)
}

func newTestDeviceErr(opts ...DeviceOption) (*Device, error) {
	return NewDevice(transport.NewMock(), opts...)
}

func TestDeviceConnect(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)

	require.NoError(d.Connect(context.Background()))

	assert.Equal(t, "AXA RV2900 2.0", d.Name())
	assert.Equal(t, "V2.03", d.Version())
	assert.Equal(t, StatusLocked, d.Status())
	assert.Equal(t, 0.0, d.Position())
	assert.Equal(t, []string{"DEVICE", "VERSION", "STATUS"}, m.Commands())
}

func TestDeviceConnectUnlocked(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("STATUS", "STATUS", "210 Unlocked")

	require.NoError(d.Connect(context.Background()))

	// The lock codes cannot tell a partially open window apart from a fully
	// open one, so anything not locked starts as fully open.
	assert.Equal(t, StatusOpen, d.Status())
	assert.Equal(t, 100.0, d.Position())
}

func TestDeviceConnectWeakLocked(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("STATUS", "STATUS", "212 Weak Locked")

	require.NoError(d.Connect(context.Background()))

	assert.Equal(t, StatusLocked, d.Status())
	assert.Equal(t, 0.0, d.Position())
}

func TestDeviceConnectNoIdentity(t *testing.T) {
	require := require.New(t)

	d, _ := newTestDevice(t)

	err := d.Connect(context.Background())
	require.ErrorIs(err, ErrDeviceIdentity)
	require.Equal(StatusDisconnected, d.Status())
}

func TestDeviceConnectVersionOptional(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.RespondRaw("VERSION") // firmware too old to answer

	require.NoError(d.Connect(context.Background()))
	require.Equal("AXA RV2900 2.0", d.Name())
	require.Empty(d.Version())
}

func TestDeviceOpen(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("OPEN", "OPEN", "200 OK")

	require.NoError(d.Connect(context.Background()))
	require.NoError(d.Open(context.Background()))
	require.Equal(StatusUnlocking, d.Status())

	rewindMotion(t, d, 6*time.Second)
	require.Equal(StatusOpening, d.Status())

	rewindMotion(t, d, 42*time.Second)
	require.Equal(StatusOpen, d.Status())
	require.Equal(100.0, d.Position())
}

func TestDeviceOpenRefused(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("OPEN", "OPEN", "502 Command not implemented")

	require.NoError(d.Connect(context.Background()))

	err := d.Open(context.Background())
	require.ErrorIs(err, ErrCommandFailed)
	require.Equal(StatusLocked, d.Status())
}

func TestDeviceClose(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("CLOSE", "CLOSE", "200 OK")

	require.NoError(d.SetPosition(100.0))
	require.NoError(d.Close(context.Background()))
	require.Equal(StatusClosing, d.Status())

	rewindMotion(t, d, 43*time.Second)
	require.Equal(StatusLocking, d.Status())

	rewindMotion(t, d, 16*time.Second)
	require.Equal(StatusLocked, d.Status())
	require.Equal(0.0, d.Position())
}

func TestDeviceStopLeavesEstimate(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("OPEN", "OPEN", "200 OK")
	m.Respond("STOP", "STOP", "200 OK")

	require.NoError(d.Connect(context.Background()))
	require.NoError(d.Open(context.Background()))
	require.NoError(d.Stop(context.Background()))

	// The opener does not report where it stopped, so the presumed motion
	// is left alone.
	require.Equal(StatusUnlocking, d.Status())
}

func TestDeviceStopFailed(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STOP", "STOP", "502 Command not implemented")

	err := d.Stop(context.Background())
	require.ErrorIs(err, ErrCommandFailed)
}

func TestDeviceOpenFromStoppedSaturates(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("OPEN", "OPEN", "200 OK")

	require.NoError(d.SetPosition(50.0))
	require.NoError(d.Open(context.Background()))

	// No anchor exists for the resumed motion; the estimate saturates.
	require.Equal(StatusOpen, d.Status())
	require.Equal(100.0, d.Position())
}

func TestDeviceSetPosition(t *testing.T) {
	tests := []struct {
		description string
		position    float64
		wantStatus  Status
	}{
		{"fully closed", 0.0, StatusLocked},
		{"fully open", 100.0, StatusOpen},
		{"mid travel", 37.5, StatusStopped},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			d, _ := newTestDevice(t)

			require.NoError(t, d.SetPosition(test.position))
			assert.Equal(t, test.wantStatus, d.Status())
			assert.Equal(t, test.position, d.Position())
		})
	}
}

func TestDeviceSetPositionRange(t *testing.T) {
	d, _ := newTestDevice(t)

	require.ErrorIs(t, d.SetPosition(-0.1), ErrPositionRange)
	require.ErrorIs(t, d.SetPosition(100.1), ErrPositionRange)
	require.ErrorIs(t, d.SetPosition(math.NaN()), ErrPositionRange)
	require.ErrorIs(t, d.SetPosition(math.Inf(1)), ErrPositionRange)
	require.ErrorIs(t, d.SetPosition(math.Inf(-1)), ErrPositionRange)

	// None of the rejected values leaked into the estimate.
	require.Equal(t, StatusDisconnected, d.Status())
	require.Equal(t, 0.0, d.Position())
}

func TestDeviceRawStatus(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STATUS", "STATUS", "211 Strong Locked")

	code, msg, err := d.RawStatus(context.Background())
	require.NoError(err)
	require.Equal(RawStatusStrongLocked, code)
	require.Equal("Strong Locked", msg)
}

func TestDeviceSyncStatusForcesLocked(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STATUS", "STATUS", "211 Strong Locked")

	require.NoError(d.SetPosition(100.0))

	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusLocked, status)
	require.Equal(0.0, position)
	require.Equal(uint64(1), d.Metrics().SyncCorrectionCount.Load())
}

func TestDeviceSyncStatusExternalUnlock(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STATUS", "STATUS", "210 Unlocked")

	require.NoError(d.SetPosition(0.0))

	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusOpen, status)
	require.Equal(100.0, position)
}

func TestDeviceSyncStatusInSync(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STATUS", "STATUS", "210 Unlocked")

	require.NoError(d.SetPosition(50.0))

	// Unlocked only corrects a presumed Locked; a mid travel stop stays.
	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusStopped, status)
	require.Equal(50.0, position)
	require.Equal(uint64(0), d.Metrics().SyncCorrectionCount.Load())
}

func TestDeviceSyncStatusWeakLockIgnored(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.Respond("STATUS", "STATUS", "212 Weak Locked")

	require.NoError(d.SetPosition(100.0))

	// The weak lock passes by during normal travel; only the strong lock
	// overrides the presumed status.
	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusOpen, status)
	require.Equal(100.0, position)
	require.Equal(uint64(0), d.Metrics().SyncCorrectionCount.Load())
}

func TestDeviceSyncStatusGoesOffline(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)

	require.NoError(d.SetPosition(100.0))
	m.ReadErr = errors.New("cable pulled")

	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusDisconnected, status)
	require.Equal(100.0, position)
}

func TestDeviceSyncStatusReconnects(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)

	status, position := d.SyncStatus(context.Background())
	require.Equal(StatusLocked, status)
	require.Equal(0.0, position)
	require.Equal(uint64(1), d.Metrics().ReconnectCount.Load())
}

func TestDeviceSyncStatusReconnectFails(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	m.OpenErr = errors.New("no route")

	status, _ := d.SyncStatus(context.Background())
	require.Equal(StatusDisconnected, status)
	require.Equal(uint64(1), d.Metrics().ReconnectCount.Load())
}

func TestDeviceDisconnect(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)

	require.NoError(d.Connect(context.Background()))
	require.NoError(d.Disconnect())
	require.Equal(StatusDisconnected, d.Status())
	require.False(m.Opened())

	// Idempotent.
	require.NoError(d.Disconnect())
}

func TestDeviceStatusListeners(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)
	m.Respond("OPEN", "OPEN", "200 OK")

	var transitions []Status
	id := d.OnStatusChange(func(_, next Status) {
		transitions = append(transitions, next)
	})

	require.NoError(d.Connect(context.Background()))
	require.NoError(d.Open(context.Background()))
	require.Equal([]Status{StatusLocked, StatusUnlocking}, transitions)

	d.RemoveStatusListener(id)
	require.NoError(d.Disconnect())
	require.Equal([]Status{StatusLocked, StatusUnlocking}, transitions)
}

func TestDeviceMetrics(t *testing.T) {
	require := require.New(t)

	d, m := newTestDevice(t)
	scriptIdentity(m)

	require.NoError(d.Connect(context.Background()))

	metrics := d.Metrics()
	require.Equal(uint64(3), metrics.CommandSendCount.Load())
	require.Equal(uint64(0), metrics.CommandErrCount.Load())

	// An unscripted command comes back empty.
	require.Error(d.Open(context.Background()))
	require.Equal(uint64(1), metrics.CommandErrCount.Load())
	require.Equal(uint64(1), metrics.EmptyResponseCount.Load())
}
