package axa

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/axaremote/go-axa/logger"
	"github.com/axaremote/go-axa/transport"
	"github.com/puzpuzpuz/xsync/v3"
)

// Commands understood by the AXA Remote.
const (
	cmdDevice  = "DEVICE"
	cmdVersion = "VERSION"
	cmdStatus  = "STATUS"
	cmdOpen    = "OPEN"
	cmdClose   = "CLOSE"
	cmdStop    = "STOP"
)

// StatusListener is a function type that is invoked when the presumed status
// of the device changes, whether by a command, by elapsed time or by a sync
// correction.
//
// Note: the listener is invoked in blocking mode. Take care with
// long-running implementations.
type StatusListener func(prev Status, next Status)

// Device drives one AXA Remote window opener over a Transport. It serializes
// commands, tracks the presumed motion status and estimates the position
// from elapsed time.
//
// One Device instance owns its transport exclusively; create one Device per
// physical opener.
type Device struct {
	cfg     *DeviceConfig
	trans   transport.Transport
	channel *cmdChannel
	est     *estimator
	metrics *DeviceMetrics
	logger  logger.Logger

	mu      sync.Mutex
	name    string
	version string

	listeners  *xsync.MapOf[uint64, StatusListener]
	listenerID atomic.Uint64
}

// NewDevice creates a Device that drives the window opener reachable over t.
func NewDevice(t transport.Transport, opts ...DeviceOption) (*Device, error) {
	if t == nil {
		return nil, errors.New("axa: transport must not be nil")
	}

	cfg, err := newDeviceConfig(opts...)
	if err != nil {
		return nil, err
	}

	d := &Device{
		cfg:       cfg,
		trans:     t,
		est:       newEstimator(cfg.Timings()),
		metrics:   &DeviceMetrics{},
		logger:    cfg.GetLogger(),
		listeners: xsync.NewMapOf[uint64, StatusListener](),
	}
	d.channel = newCmdChannel(t, d.logger, d.metrics)
	d.est.onChange = d.notifyStatusChange

	return d, nil
}

// NewSerialDevice creates a Device for an opener wired to a local serial
// port, e.g. "/dev/ttyUSB0".
func NewSerialDevice(port string, opts ...DeviceOption) (*Device, error) {
	t, err := transport.NewSerial(transport.SerialConfig{Port: port})
	if err != nil {
		return nil, err
	}

	return NewDevice(t, opts...)
}

// NewTelnetDevice creates a Device for an opener behind a serial-to-network
// bridge.
func NewTelnetDevice(host string, port int, opts ...DeviceOption) (*Device, error) {
	t, err := transport.NewTelnet(transport.TelnetConfig{Host: host, Port: port})
	if err != nil {
		return nil, err
	}

	return NewDevice(t, opts...)
}

// Connect opens the transport, captures the device identity and seeds the
// presumed status from the reported lock state. A locked opener starts as
// Locked at position 0; any other report starts as Open at position 100,
// since the lock codes cannot distinguish partially open positions.
func (d *Device) Connect(ctx context.Context) error {
	if err := d.trans.Open(); err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}

	response, err := d.send(ctx, cmdDevice)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceIdentity, err)
	}

	if code, msg := splitResponse(response); code == RawStatusDevice {
		d.setIdentity(msg, "")
	}

	// A failed version query is not fatal; the banner is informational.
	response, _ = d.send(ctx, cmdVersion)
	if code, msg := splitResponse(response); code == RawStatusVersion {
		if _, rest, ok := strings.Cut(msg, " "); ok {
			d.setIdentity("", strings.TrimSpace(rest))
		}
	}

	code, _, _ := d.RawStatus(ctx)
	switch code {
	case RawStatusStrongLocked, RawStatusWeakLocked:
		// Weak locked is handled as if the opener is strong locked.
		d.est.force(StatusLocked, 0.0)
	default:
		d.est.force(StatusOpen, 100.0)
	}

	d.logger.Info("connected",
		"transport", d.trans.String(),
		"device", d.Name(),
		"version", d.Version(),
		"status", d.Status(),
	)

	return nil
}

// Disconnect closes the transport and sets the presumed status to
// Disconnected, freezing the position estimate. It never fails; closing an
// already closed link is a no-op.
func (d *Device) Disconnect() error {
	if err := d.trans.Close(); err != nil {
		d.logger.Warn("close transport", "transport", d.trans.String(), "error", err)
	}

	d.est.setStatus(StatusDisconnected)

	return nil
}

// Open commands the window to open. A locked opener unlocks first; an opener
// stopped mid travel resumes opening.
func (d *Device) Open(ctx context.Context) error {
	if err := d.command(ctx, cmdOpen); err != nil {
		return err
	}

	d.est.commandOpen(time.Now())

	return nil
}

// Close commands the window to close. The opener locks by itself once the
// window is fully closed.
func (d *Device) Close(ctx context.Context) error {
	if err := d.command(ctx, cmdClose); err != nil {
		return err
	}

	d.est.commandClose(time.Now())

	return nil
}

// Stop halts the window mid travel. The opener does not report where it
// stopped, so the presumed status and position are left untouched.
func (d *Device) Stop(ctx context.Context) error {
	return d.command(ctx, cmdStop)
}

// RawStatus queries the status code as given by the device, with its
// message.
func (d *Device) RawStatus(ctx context.Context) (RawStatus, string, error) {
	response, err := d.send(ctx, cmdStatus)
	if err != nil {
		return RawStatusNone, "", err
	}

	code, msg := splitResponse(response)

	return code, msg, nil
}

// SyncStatus reconciles the presumed status with the lock state the device
// reports and returns the reconciled status and position.
//
// A disconnected device is reconnected first. When the device stops
// answering, the presumed status is demoted to Disconnected rather than
// surfacing an error; callers re-poll. A reported strong lock overrides any
// other presumed status, and a reported unlock while the opener is presumed
// Locked means something else moved the window, which is handled as fully
// open.
func (d *Device) SyncStatus(ctx context.Context) (Status, float64) {
	status, _ := d.est.snapshot(time.Now())

	if status == StatusDisconnected {
		d.metrics.incReconnectCount()

		if err := d.Connect(ctx); err != nil {
			d.logger.Warn("device is still offline", "transport", d.trans.String(), "error", err)

			return d.est.snapshot(time.Now())
		}
	}

	code, _, err := d.RawStatus(ctx)
	if err != nil || code == RawStatusNone {
		d.logger.Warn("device went offline", "transport", d.trans.String(), "error", err)
		d.est.setStatus(StatusDisconnected)

		return d.est.snapshot(time.Now())
	}

	status, _ = d.est.snapshot(time.Now())

	switch {
	case code == RawStatusStrongLocked && status != StatusLocked:
		d.logger.Info("raw status and presumed status not in sync, correcting",
			"raw_status", int(code), "presumed_status", status)
		d.metrics.incSyncCorrectionCount()
		d.est.force(StatusLocked, 0.0)

	case code == RawStatusUnlocked && status == StatusLocked:
		d.logger.Info("raw status and presumed status not in sync, correcting",
			"raw_status", int(code), "presumed_status", status)
		d.metrics.incSyncCorrectionCount()
		d.est.force(StatusOpen, 100.0)
	}

	return d.est.snapshot(time.Now())
}

// Status returns the presumed status, advanced by the time elapsed since the
// current motion began. It performs no I/O.
func (d *Device) Status() Status {
	status, _ := d.est.snapshot(time.Now())

	return status
}

// Position returns the estimated position of the window, where 0 is fully
// closed and locked and 100 is fully open. It performs no I/O.
func (d *Device) Position() float64 {
	_, position := d.est.snapshot(time.Now())

	return position
}

// SetPosition seeds the position estimate, typically to restore the last
// known state after a restart. It does not move the window. Position 0 is
// presumed Locked, 100 is presumed Open and anything in between is presumed
// Stopped.
func (d *Device) SetPosition(position float64) error {
	if math.IsNaN(position) || position < 0.0 || position > 100.0 {
		return fmt.Errorf("%w: %v", ErrPositionRange, position)
	}

	switch position {
	case 0.0:
		d.est.force(StatusLocked, position)
	case 100.0:
		d.est.force(StatusOpen, position)
	default:
		d.est.force(StatusStopped, position)
	}

	return nil
}

// Name returns the device name captured at connect time, e.g.
// "AXA RV2900 2.0".
func (d *Device) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.name
}

// Version returns the firmware version captured at connect time.
func (d *Device) Version() string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.version
}

// Metrics returns the metrics of the device.
func (d *Device) Metrics() *DeviceMetrics {
	return d.metrics
}

// OnStatusChange registers listener and returns an id that removes it again
// via RemoveStatusListener.
func (d *Device) OnStatusChange(listener StatusListener) uint64 {
	id := d.listenerID.Add(1)
	d.listeners.Store(id, listener)

	return id
}

// RemoveStatusListener removes the listener registered under id.
func (d *Device) RemoveStatusListener(id uint64) {
	d.listeners.Delete(id)
}

// command sends a motion command and verifies the device acknowledged it
// with status code 200.
func (d *Device) command(ctx context.Context, command string) error {
	response, err := d.send(ctx, command)
	if err != nil {
		return err
	}

	if code, _ := splitResponse(response); code != RawStatusOK {
		return fmt.Errorf("%w: %s: %q", ErrCommandFailed, command, response)
	}

	return nil
}

func (d *Device) send(ctx context.Context, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.CommandTimeout())
	defer cancel()

	return d.channel.send(ctx, command)
}

func (d *Device) setIdentity(name, version string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name != "" {
		d.name = name
	}
	if version != "" {
		d.version = version
	}
}

func (d *Device) notifyStatusChange(prev, next Status) {
	d.logger.Debug("status changed", "prev_status", prev, "next_status", next)

	d.listeners.Range(func(_ uint64, listener StatusListener) bool {
		listener(prev, next)

		return true
	})
}
