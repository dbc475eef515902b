package axa

import (
	"errors"
	"time"

	"github.com/axaremote/go-axa/logger"
)

// Motion durations of an AXA Remote 2.0, measured on the actual hardware.
// The opener reports nothing while moving, so position estimation models the
// motion as linear ramps over these durations.
const (
	DefaultUnlockTime = 5 * time.Second
	DefaultOpenTime   = 42 * time.Second
	DefaultCloseTime  = DefaultOpenTime
	DefaultLockTime   = 16 * time.Second
)

// DefaultCommandTimeout bounds a full command round trip, including the wait
// for the command slot when another command is in flight.
const DefaultCommandTimeout = 5 * time.Second

// MotionTimings holds the durations of the four motion phases of the opener.
type MotionTimings struct {
	// Unlock is the time to unwind the lock before the window starts moving.
	Unlock time.Duration
	// Open is the time of a full open run after unlocking.
	Open time.Duration
	// Close is the time of a full close run before locking starts.
	Close time.Duration
	// Lock is the time to wind the lock after the window is closed.
	Lock time.Duration
}

// DefaultMotionTimings returns the motion timings of an AXA Remote 2.0.
func DefaultMotionTimings() MotionTimings {
	return MotionTimings{
		Unlock: DefaultUnlockTime,
		Open:   DefaultOpenTime,
		Close:  DefaultCloseTime,
		Lock:   DefaultLockTime,
	}
}

// DeviceConfig holds all configuration for a Device.
type DeviceConfig struct {
	commandTimeout time.Duration
	timings        MotionTimings
	logger         logger.Logger
}

func newDeviceConfig(opts ...DeviceOption) (*DeviceConfig, error) {
	cfg := &DeviceConfig{
		commandTimeout: DefaultCommandTimeout,
		timings:        DefaultMotionTimings(),
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// CommandTimeout returns the configured command timeout.
func (cfg *DeviceConfig) CommandTimeout() time.Duration { return cfg.commandTimeout }

// Timings returns the configured motion timings.
func (cfg *DeviceConfig) Timings() MotionTimings { return cfg.timings }

// GetLogger returns the configured logger.
func (cfg *DeviceConfig) GetLogger() logger.Logger { return cfg.logger }

// --- DeviceOption ---

// DeviceOption is a functional option for configuring a Device.
type DeviceOption interface {
	apply(*DeviceConfig) error
}

type deviceOptFunc func(*DeviceConfig) error

func (f deviceOptFunc) apply(cfg *DeviceConfig) error { return f(cfg) }

// WithCommandTimeout sets the timeout for a full command round trip.
func WithCommandTimeout(d time.Duration) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if d <= 0 {
			return errors.New("axa: command timeout must be positive")
		}
		cfg.commandTimeout = d

		return nil
	})
}

// WithMotionTimings sets the motion timings used for position estimation,
// for openers whose travel times differ from the AXA Remote 2.0.
func WithMotionTimings(t MotionTimings) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if t.Unlock <= 0 || t.Open <= 0 || t.Close <= 0 || t.Lock <= 0 {
			return errors.New("axa: motion timings must be positive")
		}
		cfg.timings = t

		return nil
	})
}

// WithLogger sets the logger for the device.
func WithLogger(l logger.Logger) DeviceOption {
	return deviceOptFunc(func(cfg *DeviceConfig) error {
		if l == nil {
			return errors.New("axa: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
