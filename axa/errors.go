package axa

import "errors"

var (
	// ErrEmptyResponse indicates that the device returned zero lines. On a
	// serial link this usually points at a wiring fault.
	ErrEmptyResponse = errors.New("empty response")

	// ErrNoEcho indicates that the first response line did not echo the
	// sent command. The exchange is out of sync and the whole response is
	// discarded.
	ErrNoEcho = errors.New("no command echo received")

	// ErrInvalidResponse indicates that a response line contained bytes
	// that do not decode as text. The whole response is discarded.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrCommandFailed indicates that the device did not acknowledge a
	// command with status code 200.
	ErrCommandFailed = errors.New("command failed")

	// ErrCommandTimeout indicates that a command did not complete within
	// the configured command timeout.
	ErrCommandTimeout = errors.New("command timeout")

	// ErrNotConnected indicates that no usable link to the device exists.
	ErrNotConnected = errors.New("not connected")

	// ErrDeviceIdentity indicates that the device did not answer the
	// identity query during connect.
	ErrDeviceIdentity = errors.New("device identity query failed")

	// ErrPositionRange indicates a position outside the range [0, 100].
	ErrPositionRange = errors.New("position out of range [0, 100]")
)
