package axa

// RawStatus is a numeric status code as given by the AXA Remote.
type RawStatus int

// Status codes reported by the AXA Remote.
const (
	// RawStatusNone indicates that no status code was present in the
	// response.
	RawStatusNone RawStatus = 0

	// RawStatusOK acknowledges a command.
	RawStatusOK RawStatus = 200

	// RawStatusUnlocked is reported while the opener is not locked.
	RawStatusUnlocked RawStatus = 210

	// RawStatusStrongLocked is reported when the opener is fully locked.
	RawStatusStrongLocked RawStatus = 211

	// RawStatusWeakLocked is reported rarely; it is handled the same as
	// RawStatusStrongLocked.
	RawStatusWeakLocked RawStatus = 212

	// RawStatusDevice precedes the device name.
	RawStatusDevice RawStatus = 260

	// RawStatusVersion precedes the firmware version.
	RawStatusVersion RawStatus = 261

	// RawStatusNotImplemented is reported for unknown commands.
	RawStatusNotImplemented RawStatus = 502
)

// Status represents the presumed motion status of the window opener.
//
// The device only reports the discrete lock codes, so the intermediate
// phases cannot be observed directly; they are tracked by the driver and
// advanced by elapsed time.
type Status int32

// Presumed statuses of the window opener.
const (
	// StatusDisconnected indicates that the device is not reachable.
	StatusDisconnected Status = iota
	// StatusStopped indicates that the opener halted somewhere mid travel.
	StatusStopped
	// StatusLocked indicates that the window is fully closed and locked.
	StatusLocked
	// StatusUnlocking indicates that the opener is unwinding the lock.
	StatusUnlocking
	// StatusOpening indicates that the window is moving open.
	StatusOpening
	// StatusOpen indicates that the window is fully open.
	StatusOpen
	// StatusClosing indicates that the window is moving closed.
	StatusClosing
	// StatusLocking indicates that the opener is winding the lock.
	StatusLocking
)

// IsMoving returns true if the status is one of the motion phases.
func (s Status) IsMoving() bool {
	switch s {
	case StatusUnlocking, StatusOpening, StatusClosing, StatusLocking:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "Disconnected"
	case StatusStopped:
		return "Stopped"
	case StatusLocked:
		return "Locked"
	case StatusUnlocking:
		return "Unlocking"
	case StatusOpening:
		return "Opening"
	case StatusOpen:
		return "Open"
	case StatusClosing:
		return "Closing"
	case StatusLocking:
		return "Locking"
	default:
		return "Unknown"
	}
}
