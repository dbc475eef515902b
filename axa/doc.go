// Package axa drives AXA Remote motorized window openers over their
// line-oriented text command protocol, carried by a direct serial link or a
// Telnet-over-TCP serial bridge.
//
// The AXA Remote accepts bare keyword commands (DEVICE, VERSION, STATUS,
// OPEN, CLOSE, STOP), echoes each command back as the first response line
// and follows it with zero or more "<code> <message>" lines. It reports no
// continuous position, only discrete lock codes, so this package tracks a
// presumed motion status and extrapolates the position from the time elapsed
// since a motion began.
//
// # Command Channel
//
// Commands are serialized: at most one command is in flight per Device at
// any instant. Each exchange resets the link, wakes the opener with a blank
// line, discards one stale line, writes the command and collects response
// lines until the link goes quiet. An empty response, a missing command echo
// or undecodable bytes discard the whole exchange.
//
// # Position Estimation
//
// Motion is modeled as linear ramps over empirically measured durations:
// unlocking takes about 5 seconds, a full open or close run 42 seconds and
// locking 16 seconds. Status and position reads recompute the estimate
// lazily from the wall clock; there are no background timers. SyncStatus
// reconciles the presumed status against the device's reported lock state
// and demotes the device to Disconnected when it stops responding.
package axa
