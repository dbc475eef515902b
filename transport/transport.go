// Package transport provides the byte-level links used to reach an AXA Remote
// window opener: a serial port implementation for direct RS-485 wiring, a
// Telnet implementation for serial-over-WiFi bridges, and a scripted mock for
// tests.
//
// The wire protocol is line oriented (CRLF-terminated ASCII), and the AXA
// Remote signals the end of a response implicitly by going quiet. Transports
// therefore expose a ReadLine primitive whose read timeout doubles as the
// end-of-response boundary, plus the buffer-reset and flush hooks the command
// engine needs to recover a half-duplex link from a desynchronized state.
package transport

import "errors"

// ErrNotOpen is returned by I/O operations on a transport that is not open.
var ErrNotOpen = errors.New("transport not open")

// Transport is the minimal contract the command engine requires from a link
// to an AXA Remote.
//
// Implementations must tolerate repeated Open and Close calls; both are
// idempotent. All other operations require an open transport and return
// ErrNotOpen otherwise.
type Transport interface {
	// Open establishes the link. It is idempotent: opening an already open
	// transport is a no-op. A nil return means a usable link exists.
	Open() error

	// Opened reports whether a usable link currently exists.
	Opened() bool

	// Close tears the link down. It is idempotent.
	Close() error

	// Reset discards unread input buffered on the link, recovering from
	// stale bytes left over by a previous exchange.
	Reset() error

	// Write sends raw bytes over the link.
	Write(p []byte) (int, error)

	// Flush blocks until buffered output has been transmitted, where the
	// underlying link supports it.
	Flush() error

	// ReadLine reads the next line including its terminator. A quiet link
	// (the read timeout expires without any byte arriving) yields an empty
	// slice and a nil error; that quiet period is the protocol's natural
	// end-of-response boundary. Bytes received before the timeout but
	// without a terminator are returned as a partial line.
	ReadLine() ([]byte, error)

	// String identifies the link target for logging, e.g. "/dev/ttyUSB0"
	// or "192.168.1.34:23".
	String() string
}

// ReadLines reads response lines from t until the link goes quiet.
//
// It never returns lines collected after an I/O error; the error wins.
func ReadLines(t Transport) ([][]byte, error) {
	var lines [][]byte

	for {
		line, err := t.ReadLine()
		if err != nil {
			return nil, err
		}

		if len(line) == 0 {
			return lines, nil
		}

		lines = append(lines, line)
	}
}
