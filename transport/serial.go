package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
)

// Serial port parameters of the AXA Remote: 19200 baud, 8 data bits, no
// parity, two stop bits.
const (
	DefaultBaudRate      = 19200
	DefaultSerialTimeout = time.Second
)

// SerialConfig holds the configuration for a serial link to an AXA Remote.
type SerialConfig struct {
	// Port is the serial port path, e.g. "/dev/ttyUSB0" or "COM3".
	Port string

	// BaudRate is the communication speed. Default is 19200, the fixed rate
	// of the AXA Remote.
	BaudRate int

	// ReadTimeout bounds each read on the port and thereby defines the
	// end-of-response boundary. Default is 1 second.
	ReadTimeout time.Duration
}

// Serial is a Transport over a local serial port.
type Serial struct {
	cfg SerialConfig

	mu   sync.Mutex
	port serial.Port
}

var _ Transport = (*Serial)(nil)

// NewSerial creates a serial Transport for the given configuration. The port
// is not opened until Open is called.
func NewSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("transport: serial port path is required")
	}

	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultSerialTimeout
	}

	return &Serial{cfg: cfg}, nil
}

func (t *Serial) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port != nil {
		return nil
	}

	mode := &serial.Mode{
		BaudRate: t.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.TwoStopBits,
	}

	port, err := serial.Open(t.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("transport: open %s: %w", t.cfg.Port, err)
	}

	if err := port.SetReadTimeout(t.cfg.ReadTimeout); err != nil {
		_ = port.Close()

		return fmt.Errorf("transport: set read timeout on %s: %w", t.cfg.Port, err)
	}

	t.port = port

	return nil
}

func (t *Serial) Opened() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.port != nil
}

func (t *Serial) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil
	}

	err := t.port.Close()
	t.port = nil

	return err
}

func (t *Serial) Reset() error {
	port, err := t.getPort()
	if err != nil {
		return err
	}

	if err := port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("transport: reset input buffer: %w", err)
	}

	if err := port.ResetOutputBuffer(); err != nil {
		return fmt.Errorf("transport: reset output buffer: %w", err)
	}

	return nil
}

func (t *Serial) Write(p []byte) (int, error) {
	port, err := t.getPort()
	if err != nil {
		return 0, err
	}

	return port.Write(p)
}

func (t *Serial) Flush() error {
	port, err := t.getPort()
	if err != nil {
		return err
	}

	return port.Drain()
}

// ReadLine reads bytes one at a time until a LF arrives or the port read
// timeout expires. At 19200 baud the per-byte overhead is irrelevant, and
// the per-read timeout semantics match the line discipline the AXA Remote
// expects: any gap longer than the timeout ends the response.
func (t *Serial) ReadLine() ([]byte, error) {
	port, err := t.getPort()
	if err != nil {
		return nil, err
	}

	var line []byte
	buf := make([]byte, 1)

	for {
		n, err := port.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("transport: read %s: %w", t.cfg.Port, err)
		}

		if n == 0 {
			// Read timeout: quiet link, or a partial line if bytes arrived.
			return line, nil
		}

		line = append(line, buf[0])
		if buf[0] == '\n' {
			return line, nil
		}
	}
}

func (t *Serial) String() string {
	return t.cfg.Port
}

func (t *Serial) getPort() (serial.Port, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.port == nil {
		return nil, ErrNotOpen
	}

	return t.port, nil
}
