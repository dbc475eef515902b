package transport

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

// DefaultTelnetTimeout bounds dialing and writing on a Telnet link. Reads use
// a fifth of it per line, which is plenty for a response that is already in
// flight while keeping the end-of-response boundary snappy.
const DefaultTelnetTimeout = time.Second

// Telnet protocol bytes (RFC 854). Serial-over-WiFi bridges such as esp-link
// emit option negotiation when a client connects; the sequences are stripped
// from the data stream since the AXA Remote protocol is plain ASCII.
const (
	telnetSE   = 240
	telnetSB   = 250
	telnetWill = 251
	telnetDont = 254
	telnetIAC  = 255
)

// TelnetConfig holds the configuration for a Telnet link to an AXA Remote
// behind a serial-to-network bridge.
type TelnetConfig struct {
	// Host is the bridge address, an IP or hostname.
	Host string

	// Port is the TCP port the bridge listens on.
	Port int

	// Timeout bounds dial and write operations; per-line reads use a fifth
	// of it. Default is 1 second.
	Timeout time.Duration
}

// Telnet is a Transport over a TCP connection to a serial bridge speaking
// the Telnet protocol.
type Telnet struct {
	cfg  TelnetConfig
	addr string

	mu     sync.Mutex
	conn   net.Conn
	reader *bufio.Reader
}

var _ Transport = (*Telnet)(nil)

// NewTelnet creates a Telnet Transport for the given configuration. The
// connection is not dialed until Open is called.
func NewTelnet(cfg TelnetConfig) (*Telnet, error) {
	if cfg.Host == "" {
		return nil, errors.New("transport: telnet host is required")
	}

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("transport: telnet port %d out of range [1, 65535]", cfg.Port)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTelnetTimeout
	}

	return &Telnet{
		cfg:  cfg,
		addr: net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
	}, nil
}

func (t *Telnet) Open() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return nil
	}

	conn, err := net.DialTimeout("tcp", t.addr, t.cfg.Timeout)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", t.addr, err)
	}

	t.conn = conn
	t.reader = bufio.NewReader(conn)

	return nil
}

func (t *Telnet) Opened() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil
}

func (t *Telnet) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil
	t.reader = nil

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}

	return nil
}

// Reset drains whatever the bridge has buffered by reading lines until the
// link goes quiet.
func (t *Telnet) Reset() error {
	_, err := ReadLines(t)

	return err
}

func (t *Telnet) Write(p []byte) (int, error) {
	conn, _, err := t.link()
	if err != nil {
		return 0, err
	}

	if err := conn.SetWriteDeadline(time.Now().Add(t.cfg.Timeout)); err != nil {
		return 0, err
	}

	n, err := conn.Write(p)
	if err != nil {
		t.drop(conn)

		return n, fmt.Errorf("transport: write %s: %w", t.addr, err)
	}

	return n, nil
}

// Flush is a no-op: TCP writes are handed to the kernel immediately.
func (t *Telnet) Flush() error {
	return nil
}

func (t *Telnet) ReadLine() ([]byte, error) {
	conn, reader, err := t.link()
	if err != nil {
		return nil, err
	}

	if err := conn.SetReadDeadline(time.Now().Add(t.cfg.Timeout / 5)); err != nil {
		return nil, err
	}

	var line []byte

	for {
		b, err := reader.ReadByte()
		if err != nil {
			if isTimeout(err) {
				return line, nil
			}

			// EOF or reset: the bridge dropped us. Tear the link down so
			// the next Open re-dials.
			t.drop(conn)

			return nil, fmt.Errorf("transport: read %s: %w", t.addr, err)
		}

		if b == telnetIAC {
			literal, err := consumeIAC(reader)
			if err != nil {
				if isTimeout(err) {
					return line, nil
				}

				t.drop(conn)

				return nil, fmt.Errorf("transport: read %s: %w", t.addr, err)
			}

			line = append(line, literal...)

			continue
		}

		line = append(line, b)
		if b == '\n' {
			return line, nil
		}
	}
}

func (t *Telnet) String() string {
	return t.addr
}

func (t *Telnet) link() (net.Conn, *bufio.Reader, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil, nil, ErrNotOpen
	}

	return t.conn, t.reader, nil
}

// drop closes and forgets conn, unless another connection has replaced it.
func (t *Telnet) drop(conn net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != conn {
		return
	}

	_ = t.conn.Close()
	t.conn = nil
	t.reader = nil
}

// consumeIAC reads the remainder of a Telnet IAC sequence, leaving the data
// stream positioned after it. An IAC IAC pair escapes a literal 0xFF data
// byte, which is returned.
func consumeIAC(r *bufio.Reader) ([]byte, error) {
	cmd, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {
	case cmd == telnetIAC:
		return []byte{telnetIAC}, nil

	case cmd == telnetSB:
		// Subnegotiation: skip until IAC SE.
		for {
			b, err := r.ReadByte()
			if err != nil {
				return nil, err
			}

			if b != telnetIAC {
				continue
			}

			b, err = r.ReadByte()
			if err != nil {
				return nil, err
			}

			if b == telnetSE {
				return nil, nil
			}
		}

	case cmd >= telnetWill && cmd <= telnetDont:
		// WILL/WONT/DO/DONT carry one option byte.
		_, err := r.ReadByte()

		return nil, err

	default:
		// Bare two-byte command (NOP, GA, ...).
		return nil, nil
	}
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
