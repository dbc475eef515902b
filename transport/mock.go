package transport

import (
	"strings"
	"sync"
)

// Mock is an in-memory Transport for tests. Responses are scripted per
// command with Respond; a written command enqueues its scripted lines, and
// ReadLine serves them until the queue is empty, after which the link reads
// as quiet. The empty command key scripts a response to the wake-up blank
// line.
type Mock struct {
	// OpenErr, WriteErr, ReadErr, ResetErr and FlushErr are returned by the
	// corresponding methods when set.
	OpenErr  error
	WriteErr error
	ReadErr  error
	ResetErr error
	FlushErr error

	mu        sync.Mutex
	opened    bool
	writes    []string
	queue     [][]byte
	responses map[string][][]byte
}

var _ Transport = (*Mock)(nil)

// NewMock creates an empty Mock transport.
func NewMock() *Mock {
	return &Mock{responses: make(map[string][][]byte)}
}

// Respond scripts the full response to cmd, echo line included. Each line is
// served with a CRLF terminator appended.
//
//	m.Respond("OPEN", "OPEN", "200 OK")
func (m *Mock) Respond(cmd string, lines ...string) {
	raw := make([][]byte, 0, len(lines))
	for _, line := range lines {
		raw = append(raw, []byte(line+"\r\n"))
	}

	m.RespondRaw(cmd, raw...)
}

// RespondRaw scripts the response to cmd as raw lines, served byte for byte.
// It allows malformed terminators and invalid encodings.
func (m *Mock) RespondRaw(cmd string, lines ...[]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.responses[strings.ToUpper(cmd)] = lines
}

// Writes returns every payload written so far, in order.
func (m *Mock) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	writes := make([]string, len(m.writes))
	copy(writes, m.writes)

	return writes
}

// Commands returns the trimmed non-blank payloads written so far.
func (m *Mock) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cmds []string

	for _, w := range m.writes {
		trimmed := strings.TrimRight(w, "\r\n")
		if trimmed != "" {
			cmds = append(cmds, trimmed)
		}
	}

	return cmds
}

func (m *Mock) Open() error {
	if m.OpenErr != nil {
		return m.OpenErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.opened = true

	return nil
}

func (m *Mock) Opened() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.opened
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.opened = false
	m.queue = nil

	return nil
}

func (m *Mock) Reset() error {
	if m.ResetErr != nil {
		return m.ResetErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.queue = nil

	return nil
}

func (m *Mock) Write(p []byte) (int, error) {
	if m.WriteErr != nil {
		return 0, m.WriteErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return 0, ErrNotOpen
	}

	m.writes = append(m.writes, string(p))

	cmd := strings.ToUpper(strings.TrimRight(string(p), "\r\n"))
	if lines, ok := m.responses[cmd]; ok {
		m.queue = append(m.queue, lines...)
	}

	return len(p), nil
}

func (m *Mock) Flush() error {
	return m.FlushErr
}

func (m *Mock) ReadLine() ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.opened {
		return nil, ErrNotOpen
	}

	if len(m.queue) == 0 {
		return nil, nil
	}

	line := m.queue[0]
	m.queue = m.queue[1:]

	return line, nil
}

func (m *Mock) String() string {
	return "mock"
}
