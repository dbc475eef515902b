package logger

import (
	"github.com/stretchr/testify/mock"
)

// MockLogger is a testify mock of the Logger interface for asserting what
// the code under test logged.
//
// Each logging method records the message and the key-value slice as two
// call arguments, so an expectation takes two matchers:
// On("Warn", mock.Anything, mock.Anything).
type MockLogger struct {
	mock.Mock
}

var _ Logger = (*MockLogger)(nil)

// NewMockLogger creates a MockLogger with no expectations registered.
func NewMockLogger() *MockLogger {
	return &MockLogger{}
}

func (m *MockLogger) Debug(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Info(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Warn(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Error(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) Fatal(msg string, keysAndValues ...any) {
	m.Called(msg, keysAndValues)
}

func (m *MockLogger) With(keysAndValues ...any) Logger {
	args := m.Called(keysAndValues...)

	return args.Get(0).(Logger)
}

func (m *MockLogger) Level() Level {
	args := m.Called()

	return args.Get(0).(Level)
}

func (m *MockLogger) SetLevel(level Level) {
	m.Called(level)
}
