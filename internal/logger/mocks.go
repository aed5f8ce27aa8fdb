package logger

import "github.com/stretchr/testify/mock"

// MockLogger implements Logger on top of testify's mock. Only the structured
// methods are recorded; the formatted variants are accepted silently.
type MockLogger struct {
	mock.Mock
}

var _ Logger = (*MockLogger)(nil)

// Debug mocks the Debug method
func (m *MockLogger) Debug(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// Info mocks the Info method
func (m *MockLogger) Info(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// Warn mocks the Warn method
func (m *MockLogger) Warn(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// Error mocks the Error method
func (m *MockLogger) Error(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

// Fatal mocks the Fatal method
func (m *MockLogger) Fatal(msg string, fields map[string]interface{}) {
	m.Called(msg, fields)
}

func (m *MockLogger) Debugf(format string, args ...interface{}) {}
func (m *MockLogger) Infof(format string, args ...interface{})  {}
func (m *MockLogger) Warnf(format string, args ...interface{})  {}
func (m *MockLogger) Errorf(format string, args ...interface{}) {}
func (m *MockLogger) Fatalf(format string, args ...interface{}) {}

// WithField returns the same mock so expectations keep matching.
func (m *MockLogger) WithField(key string, value interface{}) Logger { return m }

// WithFields returns the same mock so expectations keep matching.
func (m *MockLogger) WithFields(fields map[string]interface{}) Logger { return m }

func (m *MockLogger) Sync() error {
	args := m.Called()
	return args.Error(0)
}
