package logger

// NoOpLogger discards everything. Used by tests and by callers that pass a nil logger.
type NoOpLogger struct{}

// Discard is a ready-to-use NoOpLogger instance.
var Discard Logger = NoOpLogger{}

func (l NoOpLogger) Debug(msg string, fields map[string]interface{}) {}
func (l NoOpLogger) Info(msg string, fields map[string]interface{})  {}
func (l NoOpLogger) Warn(msg string, fields map[string]interface{})  {}
func (l NoOpLogger) Error(msg string, fields map[string]interface{}) {}

// Fatal does NOT exit the application.
func (l NoOpLogger) Fatal(msg string, fields map[string]interface{}) {}

func (l NoOpLogger) Debugf(format string, args ...interface{}) {}
func (l NoOpLogger) Infof(format string, args ...interface{})  {}
func (l NoOpLogger) Warnf(format string, args ...interface{})  {}
func (l NoOpLogger) Errorf(format string, args ...interface{}) {}
func (l NoOpLogger) Fatalf(format string, args ...interface{}) {}

func (l NoOpLogger) WithField(key string, value interface{}) Logger  { return l }
func (l NoOpLogger) WithFields(fields map[string]interface{}) Logger { return l }

func (l NoOpLogger) Sync() error { return nil }

var _ Logger = NoOpLogger{}
