package logger

// NopLogger discards all log records. It satisfies callers that want a
// fully silent driver without any conditional logging in the control flow.
type NopLogger struct{}

var _ Logger = (*NopLogger)(nil)

// NewNop returns a Logger that discards everything.
func NewNop() Logger {
	return &NopLogger{}
}

func (*NopLogger) Debug(msg string, keysAndValues ...any) {}
func (*NopLogger) Info(msg string, keysAndValues ...any)  {}
func (*NopLogger) Warn(msg string, keysAndValues ...any)  {}
func (*NopLogger) Error(msg string, keysAndValues ...any) {}
func (*NopLogger) Fatal(msg string, keysAndValues ...any) {}

func (n *NopLogger) With(keyValues ...any) Logger { return n }

func (*NopLogger) Level() LogLevel         { return FatalLevel }
func (*NopLogger) SetLevel(level LogLevel) {}
