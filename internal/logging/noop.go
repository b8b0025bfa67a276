package logging

// NoopLogger discards all log messages.
var NoopLogger Logger = noopLogger{}

type noopLogger struct{}

func (noopLogger) Debug(args ...interface{})                   {}
func (noopLogger) Debugf(format string, args ...interface{})   {}
func (noopLogger) Error(args ...interface{})                   {}
func (noopLogger) Errorf(format string, args ...interface{})   {}
func (noopLogger) Fatal(args ...interface{})                   {}
func (noopLogger) Fatalf(format string, args ...interface{})   {}
func (noopLogger) Info(args ...interface{})                    {}
func (noopLogger) Infof(format string, args ...interface{})    {}
func (noopLogger) Warning(args ...interface{})                 {}
func (noopLogger) Warningf(format string, args ...interface{}) {}
