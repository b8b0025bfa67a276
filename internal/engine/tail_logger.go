package engine

import "github.com/testbridge/instrumentation-bridge/internal/logging"

// tailLogger routes the messages of the file follower to the injected
// logger. The follower never gets to terminate the process.
type tailLogger struct {
	log logging.Logger
}

func (t tailLogger) Fatal(v ...interface{})                 { t.log.Error(v...) }
func (t tailLogger) Fatalf(format string, v ...interface{}) { t.log.Errorf(format, v...) }
func (t tailLogger) Fatalln(v ...interface{})               { t.log.Error(v...) }
func (t tailLogger) Panic(v ...interface{})                 { t.log.Error(v...) }
func (t tailLogger) Panicf(format string, v ...interface{}) { t.log.Errorf(format, v...) }
func (t tailLogger) Panicln(v ...interface{})               { t.log.Error(v...) }
func (t tailLogger) Print(v ...interface{})                 { t.log.Debug(v...) }
func (t tailLogger) Printf(format string, v ...interface{}) { t.log.Debugf(format, v...) }
func (t tailLogger) Println(v ...interface{})               { t.log.Debug(v...) }
