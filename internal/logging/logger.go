// Copyright (c) 2015-2016 Magnus Bäck <magnus@noun.se>

package logging

import (
	"io"
	"os"

	oplogging "github.com/op/go-logging"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warning(args ...interface{})
	Warningf(format string, args ...interface{})
}

const (
	logModule = "instrumentation-bridge"
	logFormat = `%{time:2006-01-02T15:04:05.000Z07:00} %{level:.4s} %{shortfile} %{message}`
)

var (
	log     = oplogging.MustGetLogger(logModule)
	backend = newBackend(os.Stderr)
)

func newBackend(w io.Writer) oplogging.LeveledBackend {
	formatted := oplogging.NewBackendFormatter(
		oplogging.NewLogBackend(w, "", 0),
		oplogging.MustStringFormatter(logFormat),
	)
	return oplogging.AddModuleLevel(formatted)
}

// MustGetLogger returns the application's default logger.
func MustGetLogger() Logger {
	log.SetBackend(backend)
	return log
}

// SetLevel sets the desired log level for the default logger.
func SetLevel(loglevel string) {
	level, err := oplogging.LogLevel(loglevel)
	if err != nil {
		level = oplogging.WARNING
		log.Warning("invalid log level, fall back to WARNING")
	}
	backend.SetLevel(level, logModule)
}

// FileOptions controls the rotation of the log file.
type FileOptions struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// SetOutputFile redirects the default logger into a rotating log
// file. stdout usually carries the status protocol, so diagnostics
// must not be interleaved with it.
func SetOutputFile(filename string, opts FileOptions) io.Closer {
	writer := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    opts.MaxSize,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge,
		Compress:   opts.Compress,
	}

	SetOutput(writer)
	return writer
}

// SetOutput redirects the default logger to w, keeping the log level.
func SetOutput(w io.Writer) {
	level := backend.GetLevel(logModule)
	backend = newBackend(w)
	backend.SetLevel(level, logModule)
	log.SetBackend(backend)
}
