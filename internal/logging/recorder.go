package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Entry is a single message captured by a Recorder.
type Entry struct {
	Level   string
	Message string
}

// Recorder is a Logger that keeps every message in memory. It is safe
// for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

func (r *Recorder) record(level string, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
}

// Entries returns a copy of the recorded messages.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Contains reports whether any message of the given level contains substr.
// An empty level matches all levels.
func (r *Recorder) Contains(level, substr string) bool {
	for _, e := range r.Entries() {
		if (level == "" || e.Level == level) && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func (r *Recorder) Debug(args ...interface{}) { r.record("DEBUG", fmt.Sprint(args...)) }
func (r *Recorder) Debugf(format string, args ...interface{}) {
	r.record("DEBUG", fmt.Sprintf(format, args...))
}
func (r *Recorder) Error(args ...interface{}) { r.record("ERROR", fmt.Sprint(args...)) }
func (r *Recorder) Errorf(format string, args ...interface{}) {
	r.record("ERROR", fmt.Sprintf(format, args...))
}
func (r *Recorder) Fatal(args ...interface{}) { r.record("FATAL", fmt.Sprint(args...)) }
func (r *Recorder) Fatalf(format string, args ...interface{}) {
	r.record("FATAL", fmt.Sprintf(format, args...))
}
func (r *Recorder) Info(args ...interface{}) { r.record("INFO", fmt.Sprint(args...)) }
func (r *Recorder) Infof(format string, args ...interface{}) {
	r.record("INFO", fmt.Sprintf(format, args...))
}
func (r *Recorder) Warning(args ...interface{}) { r.record("WARNING", fmt.Sprint(args...)) }
func (r *Recorder) Warningf(format string, args ...interface{}) {
	r.record("WARNING", fmt.Sprintf(format, args...))
}
