package reporter

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
)

// crashLockWait bounds how long a crash report waits for a
// notification that is still being delivered.
const crashLockWait = 2 * time.Second

// ReportProcessCrash produces a crash report for the test in flight
// and reports it as failed. It is meant to be called from crash hooks,
// possibly on another goroutine, and never panics or returns an error.
func (p *Printer) ReportProcessCrash(crash error) {
	p.log.Info("reportProcessCrash")

	var d lifecycle.Description
	defer func() {
		if r := recover(); r != nil {
			if d.IsZero() {
				p.log.Errorf("Failed to initialize test before process crash: %v", r)
			} else {
				p.log.Errorf("Failed to mark test %s as finished after process crash: %v", d, r)
			}
		}
	}()

	if !p.lockWithin(crashLockWait) {
		p.log.Errorf("Failed to report process crash: notification still in progress after %v", crashLockWait)
		return
	}
	defer p.mu.Unlock()

	trace := renderTrace(crash)
	d, ok := p.state.onProcessCrash(trace)
	if !ok {
		p.log.Error("Failed to initialize test before process crash")
		return
	}

	failure := lifecycle.Failure{Description: d, Trace: trace}
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestFailure, Failure: failure})
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestFinished, Description: d})

	code, b := p.state.onTestFinish()
	if p.onCrash != nil {
		p.onCrash(failure)
	}
	if err := p.sender.Send(code, b); err != nil {
		p.log.Errorf("Failed to mark test %s as finished after process crash: %v", d, err)
	}
}

// CatchPanic runs fn and turns a panic into a crash report for the
// test in flight. The panic is returned as an error.
func (p *Printer) CatchPanic(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v\n%s", r, debug.Stack())
			p.ReportProcessCrash(err)
		}
	}()
	return fn()
}

// InFlight returns the test that has started but not yet finished.
func (p *Printer) InFlight() (lifecycle.Description, bool) {
	if !p.lockWithin(crashLockWait) {
		return lifecycle.Description{}, false
	}
	defer p.mu.Unlock()

	if p.state.identity == nil || !p.state.inFlight {
		return lifecycle.Description{}, false
	}
	return *p.state.identity, true
}

func (p *Printer) lockWithin(d time.Duration) bool {
	deadline := time.Now().Add(d)
	for {
		if p.mu.TryLock() {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func renderTrace(crash error) string {
	if crash == nil {
		return "unknown process crash"
	}
	return fmt.Sprintf("%+v", crash)
}
