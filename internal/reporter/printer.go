// Package reporter mirrors the lifecycle of a test run into the status
// protocol read by the supervising process and forwards every
// notification to a remote collector.
package reporter

import (
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/testbridge/instrumentation-bridge/internal/event"
	"github.com/testbridge/instrumentation-bridge/internal/forwarder"
	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
	"github.com/testbridge/instrumentation-bridge/internal/protocol"
	"github.com/testbridge/instrumentation-bridge/internal/summary"
)

//go:generate moq -fmt goimports -pkg reporter_test -out ./sender_mock_test.go ../protocol Sender
//go:generate moq -fmt goimports -pkg reporter_test -out ./forwarder_mock_test.go ../forwarder Forwarder
//go:generate moq -fmt goimports -pkg reporter_test -out ./renderer_mock_test.go ../summary Renderer

// Printer is a lifecycle.Listener that renders the legacy status
// protocol. Status delivery is synchronous and ordered; forwarding to
// the remote collector is handed off and never waited for.
type Printer struct {
	sender    protocol.Sender
	forwarder forwarder.Forwarder
	renderer  summary.Renderer
	now       func() time.Time

	// mu serializes the notification path with crash reports that
	// arrive on other goroutines.
	mu    sync.Mutex
	state runState

	onCrash func(lifecycle.Failure)

	log logging.Logger
}

var _ lifecycle.Listener = (*Printer)(nil)

// Option configures a Printer.
type Option func(*Printer)

// WithClock replaces the clock used to timestamp event records.
func WithClock(now func() time.Time) Option {
	return func(p *Printer) {
		p.now = now
	}
}

// WithCrashHook registers fn to be called with the failure of every
// test that was reported as crashed.
func WithCrashHook(fn func(lifecycle.Failure)) Option {
	return func(p *Printer) {
		p.onCrash = fn
	}
}

// New returns a Printer sending statuses through sender. A nil
// forwarder disables forwarding, a nil renderer uses the text summary.
func New(sender protocol.Sender, fwd forwarder.Forwarder, renderer summary.Renderer, log logging.Logger, opts ...Option) *Printer {
	if fwd == nil {
		fwd = forwarder.Noop{}
	}
	if renderer == nil {
		renderer = summary.TextRenderer{}
	}
	p := &Printer{
		sender:    sender,
		forwarder: fwd,
		renderer:  renderer,
		now:       time.Now,
		state:     newRunState(),
		log:       log,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RunStarted records the number of tests and announces the run.
func (p *Printer) RunStarted(testCount int) error {
	p.forward(lifecycle.Event{Kind: lifecycle.KindRunStarted, TestCount: testCount})

	p.mu.Lock()
	defer p.mu.Unlock()

	b := p.state.onRunStart(testCount)
	return p.send(protocol.ResultStart, b, "run start")
}

// TestStarted sends a status for the start of each test, so long
// running tests can be seen as running.
func (p *Printer) TestStarted(d lifecycle.Description) error {
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestStarted, Description: d})

	p.mu.Lock()
	defer p.mu.Unlock()

	_, b := p.state.onTestStart(d)
	return p.send(protocol.ResultStart, b, d.String())
}

// TestFinished sends the final status of the test in flight.
func (p *Printer) TestFinished(d lifecycle.Description) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dropStale(lifecycle.KindTestFinished, d) {
		return nil
	}
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestFinished, Description: d})

	code, b := p.state.onTestFinish()
	return p.send(code, b, d.String())
}

// TestFailure marks the test in flight as failed. The status is sent
// when the test finishes.
func (p *Printer) TestFailure(f lifecycle.Failure) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dropStale(lifecycle.KindTestFailure, f.Description) {
		return nil
	}
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestFailure, Failure: f})

	p.state.onTestFailure(f)
	return nil
}

// TestAssumptionFailure marks the test in flight as skipped because of
// a failed assumption.
func (p *Printer) TestAssumptionFailure(f lifecycle.Failure) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dropStale(lifecycle.KindTestAssumptionFailure, f.Description) {
		return nil
	}
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestAssumptionFailure, Failure: f})

	p.state.onTestAssumptionFailure(f)
	return nil
}

// TestIgnored reports an ignored test as a start/finish pair, the same
// shape a non-orchestrated run produces.
func (p *Printer) TestIgnored(d lifecycle.Description) error {
	p.forward(lifecycle.Event{Kind: lifecycle.KindTestIgnored, Description: d})

	p.mu.Lock()
	defer p.mu.Unlock()

	_, b := p.state.onTestStart(d)
	if err := p.send(protocol.ResultStart, b, d.String()); err != nil {
		return err
	}
	p.state.onTestIgnored()
	code, b := p.state.onTestFinish()
	return p.send(code, b, d.String())
}

// RunFinished writes the summary of the run to w.
func (p *Printer) RunFinished(w io.Writer, result lifecycle.Result) error {
	p.forward(lifecycle.Event{Kind: lifecycle.KindRunFinished, Result: result})

	p.mu.Lock()
	p.state.onRunFinish()
	p.mu.Unlock()

	return p.renderer.Render(w, result)
}

// CrashReported reports whether notifications for d are stale because
// a crash report finished d and no other test has started since.
func (p *Printer) CrashReported(d lifecycle.Description) bool {
	if !p.lockWithin(crashLockWait) {
		return false
	}
	defer p.mu.Unlock()

	return p.state.isStale() && *p.state.crashed == d
}

// dropStale must be called with p.mu held.
func (p *Printer) dropStale(kind lifecycle.Kind, d lifecycle.Description) bool {
	if !p.state.isStale() {
		return false
	}
	p.log.Warningf("Dropping late %s notification for %s after process crash", kind, d)
	return true
}

func (p *Printer) send(code int, b protocol.Bundle, what string) error {
	if err := p.sender.Send(code, b); err != nil {
		return errors.Wrapf(err, "failed to send status %d for %s", code, what)
	}
	return nil
}

// forward hands the record for ev to the forwarder. Nothing that
// happens there may reach the caller.
func (p *Printer) forward(ev lifecycle.Event) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("forwarding %s event panicked: %v", ev.Kind, r)
		}
	}()
	p.forwarder.Forward(event.New(ev, p.now()))
}
