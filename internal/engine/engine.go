// Package engine turns the output of a Go test run (test2json) into
// lifecycle notifications.
package engine

import (
	"fmt"
	"strings"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

// IncompleteError is returned when the test stream ends while a test
// is still executing, e.g. because the test binary was killed.
type IncompleteError struct {
	InFlight lifecycle.Description
	Output   string
	Err      error
}

func (e *IncompleteError) Error() string {
	msg := fmt.Sprintf("test run ended while %s was executing", e.InFlight)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if out := strings.TrimRight(e.Output, "\n"); out != "" {
		msg += "\n" + out
	}
	return msg
}

func (e *IncompleteError) Unwrap() error {
	return e.Err
}

type testRun struct {
	desc    lifecycle.Description
	output  strings.Builder
	action  string
	ignored bool
}

// Engine is a state machine fed with test2json events. Tests of a
// parallel run are serialized: a test that completes while another one
// is being reported is held back until the reported one finished, so
// that the listener always sees start/finish pairs.
type Engine struct {
	listener   lifecycle.Listener
	quarantine Quarantine
	log        logging.Logger

	open      map[string]*testRun
	order     []string
	active    *testRun
	pending   []*testRun
	ignored   map[string]struct{}
	pkgOutput map[string]*strings.Builder
	completed int
}

// New returns an Engine delivering notifications to listener.
func New(listener lifecycle.Listener, quarantine Quarantine, log logging.Logger) *Engine {
	return &Engine{
		listener:   listener,
		quarantine: quarantine,
		log:        log,
		open:       make(map[string]*testRun),
		ignored:    make(map[string]struct{}),
		pkgOutput:  make(map[string]*strings.Builder),
	}
}

// Completed returns the number of tests that have been reported as
// finished or ignored.
func (e *Engine) Completed() int {
	return e.completed
}

// Idle reports whether no test is being reported at the moment.
func (e *Engine) Idle() bool {
	return e.active == nil
}

// FeedLine decodes and handles one line of test2json output. Lines
// that are not test2json events are logged and skipped.
func (e *Engine) FeedLine(line []byte) error {
	if len(strings.TrimSpace(string(line))) == 0 {
		return nil
	}
	ev, err := Decode(line)
	if err != nil {
		e.log.Warningf("Skipping line: %v", err)
		return nil
	}
	return e.Feed(ev)
}

// Feed handles a single test2json event. Errors are delivery errors of
// the listener.
func (e *Engine) Feed(ev TestEvent) error {
	if ev.Test == "" {
		return e.packageEvent(ev)
	}

	root, sub := rootName(ev.Test)
	key := ev.Package + "#" + root
	if _, ok := e.ignored[key]; ok {
		return nil
	}

	switch ev.Action {
	case ActionRun:
		if sub {
			return nil
		}
		return e.run(key, lifecycle.NewDescription(ev.Package, root))
	case ActionOutput:
		tr, ok := e.open[key]
		if !ok {
			e.log.Debugf("output for unknown test %s: %q", key, ev.Output)
			return nil
		}
		tr.output.WriteString(ev.Output)
		return nil
	case ActionPass, ActionFail, ActionSkip:
		if sub {
			return nil
		}
		tr, ok := e.open[key]
		if !ok {
			// The run event was missed, e.g. when following a file that
			// was truncated.
			if err := e.run(key, lifecycle.NewDescription(ev.Package, root)); err != nil {
				return err
			}
			if _, ok := e.ignored[key]; ok {
				return nil
			}
			tr = e.open[key]
		}
		tr.action = ev.Action
		return e.complete(key, tr)
	default:
		return nil
	}
}

// Close ends the stream. If a test is still executing an
// *IncompleteError naming it is returned.
func (e *Engine) Close() error {
	if len(e.open) > 1 {
		e.log.Warningf("%d tests did not finish", len(e.open))
	}
	if e.active == nil {
		return nil
	}
	return &IncompleteError{
		InFlight: e.active.desc,
		Output:   e.active.output.String(),
	}
}

func (e *Engine) packageEvent(ev TestEvent) error {
	switch ev.Action {
	case ActionOutput:
		out, ok := e.pkgOutput[ev.Package]
		if !ok {
			out = &strings.Builder{}
			e.pkgOutput[ev.Package] = out
		}
		out.WriteString(ev.Output)
		return nil
	case ActionFail:
		// A package failing with tests still open means the test binary
		// died, e.g. on a panic or a timeout. Every open test of the
		// package is reported as failed.
		out := e.pkgOutput[ev.Package]
		delete(e.pkgOutput, ev.Package)
		for _, key := range append([]string(nil), e.order...) {
			tr := e.open[key]
			if tr.desc.ClassName != ev.Package {
				continue
			}
			tr.action = ActionFail
			if out != nil {
				tr.output.WriteString(out.String())
			}
			if err := e.complete(key, tr); err != nil {
				return err
			}
		}
		return nil
	case ActionPass, ActionSkip:
		delete(e.pkgOutput, ev.Package)
		return nil
	default:
		return nil
	}
}

func (e *Engine) run(key string, desc lifecycle.Description) error {
	if _, ok := e.open[key]; ok {
		e.log.Debugf("test %s started twice", key)
		return nil
	}

	if e.quarantine.Match(desc) {
		e.ignored[key] = struct{}{}
		tr := &testRun{desc: desc, ignored: true}
		if e.active != nil {
			e.pending = append(e.pending, tr)
			return nil
		}
		return e.report(tr)
	}

	tr := &testRun{desc: desc}
	e.open[key] = tr
	e.order = append(e.order, key)
	if e.active == nil {
		e.active = tr
		return e.listener.TestStarted(desc)
	}
	return nil
}

func (e *Engine) complete(key string, tr *testRun) error {
	delete(e.open, key)
	for i, k := range e.order {
		if k == key {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}

	if tr != e.active {
		e.pending = append(e.pending, tr)
		return nil
	}

	if err := e.finish(tr); err != nil {
		return err
	}
	e.active = nil

	for len(e.pending) > 0 {
		next := e.pending[0]
		e.pending = e.pending[1:]
		if err := e.report(next); err != nil {
			return err
		}
	}

	if len(e.order) > 0 {
		e.active = e.open[e.order[0]]
		return e.listener.TestStarted(e.active.desc)
	}
	return nil
}

// report delivers a test that completed while it was held back.
func (e *Engine) report(tr *testRun) error {
	if tr.ignored {
		e.completed++
		return e.listener.TestIgnored(tr.desc)
	}
	if err := e.listener.TestStarted(tr.desc); err != nil {
		return err
	}
	return e.finish(tr)
}

func (e *Engine) finish(tr *testRun) error {
	trace := strings.TrimRight(tr.output.String(), "\n")

	switch tr.action {
	case ActionFail:
		err := e.listener.TestFailure(lifecycle.Failure{Description: tr.desc, Trace: trace})
		if err != nil {
			return err
		}
	case ActionSkip:
		err := e.listener.TestAssumptionFailure(lifecycle.Failure{Description: tr.desc, Trace: trace})
		if err != nil {
			return err
		}
	}

	e.completed++
	return e.listener.TestFinished(tr.desc)
}
