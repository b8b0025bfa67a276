package reporter_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/matryer/is"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
	"github.com/testbridge/instrumentation-bridge/internal/protocol"
	"github.com/testbridge/instrumentation-bridge/internal/reporter"
)

func TestReportProcessCrash(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	d := lifecycle.NewDescription("Foo", "bar")
	is.NoErr(f.printer.RunStarted(1))
	is.NoErr(f.printer.TestStarted(d))

	f.printer.ReportProcessCrash(errors.New("boom"))

	calls := f.sender.SendCalls()
	is.Equal(len(calls), 3)
	last := calls[2]
	is.Equal(last.Code, protocol.ResultFailure)
	is.Equal(last.B.GetString(protocol.KeyNameClass), "Foo")
	is.Equal(last.B.GetString(protocol.KeyNameTest), "bar")
	is.True(strings.Contains(last.B.GetString(protocol.KeyStack), "boom"))
	is.Equal(last.B.GetString(protocol.KeyStreamResult), "\nProcess crashed while executing Foo#bar:\nboom")

	var events []string
	for _, c := range f.forwarder.ForwardCalls() {
		events = append(events, c.R.Event)
	}
	is.Equal(events, []string{"runStarted", "testStarted", "testFailure", "testFinished"})

	_, inFlight := f.printer.InFlight()
	is.True(!inFlight) // crashed test is finished
}

func TestLateNotificationsAfterCrash(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	d := lifecycle.NewDescription("Foo", "bar")
	is.NoErr(f.printer.RunStarted(2))
	is.NoErr(f.printer.TestStarted(d))
	f.printer.ReportProcessCrash(errors.New("boom"))
	is.True(f.printer.CrashReported(d))

	// The engine may still deliver the outcome of the crashed test.
	is.NoErr(f.printer.TestFailure(lifecycle.Failure{Description: d, Trace: "late"}))
	is.NoErr(f.printer.TestAssumptionFailure(lifecycle.Failure{Description: d, Trace: "late"}))
	is.NoErr(f.printer.TestFinished(d))

	calls := f.sender.SendCalls()
	is.Equal(len(calls), 3) // run start, test start, crash
	is.Equal(calls[2].B.GetString(protocol.KeyStreamResult), "\nProcess crashed while executing Foo#bar:\nboom")
	is.Equal(len(f.forwarder.ForwardCalls()), 4) // late notifications are not forwarded
	is.True(f.log.Contains("WARNING", "Dropping late testFinished notification for Foo#bar"))

	// The next test is reported normally.
	next := lifecycle.NewDescription("Foo", "baz")
	is.NoErr(f.printer.TestStarted(next))
	is.True(!f.printer.CrashReported(d))
	is.NoErr(f.printer.TestFailure(lifecycle.Failure{Description: next, Trace: "NPE"}))
	is.NoErr(f.printer.TestFinished(next))

	calls = f.sender.SendCalls()
	is.Equal(len(calls), 5)
	is.Equal(calls[4].Code, protocol.ResultFailure)
	is.Equal(calls[4].B.GetInt(protocol.KeyNumCurrent), 2)
	is.Equal(calls[4].B.GetString(protocol.KeyStreamResult), "\nError in Foo#baz:\nNPE")
}

func TestReportProcessCrashWithoutTest(t *testing.T) {
	cases := []struct {
		name  string
		setup func(f fixture) error
	}{
		{
			name:  "before run started",
			setup: func(f fixture) error { return nil },
		},
		{
			name:  "before first test",
			setup: func(f fixture) error { return f.printer.RunStarted(3) },
		},
		{
			name: "after test finished",
			setup: func(f fixture) error {
				d := lifecycle.NewDescription("Foo", "bar")
				if err := f.printer.TestStarted(d); err != nil {
					return err
				}
				return f.printer.TestFinished(d)
			},
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			is := is.New(t)
			f := newFixture()
			is.NoErr(test.setup(f))
			before := len(f.sender.SendCalls())

			f.printer.ReportProcessCrash(errors.New("boom"))

			is.Equal(len(f.sender.SendCalls()), before) // nothing sent
			is.True(f.log.Contains("ERROR", "Failed to initialize test before process crash"))
		})
	}
}

func TestReportProcessCrashSurvivesSendFailure(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	d := lifecycle.NewDescription("Foo", "bar")
	is.NoErr(f.printer.TestStarted(d))

	f.sender.SendFunc = func(code int, b protocol.Bundle) error { return errors.New("pipe closed") }
	f.printer.ReportProcessCrash(nil)

	is.True(f.log.Contains("ERROR", "Failed to mark test Foo#bar as finished after process crash"))
}

func TestReportProcessCrashSurvivesPanickingSender(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	is.NoErr(f.printer.TestStarted(lifecycle.NewDescription("Foo", "bar")))

	f.sender.SendFunc = func(code int, b protocol.Bundle) error { panic("sender exploded") }
	f.printer.ReportProcessCrash(errors.New("boom"))

	is.True(f.log.Contains("ERROR", "sender exploded"))

	f.sender.SendFunc = func(code int, b protocol.Bundle) error { return nil }
	is.NoErr(f.printer.RunStarted(1)) // printer stays usable
}

func TestCatchPanic(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	err := f.printer.CatchPanic(func() error {
		if err := f.printer.TestStarted(lifecycle.NewDescription("Foo", "bar")); err != nil {
			return err
		}
		panic("index out of range")
	})

	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "index out of range"))

	calls := f.sender.SendCalls()
	last := calls[len(calls)-1]
	is.Equal(last.Code, protocol.ResultFailure)
	is.True(strings.Contains(last.B.GetString(protocol.KeyStack), "index out of range"))
}

func TestCatchPanicPassesErrors(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	want := errors.New("engine failed")
	is.Equal(f.printer.CatchPanic(func() error { return want }), want)
	is.Equal(len(f.sender.SendCalls()), 0)
}

func TestConcurrentCrashReport(t *testing.T) {
	is := is.New(t)
	f := newFixture()

	d := lifecycle.NewDescription("Foo", "bar")
	is.NoErr(f.printer.TestStarted(d))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_ = f.printer.TestFailure(lifecycle.Failure{Description: d, Trace: "late"})
	}()
	go func() {
		defer wg.Done()
		f.printer.ReportProcessCrash(errors.New("boom"))
	}()
	wg.Wait()

	calls := f.sender.SendCalls()
	is.Equal(len(calls), 2)
	is.Equal(calls[1].Code, protocol.ResultFailure)
}

func TestCrashHook(t *testing.T) {
	is := is.New(t)

	var crashed []lifecycle.Failure
	sender := &SenderMock{
		SendFunc: func(code int, b protocol.Bundle) error { return nil },
	}
	p := reporter.New(sender, nil, nil, logging.NoopLogger, reporter.WithCrashHook(func(f lifecycle.Failure) {
		crashed = append(crashed, f)
	}))

	d := lifecycle.NewDescription("Foo", "bar")
	is.NoErr(p.RunStarted(1))
	is.NoErr(p.TestStarted(d))
	p.ReportProcessCrash(errors.New("killed"))
	p.ReportProcessCrash(errors.New("killed again")) // nothing in flight anymore

	is.Equal(len(crashed), 1)
	is.Equal(crashed[0].Description, d)
	is.Equal(crashed[0].Trace, "killed")
}
