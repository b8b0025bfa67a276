// Package bridge wires a test-execution source to the status protocol
// and the remote collector.
package bridge

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/imkira/go-observer"
	"github.com/pkg/errors"

	"github.com/testbridge/instrumentation-bridge/internal/engine"
	"github.com/testbridge/instrumentation-bridge/internal/forwarder"
	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
	lfvobserver "github.com/testbridge/instrumentation-bridge/internal/observer"
	"github.com/testbridge/instrumentation-bridge/internal/protocol"
	"github.com/testbridge/instrumentation-bridge/internal/reporter"
	"github.com/testbridge/instrumentation-bridge/internal/summary"
)

// Output formats of the status protocol.
const (
	FormatInstrumentation = "instrumentation"
	FormatJSON            = "json"
)

// ErrTestsFailed is returned when the run completed but not all tests
// passed.
var ErrTestsFailed = errors.New("failed test cases")

// Config holds the settings of a single bridged run.
type Config struct {
	Endpoint       string
	ForwardTimeout time.Duration
	ForwardWorkers int
	ForwardQueue   int
	ForwardJitter  time.Duration
	DrainTimeout   time.Duration

	Format     string
	Input      string
	Follow     bool
	FollowPoll bool
	Command    string
	Ignore     []string
	NumTests   int
}

// Bridge reports one test run read from a test2json source.
type Bridge struct {
	cfg    Config
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// signals delivers the signals that are reported as a process
	// crash. Nil disables the hook.
	signals chan os.Signal

	log logging.Logger
}

// New returns a Bridge reading stdin when no other source is configured.
func New(cfg Config, stdin io.Reader, stdout, stderr io.Writer, log logging.Logger) Bridge {
	return Bridge{
		cfg:     cfg,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		signals: make(chan os.Signal, 1),
		log:     log,
	}
}

// Run reads the test run from the configured source and reports it.
// ErrTestsFailed is returned if the run contained failures.
func (b Bridge) Run(ctx context.Context) error {
	sender, err := b.sender()
	if err != nil {
		return err
	}

	fwd, err := b.forwarder()
	if err != nil {
		return err
	}
	defer func() {
		if !fwd.Drain(b.cfg.DrainTimeout) {
			b.log.Warningf("Not all events were forwarded within %v", b.cfg.DrainTimeout)
		}
	}()

	// Set up observers
	liveObserver := observer.NewProperty(lfvobserver.TestExecutionStart{})
	results := lfvobserver.NewResultObserver(liveObserver, b.log)
	if err = results.Start(); err != nil {
		return errors.Errorf("Initialization error: %s", err)
	}
	publisher := lfvobserver.NewPublisher(liveObserver)

	printer, listener := b.listeners(sender, fwd, publisher)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := b.installCrashHook(ctx, cancel, printer)
	defer stop()

	count, err := b.expectedCount()
	if err != nil {
		return err
	}
	if err = listener.RunStarted(count); err != nil {
		return err
	}

	eng := engine.New(listener, engine.NewQuarantine(b.cfg.Ignore, b.log), b.log)
	err = printer.CatchPanic(func() error {
		return b.execute(ctx, eng, count)
	})

	var incomplete *engine.IncompleteError
	switch {
	case errors.As(err, &incomplete):
		printer.ReportProcessCrash(incomplete)
	case errors.Is(err, context.Canceled):
		b.log.Warning("Test run interrupted")
	case err != nil:
		// Delivery errors and panics end the run. The in-flight test,
		// if any, has already been reported by the crash handler.
		_ = publisher.RunFinished(nil, lifecycle.Result{})
		return err
	}

	if err = publisher.RunFinished(nil, lifecycle.Result{}); err != nil {
		return err
	}
	if err = results.Finalize(); err != nil {
		return err
	}

	result := results.Result()
	if err = printer.RunFinished(b.stderr, result); err != nil {
		return err
	}
	if !result.WasSuccessful() {
		return ErrTestsFailed
	}
	return nil
}

// listeners returns the printer and the listener the engine reports
// to. The publisher learns about crashed tests through the crash hook
// and never sees late notifications for them.
func (b Bridge) listeners(sender protocol.Sender, fwd forwarder.Forwarder, publisher lifecycle.Listener) (*reporter.Printer, lifecycle.Listener) {
	printer := reporter.New(sender, fwd, summary.TextRenderer{}, b.log,
		reporter.WithCrashHook(func(f lifecycle.Failure) {
			_ = publisher.TestFailure(f)
			_ = publisher.TestFinished(f.Description)
		}),
	)
	return printer, lifecycle.Multi(printer, crashFilter{Listener: publisher, printer: printer})
}

// crashFilter drops the notifications of a test that was already
// finished by a crash report.
type crashFilter struct {
	lifecycle.Listener
	printer *reporter.Printer
}

func (c crashFilter) TestFinished(d lifecycle.Description) error {
	if c.printer.CrashReported(d) {
		return nil
	}
	return c.Listener.TestFinished(d)
}

func (c crashFilter) TestFailure(f lifecycle.Failure) error {
	if c.printer.CrashReported(f.Description) {
		return nil
	}
	return c.Listener.TestFailure(f)
}

func (c crashFilter) TestAssumptionFailure(f lifecycle.Failure) error {
	if c.printer.CrashReported(f.Description) {
		return nil
	}
	return c.Listener.TestAssumptionFailure(f)
}

func (b Bridge) execute(ctx context.Context, eng *engine.Engine, count int) error {
	switch {
	case b.cfg.Command != "":
		return eng.Exec(ctx, b.cfg.Command, b.stderr)
	case b.cfg.Follow:
		return eng.Follow(ctx, b.cfg.Input, count, b.cfg.FollowPoll)
	case b.cfg.Input == "" || b.cfg.Input == "-":
		return eng.Run(ctx, b.stdin)
	}

	f, err := os.Open(b.cfg.Input)
	if err != nil {
		return errors.Wrap(err, "failed to open test output")
	}
	defer f.Close()
	return eng.Run(ctx, f)
}

func (b Bridge) sender() (protocol.Sender, error) {
	switch b.cfg.Format {
	case FormatInstrumentation, "":
		return protocol.NewStreamSender(b.stdout), nil
	case FormatJSON:
		return protocol.NewJSONSender(b.stdout), nil
	}
	return nil, errors.Errorf("unknown output format %q, expected %q or %q", b.cfg.Format, FormatInstrumentation, FormatJSON)
}

func (b Bridge) forwarder() (forwarder.Forwarder, error) {
	if b.cfg.Endpoint == "" {
		b.log.Debug("No forward endpoint configured, events are not forwarded")
		return forwarder.Noop{}, nil
	}

	fwd, err := forwarder.NewHTTP(b.cfg.Endpoint, b.log,
		forwarder.WithTimeout(b.cfg.ForwardTimeout),
		forwarder.WithWorkers(b.cfg.ForwardWorkers),
		forwarder.WithQueueSize(b.cfg.ForwardQueue),
		forwarder.WithJitter(b.cfg.ForwardJitter),
	)
	if err != nil {
		return nil, err
	}
	b.log.Infof("Forwarding events to %s with run id %s", b.cfg.Endpoint, fwd.RunID())
	return fwd, nil
}

// expectedCount returns the number of tests announced at run start.
// Without an explicit number a plain input file is scanned upfront.
func (b Bridge) expectedCount() (int, error) {
	if b.cfg.NumTests > 0 {
		return b.cfg.NumTests, nil
	}
	if b.cfg.Command != "" || b.cfg.Follow || b.cfg.Input == "" || b.cfg.Input == "-" {
		return 0, nil
	}
	return engine.CountTestsInFile(b.cfg.Input)
}

// installCrashHook reports a crash of the test in flight when the
// process is asked to terminate and cancels the run.
func (b Bridge) installCrashHook(ctx context.Context, cancel context.CancelFunc, printer *reporter.Printer) func() {
	if b.signals == nil {
		return func() {}
	}
	signal.Notify(b.signals, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-b.signals:
			printer.ReportProcessCrash(errors.Errorf("received signal %s", sig))
			cancel()
		case <-ctx.Done():
		case <-done:
		}
	}()

	return func() {
		signal.Stop(b.signals)
		close(done)
	}
}
