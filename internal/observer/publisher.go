package observer

import (
	"io"

	"github.com/imkira/go-observer"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
)

// Publisher is a lifecycle.Listener that puts every notification on a
// property so observers can follow the run.
type Publisher struct {
	prop observer.Property
}

var _ lifecycle.Listener = Publisher{}

// NewPublisher returns a Publisher updating prop.
func NewPublisher(prop observer.Property) Publisher {
	return Publisher{prop: prop}
}

func (p Publisher) publish(ev lifecycle.Event) error {
	p.prop.Update(ev)
	return nil
}

func (p Publisher) RunStarted(testCount int) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindRunStarted, TestCount: testCount})
}

func (p Publisher) TestStarted(d lifecycle.Description) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindTestStarted, Description: d})
}

func (p Publisher) TestFinished(d lifecycle.Description) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindTestFinished, Description: d})
}

func (p Publisher) TestFailure(f lifecycle.Failure) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindTestFailure, Failure: f})
}

func (p Publisher) TestAssumptionFailure(f lifecycle.Failure) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindTestAssumptionFailure, Failure: f})
}

func (p Publisher) TestIgnored(d lifecycle.Description) error {
	return p.publish(lifecycle.Event{Kind: lifecycle.KindTestIgnored, Description: d})
}

// RunFinished publishes the end of the execution. The writer is not
// used.
func (p Publisher) RunFinished(_ io.Writer, _ lifecycle.Result) error {
	p.prop.Update(TestExecutionEnd{})
	return nil
}
