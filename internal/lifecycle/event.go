package lifecycle

import (
	"fmt"
	"io"
)

// Kind enumerates the lifecycle notifications.
type Kind int

const (
	KindRunStarted Kind = iota
	KindTestStarted
	KindTestFinished
	KindTestFailure
	KindTestAssumptionFailure
	KindTestIgnored
	KindRunFinished
)

var kindNames = map[Kind]string{
	KindRunStarted:            "runStarted",
	KindTestStarted:           "testStarted",
	KindTestFinished:          "testFinished",
	KindTestFailure:           "testFailure",
	KindTestAssumptionFailure: "testAssumptionFailure",
	KindTestIgnored:           "testIgnored",
	KindRunFinished:           "runFinished",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a single lifecycle notification as a value. Only the fields
// relevant for Kind are set.
type Event struct {
	Kind        Kind
	TestCount   int
	Description Description
	Failure     Failure
	Result      Result
}

// Dispatch delivers e to the matching method of l. The writer is only
// used for KindRunFinished.
func (e Event) Dispatch(l Listener, w io.Writer) error {
	switch e.Kind {
	case KindRunStarted:
		return l.RunStarted(e.TestCount)
	case KindTestStarted:
		return l.TestStarted(e.Description)
	case KindTestFinished:
		return l.TestFinished(e.Description)
	case KindTestFailure:
		return l.TestFailure(e.Failure)
	case KindTestAssumptionFailure:
		return l.TestAssumptionFailure(e.Failure)
	case KindTestIgnored:
		return l.TestIgnored(e.Description)
	case KindRunFinished:
		return l.RunFinished(w, e.Result)
	}
	return fmt.Errorf("unknown lifecycle event kind %v", e.Kind)
}
