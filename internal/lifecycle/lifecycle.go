// Package lifecycle defines the notifications a test-execution engine
// delivers while a test run is in progress.
package lifecycle

import (
	"io"
	"time"
)

// Description identifies a single test.
type Description struct {
	ClassName   string
	MethodName  string
	DisplayName string
}

// NewDescription returns a Description whose display name is
// "<class>#<method>".
func NewDescription(className, methodName string) Description {
	return Description{
		ClassName:   className,
		MethodName:  methodName,
		DisplayName: className + "#" + methodName,
	}
}

// IsZero reports whether d carries no identity at all.
func (d Description) IsZero() bool {
	return d.ClassName == "" && d.MethodName == "" && d.DisplayName == ""
}

func (d Description) String() string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.ClassName + "#" + d.MethodName
}

// Failure describes a failed (or assumption-failed) test together with
// the rendered trace of the failure.
type Failure struct {
	Description Description
	Trace       string
}

// Result is the aggregate outcome of a test run.
type Result struct {
	RunTime       time.Duration
	RunCount      int
	ExpectedCount int
	FailureCount  int
	IgnoreCount   int
	Failures      []Failure
}

// WasSuccessful reports whether the run finished without failures.
func (r Result) WasSuccessful() bool {
	return r.FailureCount == 0
}

// Listener receives the lifecycle notifications of a test run. Calls
// are delivered sequentially from a single goroutine.
//
// A returned error means the notification could not be delivered to
// the supervising process and the run report is incomplete.
type Listener interface {
	RunStarted(testCount int) error
	TestStarted(description Description) error
	TestFinished(description Description) error
	TestFailure(failure Failure) error
	TestAssumptionFailure(failure Failure) error
	TestIgnored(description Description) error
	RunFinished(w io.Writer, result Result) error
}
