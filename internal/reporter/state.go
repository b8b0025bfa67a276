package reporter

import (
	"fmt"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/protocol"
)

// severity orders result codes; a test's code is only ever raised.
var severity = map[int]int{
	protocol.ResultOK:                0,
	protocol.ResultIgnored:           1,
	protocol.ResultAssumptionFailure: 2,
	protocol.ResultFailure:           3,
}

// runState is the minimal state needed to render the status protocol.
// It is only touched while holding Printer.mu.
type runState struct {
	template   protocol.Bundle
	testResult protocol.Bundle

	totalCount      int
	currentSequence int
	lastClassName   string
	resultCode      int

	// identity is the last test seen by onTestStart. It stays cached
	// after the test finished; inFlight tells whether it still runs.
	identity *lifecycle.Description
	inFlight bool

	// crashed is the test finished by a crash report. Notifications
	// for it are stale until the next test starts.
	crashed *lifecycle.Description
}

func newRunState() runState {
	return runState{
		template:   protocol.NewBundle(),
		testResult: protocol.NewBundle(),
		resultCode: protocol.ResultOK,
	}
}

func (s *runState) onRunStart(totalCount int) protocol.Bundle {
	s.totalCount = totalCount
	s.template.PutString(protocol.KeyIdentifier, protocol.ReportValueID)
	s.template.PutInt(protocol.KeyNumTotal, totalCount)
	return s.template.Clone()
}

func (s *runState) onTestStart(d lifecycle.Description) (int, protocol.Bundle) {
	s.identity = &d
	s.inFlight = true
	s.crashed = nil
	s.currentSequence++

	s.testResult = s.template.Clone()
	s.testResult.PutString(protocol.KeyNameClass, d.ClassName)
	s.testResult.PutString(protocol.KeyNameTest, d.MethodName)
	s.testResult.PutInt(protocol.KeyNumCurrent, s.currentSequence)

	if d.ClassName != "" && d.ClassName != s.lastClassName {
		s.testResult.PutString(protocol.KeyStreamResult, fmt.Sprintf("\n%s:", d.ClassName))
		s.lastClassName = d.ClassName
	} else {
		s.testResult.PutString(protocol.KeyStreamResult, "")
	}

	s.resultCode = protocol.ResultOK
	return s.currentSequence, s.testResult.Clone()
}

// escalate raises the result code to code unless the current code is
// already more severe. It reports whether code is now in effect.
func (s *runState) escalate(code int) bool {
	if severity[code] < severity[s.resultCode] {
		return false
	}
	s.resultCode = code
	return true
}

func (s *runState) onTestFailure(f lifecycle.Failure) {
	if !s.escalate(protocol.ResultFailure) {
		return
	}
	s.testResult.PutString(protocol.KeyStack, f.Trace)
	s.testResult.PutString(protocol.KeyStreamResult,
		fmt.Sprintf("\nError in %s:\n%s", f.Description.String(), f.Trace))
}

func (s *runState) onTestAssumptionFailure(f lifecycle.Failure) {
	if !s.escalate(protocol.ResultAssumptionFailure) {
		return
	}
	s.testResult.PutString(protocol.KeyStack, f.Trace)
}

func (s *runState) onTestIgnored() {
	s.escalate(protocol.ResultIgnored)
}

func (s *runState) onTestFinish() (int, protocol.Bundle) {
	if s.resultCode == protocol.ResultOK {
		s.testResult.PutString(protocol.KeyStreamResult, ".")
	}
	s.inFlight = false
	return s.resultCode, s.testResult.Clone()
}

// onProcessCrash marks the test in flight as failed by a crash. ok is
// false when no test is running.
func (s *runState) onProcessCrash(trace string) (d lifecycle.Description, ok bool) {
	if s.identity == nil || !s.inFlight {
		return lifecycle.Description{}, false
	}

	s.crashed = s.identity
	s.resultCode = protocol.ResultFailure
	s.testResult.PutString(protocol.KeyStack, trace)
	s.testResult.PutString(protocol.KeyStreamResult,
		fmt.Sprintf("\nProcess crashed while executing %s:\n%s", s.identity.String(), trace))
	return *s.identity, true
}

// isStale reports whether a notification arrives for a test that a
// crash report has already finished.
func (s *runState) isStale() bool {
	return s.crashed != nil && !s.inFlight
}

func (s *runState) onRunFinish() {
	s.inFlight = false
}
