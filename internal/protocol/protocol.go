// Package protocol implements the status protocol that is read by the
// process supervising a test run. The format mirrors the legacy
// instrumentation result printer, so keys, values and result codes
// must not change.
package protocol

import "fmt"

// ReportValueID identifies the reporting source. It is sent with all
// status messages.
const ReportValueID = "AndroidJUnitRunner"

// Bundle keys.
const (
	// KeyIdentifier identifies the source of the report.
	KeyIdentifier = "id"
	// KeyNumTotal is the total number of tests being run.
	KeyNumTotal = "numtests"
	// KeyNumCurrent is the sequence number of the current test.
	KeyNumCurrent = "current"
	// KeyNameClass is the class name of the current test.
	KeyNameClass = "class"
	// KeyNameTest is the method name of the current test.
	KeyNameTest = "test"
	// KeyStack carries the trace of a failure or assumption failure.
	KeyStack = "stack"
	// KeyStreamResult carries the pretty-printed, human readable output.
	KeyStreamResult = "stream"
)

// Result codes.
const (
	// ResultStart marks the start of a run or a test.
	ResultStart = 1
	// ResultOK marks a test that completed successfully.
	ResultOK = 0
	// ResultError is kept for compatibility; no notification produces it.
	ResultError = -1
	// ResultFailure marks a test that completed with a failure.
	ResultFailure = -2
	// ResultIgnored marks a test that was ignored.
	ResultIgnored = -3
	// ResultAssumptionFailure marks a test whose assumptions did not hold.
	ResultAssumptionFailure = -4
)

// Sender delivers a status payload to the supervising process. A
// returned error is fatal for the run report.
type Sender interface {
	Send(code int, b Bundle) error
}

// CodeName returns the symbolic name of a result code.
func CodeName(code int) string {
	switch code {
	case ResultStart:
		return "START"
	case ResultOK:
		return "OK"
	case ResultError:
		return "ERROR"
	case ResultFailure:
		return "FAILURE"
	case ResultIgnored:
		return "IGNORED"
	case ResultAssumptionFailure:
		return "ASSUMPTION_FAILURE"
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}
