// Package summary renders the human readable summary printed when a
// test run has finished.
package summary

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
)

// Renderer writes the final summary of a run.
type Renderer interface {
	Render(w io.Writer, result lifecycle.Result) error
}

// TextRenderer produces the classic text runner layout:
//
//	Time: 1.5
//	There was 1 failure:
//	1) A#test2
//	NPE at line 5
//
//	FAILURES!!!
//	Tests run: 2,  Failures: 1
type TextRenderer struct{}

// Render writes the summary of result to w.
func (TextRenderer) Render(w io.Writer, result lifecycle.Result) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\nTime: %s\n", elapsed(result.RunTime))

	switch len(result.Failures) {
	case 0:
	case 1:
		sb.WriteString("There was 1 failure:\n")
	default:
		fmt.Fprintf(&sb, "There were %d failures:\n", len(result.Failures))
	}
	for i, failure := range result.Failures {
		fmt.Fprintf(&sb, "%d) %s\n", i+1, failure.Description)
		sb.WriteString(failure.Trace)
		if !strings.HasSuffix(failure.Trace, "\n") {
			sb.WriteString("\n")
		}
	}

	if result.WasSuccessful() {
		fmt.Fprintf(&sb, "\nOK (%d test%s)\n", result.RunCount, plural(result.RunCount))
	} else {
		fmt.Fprintf(&sb, "\nFAILURES!!!\nTests run: %d,  Failures: %d\n", result.RunCount, result.FailureCount)
	}
	sb.WriteString("\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Wrap(err, "failed to write run summary")
	}
	return nil
}

func elapsed(d time.Duration) string {
	return strconv.FormatFloat(float64(d.Milliseconds())/1000, 'f', -1, 64)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
