package observer

import (
	"time"

	"github.com/imkira/go-observer"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

// ResultObserver aggregates the lifecycle events published on a
// property into a lifecycle.Result.
type ResultObserver struct {
	done   chan lifecycle.Result
	prop   observer.Property
	now    func() time.Time
	result lifecycle.Result

	log logging.Logger
}

var _ Interface = (*ResultObserver)(nil)

// NewResultObserver initializes a new ResultObserver struct.
func NewResultObserver(prop observer.Property, log logging.Logger) *ResultObserver {
	return &ResultObserver{
		done: make(chan lifecycle.Result, 1),
		prop: prop,
		now:  time.Now,
		log:  log,
	}
}

// Start launches the consumer of the property. Values published after
// Start returns are guaranteed to be seen.
func (ro *ResultObserver) Start() error {
	stream := ro.prop.Observe()

	go func() {
		var (
			result  lifecycle.Result
			started = ro.now()
		)

		for {
			switch data := stream.Value().(type) {
			case TestExecutionStart:
			case lifecycle.Event:
				switch data.Kind {
				case lifecycle.KindRunStarted:
					started = ro.now()
					result.ExpectedCount = data.TestCount
				case lifecycle.KindTestFinished:
					result.RunCount++
				case lifecycle.KindTestFailure:
					result.FailureCount++
					result.Failures = append(result.Failures, data.Failure)
				case lifecycle.KindTestIgnored:
					result.IgnoreCount++
				}
			case TestExecutionEnd:
				result.RunTime = ro.now().Sub(started)
				ro.done <- result
				return
			default:
				ro.log.Debugf("Result observer received unexpected data %+v", data)
			}

			<-stream.Changes()
			stream.Next()
		}
	}()
	return nil
}

// Finalize waits for the end of the execution.
func (ro *ResultObserver) Finalize() error {
	ro.result = <-ro.done
	return nil
}

// Result returns the aggregated result. It is only complete after
// Finalize returned.
func (ro *ResultObserver) Result() lifecycle.Result {
	return ro.result
}
