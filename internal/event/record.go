// Package event turns lifecycle notifications into flat records that
// can be shipped to a remote collector.
package event

import (
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/sjson"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
)

// Record is the flattened form of a lifecycle notification. Optional
// fields are left out of the encoding when they are empty.
type Record struct {
	Event     string
	Timestamp int64

	ClassName  string
	MethodName string
	Trace      string

	// Summary is only set for runFinished records.
	Summary *Summary
}

// Summary carries the aggregate counters of a finished run.
type Summary struct {
	RunTime       time.Duration
	RunCount      int
	ExpectedCount int
	FailureCount  int
}

// New returns the record for ev observed at ts.
func New(ev lifecycle.Event, ts time.Time) Record {
	r := Record{
		Event:     ev.Kind.String(),
		Timestamp: ts.UnixMilli(),
	}

	switch ev.Kind {
	case lifecycle.KindTestStarted, lifecycle.KindTestFinished, lifecycle.KindTestIgnored:
		r.ClassName = ev.Description.ClassName
		r.MethodName = ev.Description.MethodName
	case lifecycle.KindTestFailure, lifecycle.KindTestAssumptionFailure:
		r.ClassName = ev.Failure.Description.ClassName
		r.MethodName = ev.Failure.Description.MethodName
		r.Trace = ev.Failure.Trace
	case lifecycle.KindRunFinished:
		r.Summary = &Summary{
			RunTime:       ev.Result.RunTime,
			RunCount:      ev.Result.RunCount,
			ExpectedCount: ev.Result.ExpectedCount,
			FailureCount:  ev.Result.FailureCount,
		}
	}

	return r
}

// MarshalJSON encodes the record as a flat JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	body := []byte(`{}`)

	fields := []struct {
		key   string
		value interface{}
		skip  bool
	}{
		{key: "event", value: r.Event},
		{key: "timestamp", value: r.Timestamp},
		{key: "className", value: r.ClassName, skip: r.ClassName == ""},
		{key: "methodName", value: r.MethodName, skip: r.MethodName == ""},
		{key: "trace", value: r.Trace, skip: r.Trace == ""},
	}
	if r.Summary != nil {
		fields = append(fields, []struct {
			key   string
			value interface{}
			skip  bool
		}{
			{key: "runTime", value: r.Summary.RunTime.Milliseconds()},
			{key: "runCount", value: r.Summary.RunCount},
			{key: "expectedCount", value: r.Summary.ExpectedCount},
			{key: "failureCount", value: r.Summary.FailureCount},
		}...)
	}

	var err error
	for _, f := range fields {
		if f.skip {
			continue
		}
		body, err = sjson.SetBytes(body, f.key, f.value)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to encode field %q of %s record", f.key, r.Event)
		}
	}

	return body, nil
}
