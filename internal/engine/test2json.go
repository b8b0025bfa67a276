package engine

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Actions reported by test2json.
const (
	ActionStart  = "start"
	ActionRun    = "run"
	ActionPause  = "pause"
	ActionCont   = "cont"
	ActionPass   = "pass"
	ActionBench  = "bench"
	ActionFail   = "fail"
	ActionOutput = "output"
	ActionSkip   = "skip"
)

// TestEvent is a single line of `go test -json` output.
type TestEvent struct {
	Time    time.Time
	Action  string
	Package string
	Test    string
	Elapsed float64
	Output  string
}

// Decode parses one test2json line.
func Decode(line []byte) (TestEvent, error) {
	if !gjson.ValidBytes(line) {
		return TestEvent{}, errors.Errorf("not a JSON document: %q", line)
	}
	r := gjson.ParseBytes(line)
	if !r.IsObject() {
		return TestEvent{}, errors.Errorf("not a JSON object: %q", line)
	}

	ev := TestEvent{
		Action:  r.Get("Action").String(),
		Package: r.Get("Package").String(),
		Test:    r.Get("Test").String(),
		Elapsed: r.Get("Elapsed").Float(),
		Output:  r.Get("Output").String(),
	}
	if ev.Action == "" {
		return TestEvent{}, errors.Errorf("missing Action in %q", line)
	}
	if t := r.Get("Time"); t.Exists() {
		ev.Time = t.Time()
	}
	return ev, nil
}

// rootName returns the top level test a (sub)test belongs to and
// whether name is a subtest.
func rootName(name string) (string, bool) {
	root, _, sub := strings.Cut(name, "/")
	return root, sub
}
