package summary_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/testbridge/instrumentation-bridge/internal/lifecycle"
	"github.com/testbridge/instrumentation-bridge/internal/summary"
)

func TestTextRenderer(t *testing.T) {
	cases := []struct {
		name   string
		result lifecycle.Result
		want   string
	}{
		{
			name:   "single passing test",
			result: lifecycle.Result{RunTime: 12 * time.Millisecond, RunCount: 1},
			want:   "\nTime: 0.012\n\nOK (1 test)\n\n",
		},
		{
			name:   "no tests",
			result: lifecycle.Result{},
			want:   "\nTime: 0\n\nOK (0 tests)\n\n",
		},
		{
			name: "one failure",
			result: lifecycle.Result{
				RunTime:      1500 * time.Millisecond,
				RunCount:     2,
				FailureCount: 1,
				Failures: []lifecycle.Failure{
					{Description: lifecycle.NewDescription("A", "test2"), Trace: "NPE at line 5"},
				},
			},
			want: "\nTime: 1.5\nThere was 1 failure:\n1) A#test2\nNPE at line 5\n\nFAILURES!!!\nTests run: 2,  Failures: 1\n\n",
		},
		{
			name: "two failures",
			result: lifecycle.Result{
				RunTime:      2 * time.Second,
				RunCount:     3,
				FailureCount: 2,
				Failures: []lifecycle.Failure{
					{Description: lifecycle.NewDescription("A", "x"), Trace: "t1\n"},
					{Description: lifecycle.NewDescription("B", "y"), Trace: "t2"},
				},
			},
			want: "\nTime: 2\nThere were 2 failures:\n1) A#x\nt1\n2) B#y\nt2\n\nFAILURES!!!\nTests run: 3,  Failures: 2\n\n",
		},
	}

	for _, test := range cases {
		t.Run(test.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, summary.TextRenderer{}.Render(&buf, test.result))
			assert.Equal(t, test.want, buf.String())
		})
	}
}
