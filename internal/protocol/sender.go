package protocol

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// DeliveryError reports that a status could not be written to the
// supervising process.
type DeliveryError struct {
	Code int
	Err  error
}

// Error returns a string representation of the error.
func (e DeliveryError) Error() string {
	return fmt.Sprintf("failed to deliver status %d: %v", e.Code, e.Err)
}

// Unwrap returns the underlying write error.
func (e DeliveryError) Unwrap() error {
	return e.Err
}

// StreamSender writes statuses in the line based instrumentation
// format:
//
//	INSTRUMENTATION_STATUS: class=com.example.FooTest
//	INSTRUMENTATION_STATUS: current=1
//	INSTRUMENTATION_STATUS_CODE: 1
type StreamSender struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStreamSender returns a Sender writing to w.
func NewStreamSender(w io.Writer) *StreamSender {
	return &StreamSender{w: w}
}

// Send writes b followed by the status code.
func (s *StreamSender) Send(code int, b Bundle) error {
	var sb strings.Builder
	for _, key := range b.Keys() {
		fmt.Fprintf(&sb, "INSTRUMENTATION_STATUS: %s=%s\n", key, b.Format(key))
	}
	fmt.Fprintf(&sb, "INSTRUMENTATION_STATUS_CODE: %d\n", code)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.WriteString(s.w, sb.String()); err != nil {
		return DeliveryError{Code: code, Err: err}
	}
	return nil
}

// JSONSender writes one JSON object per status.
type JSONSender struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONSender returns a Sender writing newline delimited JSON to w.
func NewJSONSender(w io.Writer) *JSONSender {
	return &JSONSender{enc: json.NewEncoder(w)}
}

type jsonStatus struct {
	Code   int                    `json:"code"`
	Bundle map[string]interface{} `json:"bundle"`
}

// Send writes b and code as a single line of JSON.
func (s *JSONSender) Send(code int, b Bundle) error {
	status := jsonStatus{
		Code:   code,
		Bundle: make(map[string]interface{}, b.Len()),
	}
	for _, key := range b.Keys() {
		status.Bundle[key], _ = b.Get(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(status); err != nil {
		return DeliveryError{Code: code, Err: errors.Wrap(err, "json")}
	}
	return nil
}
