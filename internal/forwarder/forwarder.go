// Package forwarder ships event records to a remote collector. Delivery
// is best effort: every record gets at most one attempt, failures are
// logged and never reported back to the caller.
package forwarder

import (
	"time"

	"github.com/testbridge/instrumentation-bridge/internal/event"
)

// Forwarder accepts records for asynchronous delivery.
type Forwarder interface {
	// Forward hands r over for delivery and returns immediately.
	Forward(r event.Record)

	// Drain stops accepting records and waits at most timeout for the
	// records in flight. It reports whether all of them completed.
	Drain(timeout time.Duration) bool
}

// Diagnostic renders the local diagnostic for a failed delivery.
func Diagnostic(detail string) string {
	return "Error: " + detail
}

// Noop discards all records. It is used when no endpoint is
// configured.
type Noop struct{}

// Forward does nothing.
func (Noop) Forward(event.Record) {}

// Drain returns true.
func (Noop) Drain(time.Duration) bool { return true }
