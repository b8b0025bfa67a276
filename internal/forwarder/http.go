package forwarder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/testbridge/instrumentation-bridge/internal/event"
	"github.com/testbridge/instrumentation-bridge/internal/idgen"
	"github.com/testbridge/instrumentation-bridge/internal/logging"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultWorkers   = 4
	DefaultQueueSize = 1024

	// RunIDHeader carries the id shared by all records of one run.
	RunIDHeader = "X-Run-Id"

	maxResponseBody = 64 << 10
	maxLoggedBody   = 512
)

// Stats counts the outcome of forwarded records.
type Stats struct {
	Delivered int64
	Failed    int64
	Dropped   int64
}

// HTTPForwarder POSTs every record as JSON to a fixed endpoint. Records
// are queued in a bounded backlog served by a fixed number of workers.
// Records arriving while the backlog is full are dropped.
type HTTPForwarder struct {
	endpoint string
	runID    string
	client   *http.Client
	timeout  time.Duration
	jitter   time.Duration

	workers   int
	queueSize int
	queue     chan event.Record
	group     *errgroup.Group

	mu       sync.Mutex
	draining bool

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	log logging.Logger
}

// Option configures an HTTPForwarder.
type Option func(*HTTPForwarder)

// WithTimeout bounds a single delivery attempt, including reading the
// response.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPForwarder) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithWorkers sets the number of concurrent deliveries.
func WithWorkers(n int) Option {
	return func(f *HTTPForwarder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// WithQueueSize sets the number of records waiting for a worker
// before further records are dropped.
func WithQueueSize(n int) Option {
	return func(f *HTTPForwarder) {
		if n > 0 {
			f.queueSize = n
		}
	}
}

// WithJitter delays every delivery by a random duration in [0, d).
func WithJitter(d time.Duration) Option {
	return func(f *HTTPForwarder) {
		if d > 0 {
			f.jitter = d
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *HTTPForwarder) {
		if c != nil {
			f.client = c
		}
	}
}

// WithRunID sets the run id sent with every request.
func WithRunID(id string) Option {
	return func(f *HTTPForwarder) {
		if id != "" {
			f.runID = id
		}
	}
}

// NewHTTP returns a forwarder for endpoint, which must be an absolute
// http or https URL.
func NewHTTP(endpoint string, log logging.Logger, opts ...Option) (*HTTPForwarder, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid forward endpoint %q", endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, errors.Errorf("forward endpoint %q must be an absolute http(s) URL", endpoint)
	}

	f := &HTTPForwarder{
		endpoint:  u.String(),
		runID:     idgen.New(),
		client:    &http.Client{},
		timeout:   DefaultTimeout,
		workers:   DefaultWorkers,
		queueSize: DefaultQueueSize,
		group:     &errgroup.Group{},
		log:       log,
	}

	for _, opt := range opts {
		opt(f)
	}

	f.queue = make(chan event.Record, f.queueSize)
	for i := 0; i < f.workers; i++ {
		f.group.Go(func() error {
			for r := range f.queue {
				f.deliver(r)
			}
			return nil
		})
	}

	return f, nil
}

// RunID returns the id sent in the RunIDHeader.
func (f *HTTPForwarder) RunID() string {
	return f.runID
}

// Stats returns a snapshot of the delivery counters.
func (f *HTTPForwarder) Stats() Stats {
	return Stats{
		Delivered: f.delivered.Load(),
		Failed:    f.failed.Load(),
		Dropped:   f.dropped.Load(),
	}
}

// Forward schedules the delivery of r. It never blocks.
func (f *HTTPForwarder) Forward(r event.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.draining {
		f.dropped.Add(1)
		f.log.Debugf("forwarder is draining, dropping %s event", r.Event)
		return
	}

	select {
	case f.queue <- r:
	default:
		f.dropped.Add(1)
		f.log.Warningf("forward queue full (%d records), dropping %s event", f.queueSize, r.Event)
	}
}

// Drain stops accepting records and waits up to timeout for the queued
// and in-flight deliveries. Deliveries still pending afterwards are
// abandoned.
func (f *HTTPForwarder) Drain(timeout time.Duration) bool {
	f.mu.Lock()
	if !f.draining {
		f.draining = true
		close(f.queue)
	}
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = f.group.Wait()
		close(done)
	}()

	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-done:
		stats := f.Stats()
		f.log.Debugf("forwarder drained: %d delivered, %d failed, %d dropped", stats.Delivered, stats.Failed, stats.Dropped)
		return true
	case <-t.C:
		f.log.Warningf("forwarder did not drain within %v, abandoning pending deliveries", timeout)
		return false
	}
}

func (f *HTTPForwarder) deliver(r event.Record) {
	defer func() {
		if p := recover(); p != nil {
			f.fail(r, fmt.Sprintf("panic: %v", p))
		}
	}()

	if f.jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(f.jitter))))
	}

	body, err := r.MarshalJSON()
	if err != nil {
		f.fail(r, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		f.fail(r, err.Error())
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RunIDHeader, f.runID)

	resp, err := f.client.Do(req)
	if err != nil {
		f.fail(r, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))
		f.fail(r, strconv.Itoa(resp.StatusCode))
		return
	}

	response, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		f.fail(r, err.Error())
		return
	}

	f.delivered.Add(1)
	f.log.Debugf("forwarded %s event, response: %s", r.Event, compact(response))
}

func (f *HTTPForwarder) fail(r event.Record, detail string) {
	f.failed.Add(1)
	f.log.Warningf("forwarding %s event failed: %s", r.Event, Diagnostic(detail))
}

func compact(body []byte) string {
	if gjson.ValidBytes(body) {
		body = []byte(gjson.GetBytes(body, "@ugly").Raw)
	}
	if len(body) > maxLoggedBody {
		return string(body[:maxLoggedBody]) + "..."
	}
	return string(body)
}
