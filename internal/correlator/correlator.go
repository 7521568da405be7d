// correlator.go — request/response correlation by CDP requestId.
//
// RequestWillBeSent and ResponseReceived arrive on the adapter's dispatch
// goroutine in request order per connection, but a slow response body or a
// redirect chain can interleave events for different requestIds across
// goroutines when the fallback adapter's poll loop and the primary
// adapter's listen loop are both live during an adapter swap. mu is the
// only lock in this package; it guards pending exactly like Capture.mu
// guards the teacher's ring buffers — release it before invoking caller
// code, never call back into the correlator from within a caller callback.
package correlator

import (
	"sync"
	"time"

	"github.com/dev-console/harcapture/internal/adapter"
)

// PendingExchange accumulates the pieces of one in-flight request/response
// pair until both halves are known. Exactly one goroutine ever mutates a
// given PendingExchange because Correlator hands out accumulation
// exclusively through its own locked methods.
type PendingExchange struct {
	RequestID string

	Request      adapter.Request
	WallTime     time.Time
	MonotonicTs  float64
	Redirect     *adapter.RedirectResponse

	Response     *adapter.ResponseMeta
	Timing       *adapter.ResourceTiming
	ResourceType adapter.ResourceType

	EncodedDataLength int64
	Finished          bool
	Failed            bool
	FailureReason     string
}

// Correlator is a thread-safe requestId -> PendingExchange table. Zero
// value is not usable; use New.
type Correlator struct {
	mu      sync.Mutex
	pending map[string]*PendingExchange
}

// New constructs an empty Correlator.
func New() *Correlator {
	return &Correlator{pending: make(map[string]*PendingExchange)}
}

// OnRequestSent records the request half of an exchange. If a
// PendingExchange already exists for id (a redirect landed before this
// call acquired the lock, or the browser reused a requestId we haven't
// flushed yet — both are observed races, not bugs), its request fields are
// overwritten rather than a second entry created, per §5's "one exchange
// per live requestId" invariant.
func (c *Correlator) OnRequestSent(id string, req adapter.Request, wallTime time.Time, monotonicTs float64, redirect *adapter.RedirectResponse) *PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	pe, ok := c.pending[id]
	if !ok {
		pe = &PendingExchange{RequestID: id}
		c.pending[id] = pe
	}
	pe.Request = req
	pe.WallTime = wallTime
	pe.MonotonicTs = monotonicTs
	pe.Redirect = redirect
	return pe
}

// OnResponseReceived attaches response metadata to the exchange for id,
// lazily creating it if the response somehow arrived first (not expected
// from a well-behaved adapter, but §5 requires we not drop the event).
func (c *Correlator) OnResponseReceived(id string, resp adapter.ResponseMeta, timing *adapter.ResourceTiming, resourceType adapter.ResourceType) *PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	pe := c.getOrCreateLocked(id)
	pe.Response = &resp
	pe.Timing = timing
	pe.ResourceType = resourceType
	return pe
}

// OnLoadingFinished marks the exchange complete and returns it detached
// from the table — callers own the returned PendingExchange exclusively
// from this point and should build + emit a HAR entry from it.
func (c *Correlator) OnLoadingFinished(id string, encodedDataLength int64) *PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	pe, ok := c.pending[id]
	if !ok {
		return nil
	}
	pe.Finished = true
	pe.EncodedDataLength = encodedDataLength
	delete(c.pending, id)
	return pe
}

// OnLoadingFailed marks the exchange failed and detaches it, mirroring
// OnLoadingFinished.
func (c *Correlator) OnLoadingFailed(id string, reason string) *PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	pe, ok := c.pending[id]
	if !ok {
		return nil
	}
	pe.Failed = true
	pe.FailureReason = reason
	delete(c.pending, id)
	return pe
}

// TerminateRedirect detaches and returns the pending exchange for id, if
// any, for use as a redirect-hop HAR entry (§4.5 "Redirects"). The caller
// is expected to immediately re-register id via OnRequestSent with the
// new request that followed the redirect.
func (c *Correlator) TerminateRedirect(id string) *PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	pe, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return pe
}

func (c *Correlator) getOrCreateLocked(id string) *PendingExchange {
	pe, ok := c.pending[id]
	if !ok {
		pe = &PendingExchange{RequestID: id}
		c.pending[id] = pe
	}
	return pe
}

// PendingCount reports the number of exchanges currently awaiting
// completion. Used by the orchestrator's Stop sequence to decide whether
// any in-flight requests must be flushed as incomplete entries.
func (c *Correlator) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Drain empties the table and returns every still-pending exchange, for
// emitting best-effort incomplete entries at Stop (§4.5 "Stop flushes
// in-flight exchanges").
func (c *Correlator) Drain() []*PendingExchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*PendingExchange, 0, len(c.pending))
	for _, pe := range c.pending {
		out = append(out, pe)
	}
	c.pending = make(map[string]*PendingExchange)
	return out
}

// Clear discards all pending exchanges without returning them, for use on
// a hard Reset.
func (c *Correlator) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = make(map[string]*PendingExchange)
}
